package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"ailawyer/internal/ai"
	"ailawyer/internal/catalog"
	"ailawyer/internal/chunkstore"
	"ailawyer/internal/ingest"
	"ailawyer/internal/model"
	"ailawyer/internal/prompt"
	"ailawyer/internal/repository"
	"ailawyer/internal/retrieval"
	"ailawyer/internal/stream"
)

// fakeLLM streams reply in two halves and returns it whole from Complete.
type fakeLLM struct {
	reply string
	err   error
	block bool
}

func (f *fakeLLM) StreamComplete(ctx context.Context, _ []ai.ChatMessage, onChunk func(string) error) (string, error) {
	if f.block {
		if err := onChunk("..."); err != nil {
			return "", err
		}
		<-ctx.Done()
		return "", ctx.Err()
	}
	half := len([]rune(f.reply)) / 2
	parts := []string{string([]rune(f.reply)[:half]), string([]rune(f.reply)[half:])}
	for _, p := range parts {
		if err := onChunk(p); err != nil {
			return "", err
		}
	}
	return f.reply, f.err
}

func (f *fakeLLM) Complete(context.Context, []ai.ChatMessage) (string, error) {
	return f.reply, f.err
}

// fakeEmbedder maps texts onto a tiny vector space keyed by a few legal
// words so that related texts score high against each other.
type fakeEmbedder struct{}

var vocabulary = []string{"работник", "аренд", "договор", "статья"}

func embed(text string) []float32 {
	lower := strings.ToLower(text)
	v := make([]float32, len(vocabulary)+1)
	v[len(vocabulary)] = 0.1
	for i, w := range vocabulary {
		if strings.Contains(lower, w) {
			v[i] = 1
		}
	}
	return v
}

func (fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	return embed(text), nil
}

func (fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = embed(t)
	}
	return out, nil
}

type fakePublisher struct {
	mu   sync.Mutex
	jobs []model.IndexJob
}

func (p *fakePublisher) Publish(_ context.Context, job model.IndexJob) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.jobs = append(p.jobs, job)
	return nil
}

type memCache struct {
	mu          sync.Mutex
	data        map[uint][]model.ChatMessage
	generation  map[uint]int64
	invalidated []uint
	// beforeSet runs ahead of every fill, after the caller read the db.
	beforeSet func(id uint)
}

func newMemCache() *memCache {
	return &memCache{data: map[uint][]model.ChatMessage{}, generation: map[uint]int64{}}
}

func (c *memCache) Get(_ context.Context, id uint) ([]model.ChatMessage, bool, int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data[id], c.data[id] != nil, c.generation[id], nil
}

func (c *memCache) Set(_ context.Context, id uint, version int64, m []model.ChatMessage) error {
	if c.beforeSet != nil {
		c.beforeSet(id)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation[id] != version {
		return nil
	}
	c.data[id] = m
	return nil
}

func (c *memCache) Invalidate(_ context.Context, id uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, id)
	c.generation[id]++
	c.invalidated = append(c.invalidated, id)
	return nil
}

func (c *memCache) cached(id uint) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[id]
	return ok
}

type fixture struct {
	db        *gorm.DB
	llm       *fakeLLM
	store     *chunkstore.Store
	cache     *memCache
	publisher *fakePublisher
	chat      *ChatService
	validator *ValidatorService
	generator *GeneratorService
	history   *HistoryService
	admin     *AdminService
	indexer   *Indexer
}

func newFixture(t *testing.T, llm *fakeLLM) *fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.ChatSession{},
		&model.ChatMessage{},
		&model.ContractAnalysis{},
		&model.GeneratedContract{},
		&model.DocumentChunk{},
		&model.LegalDocument{},
		&model.CorpusVersion{},
	))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	templates := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(templates, "аренда"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(templates, "аренда", "Договор аренды.txt"), []byte("ДОГОВОР АРЕНДЫ ЖИЛОГО ПОМЕЩЕНИЯ"), 0o644))
	cat, err := catalog.New(templates, nil)
	require.NoError(t, err)

	sessionRepo := repository.NewSessionRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	analysisRepo := repository.NewAnalysisRepository(db)
	contractRepo := repository.NewGeneratedContractRepository(db)
	docRepo := repository.NewDocumentRepository(db)

	store := chunkstore.New(repository.NewChunkRepository(db), 0.3)
	retriever := retrieval.New(fakeEmbedder{}, store, 0.35, nil)
	composer := prompt.NewComposer(6000, prompt.RuneCounter)
	gen := stream.NewGenerator(llm, 2*time.Second, nil)

	f := &fixture{db: db, llm: llm, store: store, cache: newMemCache(), publisher: &fakePublisher{}}
	f.chat = NewChatService(sessionRepo, messageRepo, f.cache, retriever, composer, gen, nil)
	f.validator = NewValidatorService(analysisRepo, retriever, composer, gen, llm, 40, nil)
	f.generator = NewGeneratorService(contractRepo, cat, retriever, composer, gen, nil)
	f.history = NewHistoryService(sessionRepo, analysisRepo, contractRepo, f.chat, f.validator, f.generator)
	f.indexer = NewIndexer(ingest.NewProcessor(1500, 200), fakeEmbedder{}, store, docRepo, nil)
	f.admin = NewAdminService(docRepo, store, f.indexer, nil, nil)
	return f
}

func drainStream(t *testing.T, s *stream.Stream) (string, stream.Event) {
	t.Helper()
	var text strings.Builder
	var last stream.Event
	terminals := 0
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-s.Events():
			if !ok {
				require.Equal(t, 1, terminals, "exactly one terminal event")
				return text.String(), last
			}
			if ev.Kind == stream.KindChunk {
				text.WriteString(ev.Chunk)
			} else {
				terminals++
				last = ev
			}
		case <-timeout:
			t.Fatal("stream did not finish")
		}
	}
}
