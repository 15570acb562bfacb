package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"ailawyer/internal/ai"
	"ailawyer/internal/app"
	"ailawyer/internal/cache"
	"ailawyer/internal/catalog"
	"ailawyer/internal/chunkstore"
	"ailawyer/internal/config"
	"ailawyer/internal/ingest"
	"ailawyer/internal/model"
	"ailawyer/internal/platform/logger"
	mysqlClient "ailawyer/internal/platform/mysql"
	rabbitmqClient "ailawyer/internal/platform/rabbitmq"
	redisClient "ailawyer/internal/platform/redis"
	"ailawyer/internal/prompt"
	"ailawyer/internal/repository"
	"ailawyer/internal/retrieval"
	"ailawyer/internal/stream"
	"ailawyer/internal/worker"
)

// App owns every long-lived resource. Redis and RabbitMQ are optional:
// without Redis chat history is read from MySQL, without RabbitMQ uploads
// are indexed inside the request.
type App struct {
	Config *config.Config
	Log    *logger.Logger
	MySQL  *gorm.DB
	Redis  *redis.Client
	MQConn *amqp.Connection

	Store     *chunkstore.Store
	Chat      *app.ChatService
	Validator *app.ValidatorService
	Generator *app.GeneratorService
	History   *app.HistoryService
	Admin     *app.AdminService

	IndexPublisher *rabbitmqClient.IndexPublisher
	IndexWorker    *worker.IndexWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("build logger failed: %w", err)
	}

	a := &App{Config: cfg, Log: log, StartedAt: time.Now()}
	if err := a.init(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) init(ctx context.Context) error {
	cfg := a.Config

	db, err := mysqlClient.New(ctx, cfg.MySQLDSN(), a.Log)
	if err != nil {
		return err
	}
	a.MySQL = db
	if err := db.AutoMigrate(
		&model.ChatSession{},
		&model.ChatMessage{},
		&model.ContractAnalysis{},
		&model.GeneratedContract{},
		&model.DocumentChunk{},
		&model.LegalDocument{},
		&model.CorpusVersion{},
	); err != nil {
		return fmt.Errorf("auto migrate tables failed: %w", err)
	}

	var historyCache app.HistoryCache
	if cfg.Redis.Addr != "" {
		a.Redis, err = redisClient.New(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		historyCache = cache.NewHistoryCache(
			a.Redis,
			time.Duration(cfg.Redis.HistoryTTLSeconds)*time.Second,
			time.Duration(cfg.Redis.HistoryGenerationTTLSeconds)*time.Second,
		)
	} else {
		a.Log.Warn("redis not configured, chat history cache disabled")
	}

	sessionRepo := repository.NewSessionRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	analysisRepo := repository.NewAnalysisRepository(db)
	contractRepo := repository.NewGeneratedContractRepository(db)
	docRepo := repository.NewDocumentRepository(db)

	a.Store = chunkstore.New(repository.NewChunkRepository(db), cfg.Retrieval.MinSimilarity)
	if err := a.Store.Load(ctx); err != nil {
		return fmt.Errorf("load chunk index failed: %w", err)
	}
	stats := a.Store.Stats()
	a.Log.Info("chunk index loaded", "documents", stats.TotalDocuments, "chunks", stats.TotalChunks)

	templates, err := catalog.New(cfg.Catalog.TemplatesDir, a.Log)
	if err != nil {
		return fmt.Errorf("load template catalog failed: %w", err)
	}

	llm := ai.NewOpenAICompatibleClient(ai.Config{
		BaseURL:        cfg.LLM.BaseURL,
		APIKey:         cfg.LLM.APIKey,
		Model:          cfg.LLM.Model,
		EmbeddingModel: cfg.LLM.EmbeddingModel,
		Timeout:        time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
	})
	retriever := retrieval.New(llm, a.Store, cfg.Retrieval.FallbackThreshold, a.Log)
	composer := prompt.NewComposer(cfg.LLM.HistoryTokenLimit, prompt.TiktokenCounter())
	generator := stream.NewGenerator(llm, time.Duration(cfg.Stream.TimeoutSeconds)*time.Second, a.Log)

	a.Chat = app.NewChatService(sessionRepo, messageRepo, historyCache, retriever, composer, generator, a.Log)
	a.Validator = app.NewValidatorService(analysisRepo, retriever, composer, generator, llm, cfg.Retrieval.AnalysisTopK, a.Log)
	a.Generator = app.NewGeneratorService(contractRepo, templates, retriever, composer, generator, a.Log)
	a.History = app.NewHistoryService(sessionRepo, analysisRepo, contractRepo, a.Chat, a.Validator, a.Generator)

	indexer := app.NewIndexer(
		ingest.NewProcessor(cfg.Retrieval.ChunkSize, cfg.Retrieval.ChunkOverlap),
		llm, a.Store, docRepo, a.Log,
	)
	var publisher app.IndexJobPublisher
	if cfg.RabbitMQ.URL != "" {
		a.MQConn, err = rabbitmqClient.New(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.IndexQueue)
		if err != nil {
			return err
		}
		a.IndexPublisher = rabbitmqClient.NewIndexPublisher(a.MQConn, cfg.RabbitMQ.IndexQueue)
		publisher = a.IndexPublisher
		a.IndexWorker = worker.NewIndexWorker(a.MQConn, indexer, cfg.RabbitMQ.IndexQueue, a.Log)
		if err := a.IndexWorker.Start(ctx); err != nil {
			return fmt.Errorf("start index worker failed: %w", err)
		}
	} else {
		a.Log.Warn("rabbitmq not configured, documents are indexed inline")
	}
	a.Admin = app.NewAdminService(docRepo, a.Store, indexer, publisher, a.Log)
	return nil
}

func (a *App) Close() error {
	var errs []error
	if a.IndexWorker != nil {
		a.IndexWorker.Close()
	}
	if a.IndexPublisher != nil {
		errs = append(errs, a.IndexPublisher.Close())
	}
	if a.MQConn != nil && !a.MQConn.IsClosed() {
		errs = append(errs, a.MQConn.Close())
	}
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	if a.MySQL != nil {
		if sqlDB, err := a.MySQL.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
	return errors.Join(errs...)
}
