package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ailawyer/internal/apperr"
	"ailawyer/internal/chunkstore"
	"ailawyer/internal/model"
	"ailawyer/internal/platform/logger"
	"ailawyer/internal/prompt"
	"ailawyer/internal/repository"
	"ailawyer/internal/retrieval"
	"ailawyer/internal/stream"
)

const (
	// historyWindow is how many recent messages are cached per session;
	// modes take their own tail of it.
	historyWindow = 20
	titleRunes    = 50
	emptyAnswer   = "Модель вернула пустой ответ."
)

// HistoryCache is versioned: Get reports the generation it observed and
// Set discards the fill if an Invalidate happened since.
type HistoryCache interface {
	Get(ctx context.Context, sessionID uint) ([]model.ChatMessage, bool, int64, error)
	Set(ctx context.Context, sessionID uint, version int64, messages []model.ChatMessage) error
	Invalidate(ctx context.Context, sessionID uint) error
}

type ChatService struct {
	sessionRepo  *repository.SessionRepository
	messageRepo  *repository.MessageRepository
	historyCache HistoryCache
	retriever    *retrieval.Retriever
	composer     *prompt.Composer
	generator    *stream.Generator
	locks        *sessionLocks
	log          *logger.Logger
}

func NewChatService(
	sessionRepo *repository.SessionRepository,
	messageRepo *repository.MessageRepository,
	historyCache HistoryCache,
	retriever *retrieval.Retriever,
	composer *prompt.Composer,
	generator *stream.Generator,
	log *logger.Logger,
) *ChatService {
	if log == nil {
		log = logger.Nop()
	}
	return &ChatService{
		sessionRepo:  sessionRepo,
		messageRepo:  messageRepo,
		historyCache: historyCache,
		retriever:    retriever,
		composer:     composer,
		generator:    generator,
		locks:        newSessionLocks(),
		log:          log,
	}
}

type ChatInput struct {
	UserID    uint
	SessionID uint // zero starts a new session
	Mode      string
	Message   string
}

type SessionDetail struct {
	Session  model.ChatSession   `json:"session"`
	Messages []model.ChatMessage `json:"messages"`
}

// Chat answers one question as a stream. The turn is stored only when the
// answer completes; the done event carries the session id.
func (s *ChatService) Chat(ctx context.Context, in ChatInput) (*stream.Stream, error) {
	question := strings.TrimSpace(in.Message)
	if in.UserID == 0 || question == "" {
		return nil, fmt.Errorf("message is empty: %w", apperr.ErrInvalidInput)
	}
	mode, ok := prompt.LookupMode(in.Mode)
	if !ok {
		return nil, fmt.Errorf("unknown mode %q: %w", in.Mode, apperr.ErrInvalidInput)
	}

	var history []model.ChatMessage
	if in.SessionID != 0 {
		if _, err := s.ownedSession(ctx, in.UserID, in.SessionID); err != nil {
			return nil, err
		}
		var err error
		if history, err = s.recentHistory(ctx, in.SessionID); err != nil {
			return nil, err
		}
	}

	grounding, err := s.retriever.Retrieve(ctx, question, mode.TopK, chunkstore.Filter{})
	if err != nil {
		return nil, err
	}
	if grounding.Empty() {
		s.log.Info("chat answering without sources", "user_id", in.UserID, "mode", mode.Name)
	}

	messages := s.composer.Chat(prompt.ChatRequest{
		Mode:      mode,
		History:   history,
		Question:  question,
		Grounding: grounding,
	})
	sources := grounding.Sources

	return s.generator.Start(ctx, stream.Job{
		Kind:     "chat",
		Messages: messages,
		Finalize: func(ctx context.Context, full string) (stream.Done, error) {
			sessionID, err := s.CreateOrAppendSession(ctx, in.UserID, in.SessionID, question, full, sources, mode.Name)
			if err != nil {
				return stream.Done{}, err
			}
			return stream.Done{SessionID: sessionID, Sources: sources}, nil
		},
	}), nil
}

// CreateOrAppendSession stores one exchange. A zero sessionID creates the
// session, titled after the question.
func (s *ChatService) CreateOrAppendSession(
	ctx context.Context,
	userID, sessionID uint,
	userText, assistantText string,
	sources []model.Source,
	mode string,
) (uint, error) {
	if userID == 0 || strings.TrimSpace(userText) == "" {
		return 0, fmt.Errorf("turn needs a user and a question: %w", apperr.ErrInvalidInput)
	}
	if sessionID != 0 {
		unlock := s.locks.Lock(sessionID)
		defer unlock()
		if _, err := s.ownedSession(ctx, userID, sessionID); err != nil {
			return 0, err
		}
	}
	answer := strings.TrimSpace(assistantText)
	if answer == "" {
		answer = emptyAnswer
	}

	session, err := s.sessionRepo.AppendTurn(ctx, repository.Turn{
		SessionID: sessionID,
		UserID:    userID,
		Mode:      mode,
		Title:     model.Truncate(strings.TrimSpace(userText), titleRunes),
		User:      model.ChatMessage{Role: model.RoleUser, Content: strings.TrimSpace(userText)},
		Assistant: model.ChatMessage{Role: model.RoleAssistant, Content: answer, Sources: sources},
	})
	if err != nil {
		return 0, err
	}
	s.invalidate(session.ID)
	return session.ID, nil
}

func (s *ChatService) ListSessions(ctx context.Context, userID uint) ([]model.ChatSession, error) {
	if userID == 0 {
		return nil, apperr.ErrInvalidInput
	}
	return s.sessionRepo.ListByUserID(ctx, userID)
}

// GetSession returns the session with all of its messages oldest first.
func (s *ChatService) GetSession(ctx context.Context, userID, sessionID uint) (*SessionDetail, error) {
	session, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	messages, err := s.messageRepo.ListBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &SessionDetail{Session: *session, Messages: messages}, nil
}

func (s *ChatService) DeleteSession(ctx context.Context, userID, sessionID uint) error {
	unlock := s.locks.Lock(sessionID)
	defer unlock()
	if _, err := s.ownedSession(ctx, userID, sessionID); err != nil {
		return err
	}
	if err := s.sessionRepo.Delete(ctx, sessionID); err != nil {
		return err
	}
	s.invalidate(sessionID)
	return nil
}

func (s *ChatService) ownedSession(ctx context.Context, userID, sessionID uint) (*model.ChatSession, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("session %d: %w", sessionID, apperr.ErrNotFound)
	}
	if session.UserID != userID {
		return nil, fmt.Errorf("session %d: %w", sessionID, apperr.ErrForbidden)
	}
	return session, nil
}

func (s *ChatService) recentHistory(ctx context.Context, sessionID uint) ([]model.ChatMessage, error) {
	var version int64
	cacheUsable := false
	if s.historyCache != nil {
		cached, hit, v, err := s.historyCache.Get(ctx, sessionID)
		switch {
		case err != nil:
			s.log.Warn("history cache read failed", "session_id", sessionID, "err", err)
		case hit:
			return cached, nil
		default:
			version, cacheUsable = v, true
		}
	}
	messages, err := s.messageRepo.ListRecentBySessionID(ctx, sessionID, historyWindow)
	if err != nil {
		return nil, err
	}
	if cacheUsable {
		if err := s.historyCache.Set(ctx, sessionID, version, messages); err != nil {
			s.log.Warn("history cache write failed", "session_id", sessionID, "err", err)
		}
	}
	return messages, nil
}

// invalidate does not use the request context, which may already be done
// once the turn has committed.
func (s *ChatService) invalidate(sessionID uint) {
	if s.historyCache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.historyCache.Invalidate(ctx, sessionID); err != nil {
		s.log.Warn("history cache invalidate failed", "session_id", sessionID, "err", err)
	}
}
