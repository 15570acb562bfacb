package stream

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"ailawyer/internal/ai"
	"ailawyer/internal/apperr"
	"ailawyer/internal/metrics"
	"ailawyer/internal/platform/logger"
)

type State int32

const (
	StatePending State = iota
	StateStreaming
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateStreaming:
		return "streaming"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

type Model interface {
	StreamComplete(ctx context.Context, messages []ai.ChatMessage, onChunk func(string) error) (string, error)
}

// Finalizer receives the full model output once generation has finished
// and returns the payload of the done event. It is the only place a
// request persists anything.
type Finalizer func(ctx context.Context, fullText string) (Done, error)

type Job struct {
	// Kind labels metrics and logs: chat, validation, generation.
	Kind     string
	Messages []ai.ChatMessage
	Finalize Finalizer
}

type Generator struct {
	model   Model
	timeout time.Duration
	log     *logger.Logger
}

func NewGenerator(model Model, timeout time.Duration, log *logger.Logger) *Generator {
	if log == nil {
		log = logger.Nop()
	}
	return &Generator{model: model, timeout: timeout, log: log}
}

type Stream struct {
	events chan Event
	quit   chan struct{}
	once   sync.Once
	cancel context.CancelFunc
	state  atomic.Int32
}

// Events yields chunk events in model order followed by exactly one
// terminal event, then closes. Consumers must drain it or call Close.
func (s *Stream) Events() <-chan Event { return s.events }

func (s *Stream) State() State { return State(s.state.Load()) }

// Close tells the producer nobody is reading any more. Generation is
// aborted if it is still running, and nothing is persisted.
func (s *Stream) Close() {
	s.once.Do(func() {
		close(s.quit)
		s.cancel()
	})
}

// Start launches generation in its own goroutine. The returned stream is
// PENDING until the goroutine begins consuming the model.
func (g *Generator) Start(ctx context.Context, job Job) *Stream {
	runCtx, cancel := context.WithCancel(ctx)
	if g.timeout > 0 {
		runCtx, cancel = withTimeout(runCtx, cancel, g.timeout)
	}
	s := &Stream{
		events: make(chan Event),
		quit:   make(chan struct{}),
		cancel: cancel,
	}
	s.state.Store(int32(StatePending))
	go g.run(runCtx, s, job)
	return s
}

func withTimeout(ctx context.Context, parentCancel context.CancelFunc, d time.Duration) (context.Context, context.CancelFunc) {
	timed, cancel := context.WithTimeout(ctx, d)
	return timed, func() {
		cancel()
		parentCancel()
	}
}

func (g *Generator) run(ctx context.Context, s *Stream, job Job) {
	defer close(s.events)
	defer s.cancel()

	s.state.Store(int32(StateStreaming))
	full, err := g.model.StreamComplete(ctx, job.Messages, func(chunk string) error {
		if chunk == "" {
			return nil
		}
		return s.send(ctx, ChunkEvent(chunk))
	})
	if err == nil {
		// The model may have finished just as the caller went away.
		err = ctx.Err()
	}
	if err != nil {
		g.fail(ctx, s, job, err)
		return
	}
	var done Done
	if job.Finalize != nil {
		done, err = job.Finalize(ctx, full)
		if err != nil {
			g.fail(ctx, s, job, err)
			return
		}
	}
	s.state.Store(int32(StateCompleted))
	metrics.StreamOutcomes.WithLabelValues(job.Kind, "completed").Inc()
	s.deliver(DoneEvent(done))
}

func (g *Generator) fail(ctx context.Context, s *Stream, job Job, err error) {
	err = normalize(ctx, err)
	s.state.Store(int32(StateFailed))
	metrics.StreamOutcomes.WithLabelValues(job.Kind, "failed").Inc()

	code := ErrorCode(err)
	if code == "internal" {
		g.log.Error("stream failed", "kind", job.Kind, "err", err)
	} else {
		g.log.Warn("stream failed", "kind", job.Kind, "code", code, "err", err)
	}
	s.deliver(ErrorEvent(PublicMessage(err), code))
}

// send blocks until the consumer takes the event, the run is cancelled, or
// the consumer has closed the stream.
func (s *Stream) send(ctx context.Context, ev Event) error {
	select {
	case s.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-s.quit:
		return context.Canceled
	}
}

// deliver hands over the terminal event even after the run context ended;
// only an explicit Close drops it.
func (s *Stream) deliver(ev Event) {
	select {
	case s.events <- ev:
	case <-s.quit:
	}
}

func normalize(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		if !errors.Is(err, apperr.ErrModelTimeout) {
			return fmt.Errorf("%v: %w", err, apperr.ErrModelTimeout)
		}
	}
	return err
}

// ErrorCode extends apperr.Code with the cancellation case that only
// exists for streams.
func ErrorCode(err error) string {
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}
	return apperr.Code(err)
}

// PublicMessage is the text shown to the user for a failed stream. Internal
// errors are not echoed back.
func PublicMessage(err error) string {
	switch ErrorCode(err) {
	case "canceled":
		return "generation cancelled"
	case "model_unavailable":
		return apperr.ErrModelUnavailable.Error()
	case "model_timeout":
		return apperr.ErrModelTimeout.Error()
	case "generation_format":
		return apperr.ErrGenerationFormat.Error()
	case "internal":
		return "internal error"
	}
	return err.Error()
}
