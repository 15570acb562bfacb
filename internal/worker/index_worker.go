package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"ailawyer/internal/model"
	"ailawyer/internal/platform/logger"
)

type DocumentIndexer interface {
	Index(ctx context.Context, job model.IndexJob) (int, error)
}

// IndexWorker consumes index jobs one at a time. A failed job is not
// requeued; the indexer has already marked its document failed and the
// admin can upload it again.
type IndexWorker struct {
	conn      *amqp.Connection
	indexer   DocumentIndexer
	queueName string
	log       *logger.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewIndexWorker(conn *amqp.Connection, indexer DocumentIndexer, queueName string, log *logger.Logger) *IndexWorker {
	if log == nil {
		log = logger.Nop()
	}
	return &IndexWorker{
		conn:      conn,
		indexer:   indexer,
		queueName: queueName,
		log:       log.With("worker", "index", "queue", queueName),
	}
}

func (w *IndexWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	_, err = ch.QueueDeclare(
		w.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}
	// Indexing is embedding-bound; take one job at a time.
	if err := ch.Qos(1, 0, false); err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("set worker qos failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					w.log.Warn("delivery channel closed")
					return
				}
				if w.handle(workerCtx, d.Body) {
					_ = d.Ack(false)
				} else {
					_ = d.Nack(false, false)
				}
			}
		}
	}()

	w.log.Info("index worker started")
	return nil
}

// handle reports whether the delivery should be acknowledged.
func (w *IndexWorker) handle(ctx context.Context, body []byte) bool {
	var job model.IndexJob
	if err := json.Unmarshal(body, &job); err != nil {
		w.log.Error("decode index job failed", "err", err)
		return false
	}
	if strings.TrimSpace(job.SourceName) == "" {
		w.log.Error("index job without source name")
		return false
	}
	n, err := w.indexer.Index(ctx, job)
	if err != nil {
		return false
	}
	w.log.Debug("index job done", "source", job.SourceName, "chunks", n)
	return true
}

func (w *IndexWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
