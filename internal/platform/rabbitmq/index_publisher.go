package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"ailawyer/internal/model"
)

// IndexPublisher enqueues document indexing jobs. One channel is shared
// across publishes and reopened if the broker closed it.
type IndexPublisher struct {
	conn      *amqp.Connection
	queueName string

	mu sync.Mutex
	ch *amqp.Channel
}

func NewIndexPublisher(conn *amqp.Connection, queueName string) *IndexPublisher {
	return &IndexPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *IndexPublisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	ch, err := p.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	if err := declare(ch, p.queueName); err != nil {
		_ = ch.Close()
		return nil, err
	}
	p.ch = ch
	return ch, nil
}

func (p *IndexPublisher) Publish(ctx context.Context, job model.IndexJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal index job failed: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	ch, err := p.channel()
	if err != nil {
		return err
	}
	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp.Persistent,
			Type:         "index_document",
		},
	); err != nil {
		return fmt.Errorf("publish index job failed: %w", err)
	}
	return nil
}

func (p *IndexPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch == nil || p.ch.IsClosed() {
		return nil
	}
	return p.ch.Close()
}
