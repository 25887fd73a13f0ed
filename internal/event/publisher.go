// Package event publishes reservation engine events to RabbitMQ.
package event

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// HoldsReleased is emitted after a sweep released at least one expired hold.
type HoldsReleased struct {
	SeatHolds     int64     `json:"seat_holds"`
	StandingHolds int64     `json:"standing_holds"`
	Cutoff        time.Time `json:"cutoff"`
	SweptAt       time.Time `json:"swept_at"`
}

type Publisher interface {
	PublishHoldsReleased(ctx context.Context, ev HoldsReleased) error
	Close() error
}

type amqpPublisher struct {
	url   string
	queue string
	log   *zap.Logger

	mu   sync.Mutex
	conn *amqp.Connection
}

// NewAMQPPublisher dials the broker once and declares the durable queue.
// The connection is re-dialled lazily if the broker drops it.
func NewAMQPPublisher(url, queue string, log *zap.Logger) (Publisher, error) {
	p := &amqpPublisher{
		url:   url,
		queue: queue,
		log:   log.With(zap.String("publisher", "amqp")),
	}
	if _, err := p.connection(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *amqpPublisher) connection() (*amqp.Connection, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn != nil && !p.conn.IsClosed() {
		return p.conn, nil
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, fmt.Errorf("dial broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", p.queue, err)
	}

	p.conn = conn
	return conn, nil
}

func (p *amqpPublisher) PublishHoldsReleased(ctx context.Context, ev HoldsReleased) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode holds released event: %w", err)
	}

	conn, err := p.connection()
	if err != nil {
		return err
	}

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	err = ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         "reservation.holds.released",
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish to %s: %w", p.queue, err)
	}

	p.log.Debug("Holds released event published",
		zap.Int64("seat_holds", ev.SeatHolds),
		zap.Int64("standing_holds", ev.StandingHolds),
	)
	return nil
}

func (p *amqpPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil || p.conn.IsClosed() {
		return nil
	}
	return p.conn.Close()
}

type nopPublisher struct{}

// NewNopPublisher is used when no broker is configured.
func NewNopPublisher() Publisher { return nopPublisher{} }

func (nopPublisher) PublishHoldsReleased(context.Context, HoldsReleased) error { return nil }
func (nopPublisher) Close() error                                             { return nil }
