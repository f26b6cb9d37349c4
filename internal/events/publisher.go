package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

type publishChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher emits CartChanged events. It satisfies cart.ChangeNotifier.
type Publisher struct {
	ch       publishChannel
	seqRepo  SequenceRepository
	producer string
	now      func() time.Time
	newID    func() string
}

func NewPublisher(conn *amqp.Connection, seqRepo SequenceRepository) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := declareEventsExchange(ch); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare events exchange: %w", err)
	}
	return newPublisher(ch, seqRepo), nil
}

func newPublisher(ch publishChannel, seqRepo SequenceRepository) *Publisher {
	return &Publisher{
		ch:       ch,
		seqRepo:  seqRepo,
		producer: serviceName,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}

func (p *Publisher) NotifyCartChanged(ctx context.Context, userID string) error {
	return p.PublishCartChanged(ctx, EventMeta{}, userID)
}

func (p *Publisher) PublishCartChanged(ctx context.Context, meta EventMeta, userID string) error {
	seq, err := p.seqRepo.NextSequence(ctx, userID)
	if err != nil {
		return fmt.Errorf("reserve sequence: %w", err)
	}

	ev := newCartChangedEvent(p.newID(), meta, seq, p.producer, CartChangedPayload{UserID: userID, ChangedAt: p.now()})
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal CartChanged: %w", err)
	}
	return p.publishJSON(ctx, CartChangedRoutingKey(userID), body)
}

func (p *Publisher) publishJSON(ctx context.Context, routingKey string, body []byte) error {
	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(
		pubCtx,
		EventsExchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}
