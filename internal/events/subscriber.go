package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Subscriber binds a private queue per user to the CartChanged routing key.
// It satisfies cart.ChangeSubscriber.
type Subscriber struct {
	conn   *amqp.Connection
	logger *log.Logger
}

func NewSubscriber(conn *amqp.Connection, logger *log.Logger) *Subscriber {
	return &Subscriber{conn: conn, logger: logger}
}

// Subscribe calls onChange for every CartChanged event of userID until the returned
// function is called or ctx ends.
func (s *Subscriber) Subscribe(ctx context.Context, userID string, onChange func()) (func(), error) {
	ch, err := s.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	msgs, err := bindUserQueue(ch, userID)
	if err != nil {
		_ = ch.Close()
		return nil, err
	}

	subCtx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.consume(subCtx, userID, msgs, onChange)
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			_ = ch.Close()
			wg.Wait()
		})
	}, nil
}

func bindUserQueue(ch *amqp.Channel, userID string) (<-chan amqp.Delivery, error) {
	if err := declareEventsExchange(ch); err != nil {
		return nil, fmt.Errorf("declare events exchange: %w", err)
	}

	q, err := ch.QueueDeclare(
		"",    // server-named
		false, // durable
		true,  // autoDelete
		true,  // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("queue declare: %w", err)
	}

	if err := ch.QueueBind(q.Name, CartChangedRoutingKey(userID), EventsExchange, false, nil); err != nil {
		return nil, fmt.Errorf("queue bind: %w", err)
	}

	msgs, err := ch.Consume(q.Name, "", true, true, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("consume: %w", err)
	}
	return msgs, nil
}

func (s *Subscriber) consume(ctx context.Context, userID string, msgs <-chan amqp.Delivery, onChange func()) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			if err := decodeCartChanged(msg.Body, userID); err != nil {
				s.logger.Printf("drop cart change message: %v", err)
				continue
			}
			onChange()
		}
	}
}

func decodeCartChanged(body []byte, userID string) error {
	var ev CartChangedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("decode CartChanged: %w", err)
	}
	if err := ev.Validate(EventNameCartChanged, cartChangedVersion); err != nil {
		return err
	}
	if ev.Payload.UserID != userID {
		return fmt.Errorf("event for user %s delivered to %s", ev.Payload.UserID, userID)
	}
	return nil
}
