package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sony/gobreaker/v2"

	"github.com/abdalwely/online-store/internal/order"
	"github.com/abdalwely/online-store/internal/session"
)

// Channel is the subset of *amqp.Channel the publisher needs.
type Channel interface {
	exchangeDeclarer
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type Sequencer interface {
	NextSequence(ctx context.Context, partitionKey string) (int64, error)
}

// Publisher emits order events on the topic exchange. Broker calls go through
// a circuit breaker so a dead broker fails fast instead of stalling requests.
type Publisher struct {
	ch       Channel
	seq      Sequencer
	producer string
	breaker  *gobreaker.CircuitBreaker[struct{}]
	logger   *log.Logger
	now      func() time.Time
}

func NewPublisher(ch Channel, seq Sequencer, producer string, logger *log.Logger) (*Publisher, error) {
	if err := declareEventsExchange(ch); err != nil {
		return nil, fmt.Errorf("declare exchange %s: %w", EventsExchange, err)
	}

	p := &Publisher{ch: ch, seq: seq, producer: producer, logger: logger, now: time.Now}
	p.breaker = gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "amqp-publish",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Printf("breaker name=%s from=%s to=%s", name, from, to)
		},
	})
	return p, nil
}

func (p *Publisher) PublishOrderCreated(ctx context.Context, o order.Order) error {
	env, err := newEnvelope(ctx, p, OrderCreatedEvent, OrderCreatedRoutingKey, o.ID, orderCreatedFrom(o))
	if err != nil {
		return err
	}
	return p.publish(ctx, OrderCreatedRoutingKey, env)
}

func (p *Publisher) PublishStatusChanged(ctx context.Context, o order.Order, previous order.Status) error {
	env, err := newEnvelope(ctx, p, OrderStatusChangedEvent, OrderStatusChangedRoutingKey, o.ID, OrderStatusChanged{
		OrderID:    o.ID,
		StoreID:    o.StoreID,
		CustomerID: o.CustomerID,
		From:       previous,
		To:         o.Status,
		Total:      o.Total,
	})
	if err != nil {
		return err
	}
	return p.publish(ctx, OrderStatusChangedRoutingKey, env)
}

func newEnvelope[T any](ctx context.Context, p *Publisher, name, routingKey, partitionKey string, payload T) (EventEnvelope[T], error) {
	correlationID := session.FromContext(ctx).CorrelationID
	if correlationID == "" {
		correlationID = uuid.NewString()
	}

	env := EventEnvelope[T]{
		EventName:     name,
		EventVersion:  eventVersion,
		EventID:       uuid.NewString(),
		CorrelationID: correlationID,
		Producer:      p.producer,
		PartitionKey:  partitionKey,
		OccurredAt:    p.now().UTC(),
		Schema:        schemaFor(routingKey),
		Payload:       payload,
	}
	if p.seq != nil {
		seq, err := p.seq.NextSequence(ctx, partitionKey)
		if err != nil {
			return EventEnvelope[T]{}, err
		}
		env.Sequence = &seq
	}
	return env, nil
}

func (p *Publisher) publish(ctx context.Context, routingKey string, env any) error {
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", routingKey, err)
	}

	_, err = p.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, p.publishJSON(ctx, routingKey, body)
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}
	return nil
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
