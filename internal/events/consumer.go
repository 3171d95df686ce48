package events

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ErrMalformed marks a message that can never be processed; it is dropped
// instead of requeued.
var ErrMalformed = errors.New("malformed event")

type HandlerFunc func(ctx context.Context, body []byte) error

// ConsumeChannel is the subset of *amqp.Channel used by consumers.
type ConsumeChannel interface {
	exchangeDeclarer
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

func DialRabbit(url string) (*amqp.Connection, error) {
	conn, err := amqp.DialConfig(url, amqp.Config{
		Dial: amqp.DefaultDial(10 * time.Second),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to RabbitMQ: %w", err)
	}
	return conn, nil
}

// StartConsumer binds {service}.{routingKey} to the events exchange and runs
// handler for each delivery until ctx is done.
func StartConsumer(ctx context.Context, ch ConsumeChannel, service, routingKey string, handler HandlerFunc, logger *log.Logger) error {
	if err := declareEventsExchange(ch); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	queue := serviceQueue(service, routingKey)
	if _, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	); err != nil {
		return fmt.Errorf("queue declare %s: %w", queue, err)
	}
	if err := ch.QueueBind(queue, routingKey, EventsExchange, false, nil); err != nil {
		return fmt.Errorf("queue bind %s: %w", queue, err)
	}

	msgs, err := ch.Consume(
		queue,
		service, // consumer tag
		false,   // autoAck
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("consume %s: %w", queue, err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				logger.Printf("stopping consumer queue=%s", queue)
				return
			case msg, ok := <-msgs:
				if !ok {
					logger.Printf("messages channel closed queue=%s", queue)
					return
				}
				dispatch(ctx, msg, handler, logger)
			}
		}
	}()

	return nil
}

// acknowledger is the subset of amqp.Delivery settled after handling.
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func dispatch(ctx context.Context, msg amqp.Delivery, handler HandlerFunc, logger *log.Logger) {
	settle(ctx, &msg, msg.RoutingKey, msg.Body, handler, logger)
}

func settle(ctx context.Context, ack acknowledger, routingKey string, body []byte, handler HandlerFunc, logger *log.Logger) {
	err := handler(ctx, body)
	switch {
	case err == nil:
		_ = ack.Ack(false)
	case errors.Is(err, ErrMalformed):
		logger.Printf("drop message rk=%s err=%v", routingKey, err)
		_ = ack.Nack(false, false)
	default:
		logger.Printf("handle message rk=%s err=%v", routingKey, err)
		_ = ack.Nack(false, true)
	}
}
