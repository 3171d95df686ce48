package events

import (
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	EventsExchange               = "ecommerce.events"
	OrderCreatedRoutingKey       = "order.created.v1"
	OrderStatusChangedRoutingKey = "order.status_changed.v1"

	OrderCreatedEvent       = "OrderCreated"
	OrderStatusChangedEvent = "OrderStatusChanged"
	eventVersion            = 1
)

func serviceQueue(serviceName, routingKey string) string {
	return serviceName + "." + routingKey
}

func schemaFor(routingKey string) string {
	return "events/" + routingKey + ".json"
}

// exchangeDeclarer is the subset of *amqp.Channel used to declare the bus.
type exchangeDeclarer interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
}

func declareEventsExchange(ch exchangeDeclarer) error {
	return ch.ExchangeDeclare(
		EventsExchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
}
