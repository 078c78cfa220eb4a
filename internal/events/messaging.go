package events

import (
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	EventsExchange          = "pos.events"
	ReceiptIssuedRoutingKey = "receipt.issued.v1"
	posServiceName          = "pos-service-go"
)

func serviceQueue(serviceName, routingKey string) string {
	return serviceName + "." + routingKey
}

// ReceiptIssuedQueue is the durable queue bound to receipt events, for
// consumers that want a ready-made subscription (printers, journals).
func ReceiptIssuedQueue() string {
	return serviceQueue(posServiceName, ReceiptIssuedRoutingKey)
}

func declareEventsExchange(ch *amqp.Channel) error {
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

func declareReceiptQueue(ch *amqp.Channel) error {
	q, err := ch.QueueDeclare(ReceiptIssuedQueue(), true, false, false, false, nil)
	if err != nil {
		return err
	}
	return ch.QueueBind(q.Name, ReceiptIssuedRoutingKey, EventsExchange, false, nil)
}
