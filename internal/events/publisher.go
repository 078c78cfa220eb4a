package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Yorinashi/Kopi-ni-yoshi/internal/receipt"
)

type RabbitPublisher struct {
	mu       sync.Mutex
	ch       *amqp.Channel
	producer string
}

func NewRabbitPublisher(conn *amqp.Connection, producer string) (*RabbitPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := declareEventsExchange(ch); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare events exchange: %w", err)
	}
	if err := declareReceiptQueue(ch); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare receipt queue: %w", err)
	}

	if producer == "" {
		producer = PosServiceProducer
	}

	return &RabbitPublisher{ch: ch, producer: producer}, nil
}

func (p *RabbitPublisher) Close() error {
	return p.ch.Close()
}

func (p *RabbitPublisher) PublishReceiptIssued(ctx context.Context, meta EventMeta, r receipt.Receipt) error {
	env := BuildReceiptIssuedEvent(r, EnvelopeOptions{Meta: meta, Producer: p.producer})
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal ReceiptIssued envelope: %w", err)
	}
	return p.publishJSON(ctx, ReceiptIssuedRoutingKey, body)
}

func (p *RabbitPublisher) publishJSON(ctx context.Context, routingKey string, body []byte) error {
	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	return p.ch.PublishWithContext(
		pubCtx,
		EventsExchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
}

// LogPublisher writes receipt events to the service log. It stands in for
// RabbitMQ when RABBITMQ_URL is not configured.
type LogPublisher struct {
	logger *log.Logger
}

func NewLogPublisher(logger *log.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) PublishReceiptIssued(_ context.Context, meta EventMeta, r receipt.Receipt) error {
	env := BuildReceiptIssuedEvent(r, EnvelopeOptions{Meta: meta})
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal ReceiptIssued envelope: %w", err)
	}
	p.logger.Printf("%s: %s", ReceiptIssuedRoutingKey, body)
	return nil
}
