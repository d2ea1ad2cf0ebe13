package events

import (
	"context"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"despesas/internal/config"
)

const publishTimeout = 5 * time.Second

// channel is the part of *amqp091.Channel the publisher needs.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// AMQPPublisher publishes persistent JSON events to a durable direct exchange.
type AMQPPublisher struct {
	conn     *amqp091.Connection
	ch       channel
	exchange string
	queue    string
}

var _ Publisher = (*AMQPPublisher)(nil)

// NewAMQPPublisher dials the broker and declares the exchange, queue and binding.
func NewAMQPPublisher(cfg config.AMQPConfig) (*AMQPPublisher, error) {
	conn, err := amqp091.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := declare(ch, cfg.Exchange, cfg.Queue); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	return &AMQPPublisher{conn: conn, ch: ch, exchange: cfg.Exchange, queue: cfg.Queue}, nil
}

func declare(ch *amqp091.Channel, exchange, queue string) error {
	if err := ch.ExchangeDeclare(exchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	// Routing key is the queue name.
	if err := ch.QueueBind(queue, queue, exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, e PeriodEvent) error {
	body, err := e.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = p.ch.PublishWithContext(ctx, p.exchange, p.queue, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    e.OccurredAt,
		MessageId:    fmt.Sprintf("%s:%s:%04d-%02d", e.RunID, e.Municipality, e.Year, e.Month),
		Type:         "period." + string(e.State),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish period event: %w", err)
	}
	return nil
}

func (p *AMQPPublisher) Close() error {
	if p.ch != nil {
		p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
