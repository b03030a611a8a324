package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Jacobbrewer1/ticketeer/pkg/logging"
	amqp "github.com/rabbitmq/amqp091-go"
)

// DefaultExchange is the topic exchange ticket events are published to.
const DefaultExchange = "ticketeer.tickets"

// AMQPPublisher publishes events as JSON to a topic exchange, routed by event type.
type AMQPPublisher struct {
	// l is the logger.
	l *slog.Logger

	// exchange is the topic exchange name.
	exchange string

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewAMQPPublisher dials the broker and declares the exchange.
func NewAMQPPublisher(l *slog.Logger, url, exchange string) (*AMQPPublisher, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("error connecting to amqp broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("error opening amqp channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("error declaring exchange %s: %w", exchange, err)
	}

	return &AMQPPublisher{
		l:        l,
		exchange: exchange,
		conn:     conn,
		ch:       ch,
	}, nil
}

// Publish sends the event. Errors are logged.
func (p *AMQPPublisher) Publish(ctx context.Context, e Event) {
	body, err := json.Marshal(e)
	if err != nil {
		p.l.Error("Error encoding ticket event", slog.String(logging.KeyError, err.Error()))
		return
	}

	// amqp channels are not safe for concurrent publishing.
	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.PublishWithContext(ctx, p.exchange, e.Type, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    e.OccurredAt,
		Body:         body,
	})
	if err != nil {
		p.l.Warn("Error publishing ticket event",
			slog.String("type", e.Type),
			slog.String(logging.KeyGuild, e.GuildID),
			slog.String(logging.KeyError, err.Error()))
	}
}

// Close closes the channel and the connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ch.Close(); err != nil {
		p.l.Warn("Error closing amqp channel", slog.String(logging.KeyError, err.Error()))
	}
	if err := p.conn.Close(); err != nil {
		return fmt.Errorf("error closing amqp connection: %w", err)
	}
	return nil
}
