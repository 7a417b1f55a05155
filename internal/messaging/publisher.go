package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/ashfaq-akash/LittleLemonApi/internal/logger"
	"github.com/ashfaq-akash/LittleLemonApi/internal/models"
)

type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

// channelSource is implemented by Connection
type channelSource interface {
	Exchange() string
	publishChannel(ctx context.Context) (amqpChannel, error)
}

func (c *Connection) publishChannel(ctx context.Context) (amqpChannel, error) {
	return c.Channel(ctx)
}

// Publisher sends order events to the topic exchange
type Publisher struct {
	conn   channelSource
	logger *logger.Logger
}

// NewPublisher creates a new order event publisher
func NewPublisher(conn *Connection, log *logger.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: log,
	}
}

// PublishOrderEvent publishes ev with routing key order.<kind>
func (p *Publisher) PublishOrderEvent(ctx context.Context, ev *models.OrderEvent) error {
	return p.publishMessage(ctx, ev.RoutingKey(), ev)
}

func (p *Publisher) publishMessage(ctx context.Context, routingKey string, message interface{}) error {
	exchange := p.conn.Exchange()

	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	ch, err := p.conn.publishChannel(ctx)
	if err != nil {
		return err
	}

	err = ch.PublishWithContext(
		ctx,
		exchange,   // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		p.logger.Error("message_publish_failed",
			fmt.Sprintf("Failed to publish message to exchange %s", exchange),
			"", err, map[string]interface{}{
				"exchange":    exchange,
				"routing_key": routingKey,
			})
		return fmt.Errorf("failed to publish message: %w", err)
	}

	p.logger.Debug("message_published",
		fmt.Sprintf("Published message to exchange %s", exchange),
		"", map[string]interface{}{
			"exchange":     exchange,
			"routing_key":  routingKey,
			"message_size": len(body),
		})
	return nil
}

// Discard is a publisher that drops every event. It is used when RabbitMQ is disabled.
type Discard struct{}

func (Discard) PublishOrderEvent(context.Context, *models.OrderEvent) error { return nil }
