package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rabbitmq/amqp091-go"

	"github.com/ashfaq-akash/LittleLemonApi/internal/logger"
	"github.com/ashfaq-akash/LittleLemonApi/internal/models"
)

// OrderEventHandler processes one decoded order event
type OrderEventHandler func(ctx context.Context, ev *models.OrderEvent) error

// Consumer reads order events from a queue bound to the exchange
type Consumer struct {
	conn        *Connection
	logger      *logger.Logger
	queueName   string
	bindingKey  string
	consumerTag string
	prefetch    int
}

// NewConsumer creates a consumer for queueName bound with bindingKey, e.g. "order.*".
// An empty queueName declares an exclusive server-named queue.
func NewConsumer(conn *Connection, log *logger.Logger, queueName, bindingKey, consumerTag string, prefetch int) *Consumer {
	return &Consumer{
		conn:        conn,
		logger:      log,
		queueName:   queueName,
		bindingKey:  bindingKey,
		consumerTag: consumerTag,
		prefetch:    prefetch,
	}
}

// Run consumes until ctx is cancelled or the delivery channel closes.
// Malformed messages are rejected without requeue, failed ones are requeued once.
func (c *Consumer) Run(ctx context.Context, handler OrderEventHandler) error {
	ch, err := c.conn.Channel(ctx)
	if err != nil {
		return err
	}

	exclusive := c.queueName == ""
	q, err := ch.QueueDeclare(
		c.queueName, // name
		!exclusive,  // durable
		exclusive,   // delete when unused
		exclusive,   // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := ch.QueueBind(q.Name, c.bindingKey, c.conn.Exchange(), false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %s with routing key %s: %w", q.Name, c.bindingKey, err)
	}

	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	msgs, err := ch.ConsumeWithContext(ctx,
		q.Name,        // queue
		c.consumerTag, // consumer
		false,         // auto-ack
		exclusive,     // exclusive
		false,         // no-local
		false,         // no-wait
		nil,           // args
	)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	c.logger.Info("consumer_started", fmt.Sprintf("Consuming order events from %s", q.Name), "", map[string]interface{}{
		"binding_key": c.bindingKey,
	})

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			c.handle(ctx, msg, handler)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, msg amqp091.Delivery, handler OrderEventHandler) {
	var ev models.OrderEvent
	if err := json.Unmarshal(msg.Body, &ev); err != nil {
		c.logger.Error("message_decode_failed", "Failed to decode order event", "", err, map[string]interface{}{
			"routing_key": msg.RoutingKey,
		})
		msg.Nack(false, false)
		return
	}

	if err := handler(ctx, &ev); err != nil {
		c.logger.Error("message_handle_failed", "Failed to handle order event", "", err, map[string]interface{}{
			"order_id": ev.OrderID,
			"kind":     ev.Kind,
		})
		msg.Nack(false, !msg.Redelivered)
		return
	}
	msg.Ack(false)
}
