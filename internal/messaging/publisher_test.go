package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashfaq-akash/LittleLemonApi/internal/logger"
	"github.com/ashfaq-akash/LittleLemonApi/internal/models"
)

type published struct {
	exchange string
	key      string
	msg      amqp091.Publishing
}

type fakeChannel struct {
	sent []published
	err  error
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp091.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, published{exchange: exchange, key: key, msg: msg})
	return nil
}

type fakeSource struct {
	ch *fakeChannel
}

func (s fakeSource) Exchange() string { return "orders_topic" }

func (s fakeSource) publishChannel(context.Context) (amqpChannel, error) { return s.ch, nil }

func TestPublishOrderEvent(t *testing.T) {
	ch := &fakeChannel{}
	p := &Publisher{conn: fakeSource{ch: ch}, logger: logger.Discard()}

	crew := int64(3)
	order := &models.Order{ID: 7, UserID: 2, DeliveryCrewID: &crew, Status: models.StatusDelivered, Total: decimal.RequireFromString("42.5")}
	require.NoError(t, p.PublishOrderEvent(context.Background(), models.NewOrderEvent(models.OrderUpdated, order, "luigi")))

	require.Len(t, ch.sent, 1)
	sent := ch.sent[0]
	assert.Equal(t, "orders_topic", sent.exchange)
	assert.Equal(t, "order.updated", sent.key)
	assert.Equal(t, amqp091.Persistent, sent.msg.DeliveryMode)
	assert.Equal(t, "application/json", sent.msg.ContentType)

	var ev models.OrderEvent
	require.NoError(t, json.Unmarshal(sent.msg.Body, &ev))
	assert.Equal(t, int64(7), ev.OrderID)
	assert.Equal(t, models.StatusDelivered, ev.Status)
	assert.Equal(t, "42.50", ev.Total)
	assert.Equal(t, "luigi", ev.ChangedBy)
}

func TestPublishOrderEventFailure(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel closed")}
	p := &Publisher{conn: fakeSource{ch: ch}, logger: logger.Discard()}

	err := p.PublishOrderEvent(context.Background(), models.NewOrderEvent(models.OrderDeleted, &models.Order{ID: 1}, "adrian"))
	assert.Error(t, err)
}
