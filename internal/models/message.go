package models

import (
	"fmt"
	"time"
)

// OrderEventKind names what happened to an order
type OrderEventKind string

const (
	OrderCreated OrderEventKind = "created"
	OrderUpdated OrderEventKind = "updated"
	OrderDeleted OrderEventKind = "deleted"
)

// OrderEvent is published after an order change is committed
type OrderEvent struct {
	Kind           OrderEventKind `json:"kind"`
	OrderID        int64          `json:"order_id"`
	UserID         int64          `json:"user_id"`
	DeliveryCrewID *int64         `json:"delivery_crew_id"`
	Status         OrderStatus    `json:"status"`
	Total          string         `json:"total"`
	ChangedBy      string         `json:"changed_by"`
	Timestamp      time.Time      `json:"timestamp"`
}

// NewOrderEvent builds an OrderEvent describing o
func NewOrderEvent(kind OrderEventKind, o *Order, changedBy string) *OrderEvent {
	return &OrderEvent{
		Kind:           kind,
		OrderID:        o.ID,
		UserID:         o.UserID,
		DeliveryCrewID: o.DeliveryCrewID,
		Status:         o.Status,
		Total:          o.Total.StringFixed(2),
		ChangedBy:      changedBy,
		Timestamp:      time.Now().UTC(),
	}
}

// RoutingKey returns the topic routing key for the event
func (e *OrderEvent) RoutingKey() string {
	return fmt.Sprintf("order.%s", e.Kind)
}
