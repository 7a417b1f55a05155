package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the two-state order lifecycle. On the wire it is 0 or 1.
type OrderStatus int

const (
	StatusActive    OrderStatus = 0
	StatusDelivered OrderStatus = 1
)

// ErrInvalidStatus is returned for any status other than 0 or 1
var ErrInvalidStatus = errors.New("status must be 0 or 1")

// Valid reports whether s is one of the two known states
func (s OrderStatus) Valid() bool {
	return s == StatusActive || s == StatusDelivered
}

func (s OrderStatus) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusDelivered:
		return "delivered"
	default:
		return "unknown"
	}
}

func (s OrderStatus) MarshalJSON() ([]byte, error) {
	if !s.Valid() {
		return nil, ErrInvalidStatus
	}
	return json.Marshal(int(s))
}

// UnmarshalJSON accepts 0, 1, false and true.
func (s *OrderStatus) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "0", "false":
		*s = StatusActive
	case "1", "true":
		*s = StatusDelivered
	default:
		return ErrInvalidStatus
	}
	return nil
}

// Order is a customer's purchase created from their cart
type Order struct {
	ID             int64           `db:"id"`
	UserID         int64           `db:"user_id"`
	DeliveryCrewID *int64          `db:"delivery_crew_id"`
	Status         OrderStatus     `db:"status"`
	Total          decimal.Decimal `db:"total"`
	Date           time.Time       `db:"date"`
	User           *User           `db:"-"`
	DeliveryCrew   *User           `db:"-"`
	Items          []OrderItem     `db:"-"`
}

// AssignedTo reports whether the order's delivery crew is userID
func (o *Order) AssignedTo(userID int64) bool {
	return o.DeliveryCrewID != nil && *o.DeliveryCrewID == userID
}

// OrderItem is a snapshot of a cart line taken when the order was created
type OrderItem struct {
	ID         int64           `db:"id"`
	OrderID    int64           `db:"order_id"`
	MenuItemID int64           `db:"menuitem_id"`
	MenuItem   *MenuItem       `db:"-"`
	Quantity   int             `db:"quantity"`
	UnitPrice  decimal.Decimal `db:"unit_price"`
	Price      decimal.Decimal `db:"price"`
}

// OrderFilter restricts an order listing. Nil fields do not filter.
type OrderFilter struct {
	UserID         *int64
	DeliveryCrewID *int64
}
