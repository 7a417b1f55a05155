package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ashfaq-akash/LittleLemonApi/internal/access"
	"github.com/ashfaq-akash/LittleLemonApi/internal/apperr"
	"github.com/ashfaq-akash/LittleLemonApi/internal/logger"
	"github.com/ashfaq-akash/LittleLemonApi/internal/models"
	"github.com/ashfaq-akash/LittleLemonApi/internal/pricing"
	"github.com/ashfaq-akash/LittleLemonApi/internal/store"
	"github.com/ashfaq-akash/LittleLemonApi/internal/validation"
)

const (
	msgEmptyCart   = "Your cart is empty."
	msgCartChanged = "Your cart changed while the order was being placed. Please try again."
	msgCrewStatus  = "Invalid or missing order status."
	msgCrewField   = "Delivery crew can only update the order status."
	msgRequired    = "This field is required."
	msgDuplicateIt = "An order item with this order and menu item already exists."
	msgDate        = "Datetime has wrong format. Use one of these formats instead: YYYY-MM-DDThh:mm[:ss[.uuuuuu]][+HH:MM|-HH:MM|Z]."
)

// EventPublisher receives order events once the change is committed
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, ev *models.OrderEvent) error
}

// Service runs the order lifecycle
type Service struct {
	store  store.Store
	events EventPublisher
	logger *logger.Logger
}

func NewService(st store.Store, events EventPublisher, log *logger.Logger) *Service {
	return &Service{
		store:  st,
		events: events,
		logger: log,
	}
}

// Patch holds the raw fields of an update request keyed by name
type Patch map[string]json.RawMessage

// List returns the orders visible to p: all of them for managers, the
// assigned ones for delivery crew and the caller's own for customers.
func (s *Service) List(ctx context.Context, p access.Principal) ([]models.Order, error) {
	if err := access.Authorize(p, access.ResourceOrder, access.ActionList, access.Target{}); err != nil {
		return nil, err
	}
	orders, err := s.store.ListOrders(ctx, access.OrderListScope(p))
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// Get returns the order with its items
func (s *Service) Get(ctx context.Context, p access.Principal, id int64) (*models.Order, error) {
	o, err := s.findOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(p, access.ResourceOrder, access.ActionRead, access.OrderTarget(o)); err != nil {
		return nil, err
	}

	items, err := s.store.ListOrderItems(ctx, o.ID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	o.Items = items
	return o, nil
}

func (s *Service) findOrder(ctx context.Context, id int64) (*models.Order, error) {
	o, err := s.store.GetOrder(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("Order")
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

// Create turns the caller's cart into an order. The order, its items and
// the emptied cart are committed together or not at all.
func (s *Service) Create(ctx context.Context, p access.Principal) (*models.Order, error) {
	if err := access.Authorize(p, access.ResourceOrder, access.ActionCreate, access.Target{OwnerID: p.UserID}); err != nil {
		return nil, err
	}

	o := &models.Order{
		UserID: p.UserID,
		Status: models.StatusActive,
		Date:   time.Now().UTC(),
	}
	var items []models.OrderItem

	err := s.store.InTx(ctx, func(q store.Queries) error {
		lines, err := q.LockCartLines(ctx, p.UserID)
		if err != nil {
			return fmt.Errorf("list cart lines: %w", err)
		}
		if len(lines) == 0 {
			return apperr.NonFieldError(msgEmptyCart)
		}

		items = make([]models.OrderItem, 0, len(lines))
		for _, l := range lines {
			items = append(items, pricing.SnapshotOrderItem(l))
		}
		if o.Total, err = pricing.OrderTotal(items); err != nil {
			return apperr.NonFieldError("Order total exceeds " + pricing.MaxAmount.StringFixed(pricing.Places) + ".")
		}

		if err := q.InsertOrder(ctx, o); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		for i := range items {
			items[i].OrderID = o.ID
			err := q.InsertOrderItem(ctx, &items[i])
			if errors.Is(err, store.ErrDuplicateKey) {
				return apperr.Conflict(msgDuplicateIt)
			}
			if err != nil {
				return fmt.Errorf("insert order item: %w", err)
			}
		}

		cleared, err := q.DeleteCartLines(ctx, p.UserID)
		if err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		switch {
		case cleared < int64(len(lines)):
			// another checkout took the cart first
			return apperr.NonFieldError(msgEmptyCart)
		case cleared > int64(len(lines)):
			return apperr.Conflict(msgCartChanged)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	created, err := s.findOrder(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	created.Items = items

	s.logger.Info("order_created", "Order created from cart", "", map[string]interface{}{
		"order_id": created.ID,
		"user_id":  created.UserID,
		"items":    len(items),
		"total":    created.Total.StringFixed(pricing.Places),
	})
	s.publish(ctx, models.OrderCreated, created, p.Username)
	return created, nil
}

// Update applies patch to the order. Managers may change delivery_crew,
// status, total and date; with partial unset delivery_crew and total are
// required. The assigned delivery crew may only set status.
func (s *Service) Update(ctx context.Context, p access.Principal, id int64, patch Patch, partial bool) (*models.Order, error) {
	o, err := s.findOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	scope, err := access.OrderUpdateScope(p, o)
	if err != nil {
		return nil, err
	}

	switch scope {
	case access.ScopeStatusOnly:
		if err = applyStatusPatch(o, patch); err == nil {
			err = s.store.UpdateOrderStatus(ctx, o.ID, o.Status)
		}
	case access.ScopeAll:
		if err = s.applyPatch(ctx, o, patch, partial); err == nil {
			err = s.store.UpdateOrder(ctx, o)
		}
	default:
		err = apperr.Forbidden()
	}

	switch {
	case err == nil:
	case apperr.IsExpected(err):
		return nil, err
	case errors.Is(err, store.ErrNotFound):
		return nil, apperr.NotFound("Order")
	case errors.Is(err, store.ErrForeignKeyViolation):
		// crew member deleted after the lookup
		return nil, apperr.Field("delivery_crew", invalidPK(*o.DeliveryCrewID))
	default:
		return nil, fmt.Errorf("update order: %w", err)
	}

	updated, err := s.findOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.Info("order_updated", "Order updated", "", map[string]interface{}{
		"order_id":   updated.ID,
		"status":     updated.Status.String(),
		"updated_by": p.Username,
	})
	s.publish(ctx, models.OrderUpdated, updated, p.Username)
	return updated, nil
}

func applyStatusPatch(o *models.Order, patch Patch) error {
	v := apperr.NewValidation()
	for field := range patch {
		if field != "status" {
			v.Add(field, msgCrewField)
		}
	}

	var status models.OrderStatus
	raw, ok := patch["status"]
	if !ok || json.Unmarshal(raw, &status) != nil {
		v.Add("status", msgCrewStatus)
	}
	if err := v.OrNil(); err != nil {
		return err
	}
	o.Status = status
	return nil
}

func (s *Service) applyPatch(ctx context.Context, o *models.Order, patch Patch, partial bool) error {
	v := apperr.NewValidation()
	if !partial {
		for _, field := range []string{"delivery_crew", "total"} {
			if _, ok := patch[field]; !ok {
				v.Add(field, msgRequired)
			}
		}
	}

	if raw, ok := patch["delivery_crew"]; ok {
		crewID, msg, err := s.crewID(ctx, raw)
		switch {
		case err != nil:
			return err
		case msg != "":
			v.Add("delivery_crew", msg)
		default:
			o.DeliveryCrewID = crewID
		}
	}

	if raw, ok := patch["status"]; ok {
		var status models.OrderStatus
		if err := json.Unmarshal(raw, &status); err != nil {
			v.Add("status", "Must be a valid boolean.")
		} else {
			o.Status = status
		}
	}

	if raw, ok := patch["total"]; ok {
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			v.Add("total", "A valid number is required.")
		} else if total := validation.Decimal(v, "total", &n); total != nil {
			switch {
			case total.IsNegative():
				v.Add("total", "Ensure this value is greater than or equal to 0.")
			case !total.Equal(pricing.Round(*total)):
				v.Add("total", "Ensure that there are no more than 2 decimal places.")
			case pricing.CheckAmount(*total) != nil:
				v.Add("total", "Ensure that there are no more than 6 digits in total.")
			default:
				o.Total = pricing.Round(*total)
			}
		}
	}

	if raw, ok := patch["date"]; ok {
		var date time.Time
		if err := json.Unmarshal(raw, &date); err != nil {
			v.Add("date", msgDate)
		} else {
			o.Date = date.UTC()
		}
	}

	return v.OrNil()
}

// crewID decodes a delivery_crew value. null clears the assignment.
// msg is set when the value does not name a user.
func (s *Service) crewID(ctx context.Context, raw json.RawMessage) (id *int64, msg string, err error) {
	const msgType = "Incorrect type. Expected pk value."

	var n *json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, msgType, nil
	}
	if n == nil {
		return nil, "", nil
	}
	userID, err := n.Int64()
	if err != nil {
		return nil, msgType, nil
	}

	_, err = s.store.GetUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, invalidPK(userID), nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("get user: %w", err)
	}
	return &userID, "", nil
}

// Delete removes the order and its items
func (s *Service) Delete(ctx context.Context, p access.Principal, id int64) error {
	o, err := s.findOrder(ctx, id)
	if err != nil {
		return err
	}
	if err := access.Authorize(p, access.ResourceOrder, access.ActionDelete, access.OrderTarget(o)); err != nil {
		return err
	}

	if err := s.store.DeleteOrder(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("Order")
		}
		return fmt.Errorf("delete order: %w", err)
	}
	s.logger.Info("order_deleted", "Order deleted", "", map[string]interface{}{
		"order_id":   id,
		"deleted_by": p.Username,
	})
	s.publish(ctx, models.OrderDeleted, o, p.Username)
	return nil
}

// publish sends the event. The change is already committed, so a failure is only logged.
func (s *Service) publish(ctx context.Context, kind models.OrderEventKind, o *models.Order, changedBy string) {
	ev := models.NewOrderEvent(kind, o, changedBy)
	if err := s.events.PublishOrderEvent(ctx, ev); err != nil {
		s.logger.Error("order_event_publish_failed", "Failed to publish order event", "", err, map[string]interface{}{
			"order_id":    o.ID,
			"routing_key": ev.RoutingKey(),
		})
	}
}

func invalidPK(id int64) string {
	return fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id)
}
