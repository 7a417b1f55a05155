// Package notification turns order events into human-readable notices.
package notification

import (
	"context"
	"fmt"
	"io"

	"github.com/ashfaq-akash/LittleLemonApi/internal/logger"
	"github.com/ashfaq-akash/LittleLemonApi/internal/models"
)

// Subscriber prints one line per order event
type Subscriber struct {
	out    io.Writer
	logger *logger.Logger
}

// NewSubscriber creates a subscriber writing notices to out
func NewSubscriber(out io.Writer, log *logger.Logger) *Subscriber {
	return &Subscriber{
		out:    out,
		logger: log,
	}
}

// Handle displays ev. It matches messaging.OrderEventHandler.
func (s *Subscriber) Handle(ctx context.Context, ev *models.OrderEvent) error {
	if _, err := fmt.Fprintln(s.out, Format(ev)); err != nil {
		return fmt.Errorf("write notification: %w", err)
	}

	s.logger.Debug("notification_displayed", "Order notification displayed", "", map[string]interface{}{
		"order_id":   ev.OrderID,
		"kind":       ev.Kind,
		"status":     ev.Status.String(),
		"changed_by": ev.ChangedBy,
	})
	return nil
}

// Format renders ev as a single line
func Format(ev *models.OrderEvent) string {
	timestamp := ev.Timestamp.Format("2006-01-02 15:04:05")

	switch ev.Kind {
	case models.OrderCreated:
		return fmt.Sprintf("[%s] Order %d placed by user %d. Total: %s",
			timestamp, ev.OrderID, ev.UserID, ev.Total)
	case models.OrderDeleted:
		return fmt.Sprintf("[%s] Order %d was deleted by %s.", timestamp, ev.OrderID, ev.ChangedBy)
	}

	if ev.Status == models.StatusDelivered {
		return fmt.Sprintf("[%s] Order %d has been delivered. Updated by %s.", timestamp, ev.OrderID, ev.ChangedBy)
	}
	crew := "unassigned"
	if ev.DeliveryCrewID != nil {
		crew = fmt.Sprintf("delivery crew %d", *ev.DeliveryCrewID)
	}
	return fmt.Sprintf("[%s] Order %d is out for delivery (%s). Total: %s. Updated by %s.",
		timestamp, ev.OrderID, crew, ev.Total, ev.ChangedBy)
}
