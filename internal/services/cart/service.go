package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/ashfaq-akash/LittleLemonApi/internal/access"
	"github.com/ashfaq-akash/LittleLemonApi/internal/apperr"
	"github.com/ashfaq-akash/LittleLemonApi/internal/logger"
	"github.com/ashfaq-akash/LittleLemonApi/internal/models"
	"github.com/ashfaq-akash/LittleLemonApi/internal/pricing"
	"github.com/ashfaq-akash/LittleLemonApi/internal/store"
	"github.com/ashfaq-akash/LittleLemonApi/internal/validation"
)

const msgDuplicateLine = "A cart item with this user and menu item already exists."

// Service manages the caller's cart lines
type Service struct {
	store  store.Store
	logger *logger.Logger
}

func NewService(st store.Store, log *logger.Logger) *Service {
	return &Service{
		store:  st,
		logger: log,
	}
}

// LineInput is the payload for adding a line
type LineInput struct {
	MenuItemID *int64 `json:"menuitem" validate:"required"`
	Quantity   *int   `json:"quantity" validate:"required,min=1,max=32767"`
}

// ListMine returns the caller's cart lines with their menu items
func (s *Service) ListMine(ctx context.Context, p access.Principal) ([]models.CartLine, error) {
	if err := access.Authorize(p, access.ResourceCart, access.ActionList, access.Target{OwnerID: p.UserID}); err != nil {
		return nil, err
	}
	lines, err := s.store.ListCartLines(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("list cart lines: %w", err)
	}
	return lines, nil
}

// AddLine prices a new line at the current menu price and stores it.
// A second line for the same menu item is a conflict.
func (s *Service) AddLine(ctx context.Context, p access.Principal, in LineInput) (*models.CartLine, error) {
	if err := access.Authorize(p, access.ResourceCart, access.ActionCreate, access.Target{OwnerID: p.UserID}); err != nil {
		return nil, err
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	item, err := s.store.GetMenuItem(ctx, *in.MenuItemID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Field("menuitem", invalidPK(*in.MenuItemID))
	}
	if err != nil {
		return nil, fmt.Errorf("get menu item: %w", err)
	}

	line := &models.CartLine{UserID: p.UserID, Quantity: *in.Quantity}
	if err := pricing.PriceCartLine(line, item); err != nil {
		return nil, lineErr(err)
	}

	err = s.store.InsertCartLine(ctx, line)
	switch {
	case errors.Is(err, store.ErrDuplicateKey):
		return nil, apperr.Conflict(msgDuplicateLine)
	case errors.Is(err, store.ErrForeignKeyViolation):
		// menu item removed after the lookup
		return nil, apperr.Field("menuitem", invalidPK(*in.MenuItemID))
	case err != nil:
		return nil, fmt.Errorf("insert cart line: %w", err)
	}
	if line.MenuItem == nil {
		line.MenuItem = item
	}

	s.logger.Debug("cart_line_added", "Cart line added", "", map[string]interface{}{
		"user_id":      p.UserID,
		"menu_item_id": item.ID,
		"quantity":     line.Quantity,
		"price":        line.Price.StringFixed(pricing.Places),
	})
	return line, nil
}

// ClearMine removes every line the caller owns. Clearing an empty cart succeeds.
func (s *Service) ClearMine(ctx context.Context, p access.Principal) error {
	if err := access.Authorize(p, access.ResourceCart, access.ActionDelete, access.Target{OwnerID: p.UserID}); err != nil {
		return err
	}
	n, err := s.store.DeleteCartLines(ctx, p.UserID)
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	s.logger.Debug("cart_cleared", "Cart cleared", "", map[string]interface{}{
		"user_id": p.UserID,
		"removed": n,
	})
	return nil
}

func lineErr(err error) error {
	switch {
	case errors.Is(err, pricing.ErrQuantity):
		return apperr.Field("quantity", "Ensure this value is greater than or equal to 1.")
	case errors.Is(err, pricing.ErrOverflow):
		return apperr.Field("quantity", "Ensure the line price does not exceed "+pricing.MaxAmount.StringFixed(pricing.Places)+".")
	}
	return err
}

func invalidPK(id int64) string {
	return fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id)
}
