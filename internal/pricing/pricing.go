// Package pricing derives the money amounts stored on cart lines and orders.
// Every function is pure; services call them before each write.
package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ashfaq-akash/LittleLemonApi/internal/models"
)

const (
	// Places is the number of fractional digits kept on every amount
	Places = 2
	// MaxQuantity is the largest quantity a cart line can hold
	MaxQuantity = 32767
)

var (
	// MaxAmount is the largest amount that fits the storage precision
	MaxAmount = decimal.RequireFromString("9999.99")
	// MinMenuPrice is the lowest price a menu item can have
	MinMenuPrice = decimal.RequireFromString("2.00")

	ErrQuantity = errors.New("quantity must be a positive integer")
	ErrOverflow = fmt.Errorf("amount exceeds %s", MaxAmount.StringFixed(Places))
)

// Round rounds d to two fractional digits, half away from zero
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// CheckAmount rejects amounts that do not fit the storage precision
func CheckAmount(d decimal.Decimal) error {
	if d.Abs().GreaterThan(MaxAmount) {
		return ErrOverflow
	}
	return nil
}

// LinePrice returns quantity × unitPrice
func LinePrice(quantity int, unitPrice decimal.Decimal) (decimal.Decimal, error) {
	if quantity < 1 || quantity > MaxQuantity {
		return decimal.Zero, ErrQuantity
	}
	price := Round(unitPrice.Mul(decimal.NewFromInt(int64(quantity))))
	if err := CheckAmount(price); err != nil {
		return decimal.Zero, err
	}
	return price, nil
}

// PriceCartLine sets the line's unit price from item and derives its price
func PriceCartLine(line *models.CartLine, item *models.MenuItem) error {
	unit := Round(item.Price)
	price, err := LinePrice(line.Quantity, unit)
	if err != nil {
		return err
	}
	line.MenuItemID = item.ID
	line.UnitPrice = unit
	line.Price = price
	return nil
}

// SnapshotOrderItem copies a cart line's quantity and amounts verbatim
func SnapshotOrderItem(line models.CartLine) models.OrderItem {
	return models.OrderItem{
		MenuItemID: line.MenuItemID,
		MenuItem:   line.MenuItem,
		Quantity:   line.Quantity,
		UnitPrice:  line.UnitPrice,
		Price:      line.Price,
	}
}

// OrderTotal sums the item prices
func OrderTotal(items []models.OrderItem) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Price)
	}
	total = Round(total)
	if err := CheckAmount(total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// ValidateMenuPrice checks a menu item price against the catalog bounds.
// It returns the user-facing message, or "" when the price is acceptable.
func ValidateMenuPrice(price decimal.Decimal) string {
	switch {
	case price.LessThan(MinMenuPrice):
		return "Ensure this value is greater than or equal to 2."
	case price.Exponent() < -Places && !price.Equal(Round(price)):
		return "Ensure that there are no more than 2 decimal places."
	case price.GreaterThan(MaxAmount):
		return "Ensure that there are no more than 6 digits in total."
	}
	return ""
}
