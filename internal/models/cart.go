package models

import "github.com/shopspring/decimal"

// CartLine is one pending purchase of a menu item by a user.
// A user has at most one line per menu item.
type CartLine struct {
	ID         int64           `db:"id"`
	UserID     int64           `db:"user_id"`
	MenuItemID int64           `db:"menuitem_id"`
	MenuItem   *MenuItem       `db:"-"`
	Quantity   int             `db:"quantity"`
	UnitPrice  decimal.Decimal `db:"unit_price"`
	Price      decimal.Decimal `db:"price"`
}
