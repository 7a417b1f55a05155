package models

import (
	"math"

	"github.com/shopspring/decimal"
)

// Category groups menu items
type Category struct {
	ID    int64  `db:"id"`
	Slug  string `db:"slug"`
	Title string `db:"title"`
}

// MenuItem represents a dish or drink on the menu
type MenuItem struct {
	ID         int64           `db:"id"`
	Title      string          `db:"title"`
	Price      decimal.Decimal `db:"price"`
	Featured   bool            `db:"featured"`
	CategoryID int64           `db:"category_id"`
	Category   *Category       `db:"-"`
}

// MenuItemField names a column menu item listings can be ordered by
type MenuItemField string

const (
	MenuItemFieldID       MenuItemField = "id"
	MenuItemFieldTitle    MenuItemField = "title"
	MenuItemFieldPrice    MenuItemField = "price"
	MenuItemFieldFeatured MenuItemField = "featured"
	MenuItemFieldCategory MenuItemField = "category"
)

// SortKey is one entry of a multi-field ordering
type SortKey struct {
	Field MenuItemField
	Desc  bool
}

// MenuItemFilter narrows and pages a menu item listing.
// Page is 1-based; Offset and Limit are derived from Page and PerPage.
type MenuItemFilter struct {
	CategoryTitle string
	MaxPrice      *decimal.Decimal
	Search        string
	Ordering      []SortKey
	Page          int
	PerPage       int
}

// Offset returns the number of rows to skip for the filter's page.
// Pages too far out to address saturate at math.MaxInt and so come back empty.
func (f MenuItemFilter) Offset() int {
	if f.Page < 1 || f.PerPage < 1 {
		return 0
	}
	if f.Page-1 > math.MaxInt/f.PerPage {
		return math.MaxInt
	}
	return (f.Page - 1) * f.PerPage
}
