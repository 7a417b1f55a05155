package web

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ashfaq-akash/LittleLemonApi/internal/models"
)

// Money renders an amount with two fractional digits, e.g. "12.50"
func Money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

type CategoryResponse struct {
	ID    int64  `json:"id"`
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

func NewCategoryResponse(c *models.Category) *CategoryResponse {
	if c == nil {
		return nil
	}
	return &CategoryResponse{ID: c.ID, Slug: c.Slug, Title: c.Title}
}

type MenuItemResponse struct {
	ID       int64             `json:"id"`
	Title    string            `json:"title"`
	Price    string            `json:"price"`
	Featured bool              `json:"featured"`
	Category *CategoryResponse `json:"category"`
}

func NewMenuItemResponse(m *models.MenuItem) *MenuItemResponse {
	if m == nil {
		return nil
	}
	return &MenuItemResponse{
		ID:       m.ID,
		Title:    m.Title,
		Price:    Money(m.Price),
		Featured: m.Featured,
		Category: NewCategoryResponse(m.Category),
	}
}

// UserRef is the short form of a user nested in other resources
type UserRef struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func NewUserRef(u *models.User) *UserRef {
	if u == nil {
		return nil
	}
	return &UserRef{ID: u.ID, Username: u.Username, Email: u.Email}
}

type UserResponse struct {
	ID         int64     `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Groups     []string  `json:"groups"`
	DateJoined time.Time `json:"date_joined"`
}

func NewUserResponse(u *models.User) *UserResponse {
	groups := u.Groups
	if groups == nil {
		groups = []string{}
	}
	return &UserResponse{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		Groups:     groups,
		DateJoined: u.DateJoined,
	}
}

type CartLineResponse struct {
	ID        int64             `json:"id"`
	User      *UserRef          `json:"user"`
	MenuItem  *MenuItemResponse `json:"menuitem_id"`
	Quantity  int               `json:"quantity"`
	UnitPrice string            `json:"unit_price"`
	Price     string            `json:"price"`
}

func NewCartLineResponse(l *models.CartLine, owner *UserRef) *CartLineResponse {
	return &CartLineResponse{
		ID:        l.ID,
		User:      owner,
		MenuItem:  NewMenuItemResponse(l.MenuItem),
		Quantity:  l.Quantity,
		UnitPrice: Money(l.UnitPrice),
		Price:     Money(l.Price),
	}
}

type OrderItemResponse struct {
	ID        int64             `json:"id"`
	MenuItem  *MenuItemResponse `json:"menuitem"`
	Quantity  int               `json:"quantity"`
	UnitPrice string            `json:"unit_price"`
	Price     string            `json:"price"`
}

type OrderResponse struct {
	ID           int64                `json:"id"`
	User         *UserRef             `json:"user"`
	DeliveryCrew *UserRef             `json:"delivery_crew_id"`
	Status       models.OrderStatus   `json:"status"`
	Total        string               `json:"total"`
	Date         time.Time            `json:"date"`
	Items        []*OrderItemResponse `json:"items,omitempty"`
}

// NewOrderResponse renders o. Items are included only when loaded.
func NewOrderResponse(o *models.Order) *OrderResponse {
	resp := &OrderResponse{
		ID:           o.ID,
		User:         NewUserRef(o.User),
		DeliveryCrew: NewUserRef(o.DeliveryCrew),
		Status:       o.Status,
		Total:        Money(o.Total),
		Date:         o.Date,
	}
	if o.User == nil {
		resp.User = &UserRef{ID: o.UserID}
	}
	if o.DeliveryCrew == nil && o.DeliveryCrewID != nil {
		resp.DeliveryCrew = &UserRef{ID: *o.DeliveryCrewID}
	}
	if o.Items != nil {
		resp.Items = make([]*OrderItemResponse, 0, len(o.Items))
		for i := range o.Items {
			it := &o.Items[i]
			resp.Items = append(resp.Items, &OrderItemResponse{
				ID:        it.ID,
				MenuItem:  NewMenuItemResponse(it.MenuItem),
				Quantity:  it.Quantity,
				UnitPrice: Money(it.UnitPrice),
				Price:     Money(it.Price),
			})
		}
	}
	return resp
}
