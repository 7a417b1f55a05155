package memory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ashfaq-akash/LittleLemonApi/internal/models"
)

type categoryRow struct {
	slug  string
	title string
}

type menuItemRow struct {
	title      string
	price      decimal.Decimal
	featured   bool
	categoryID int64
}

type cartRow struct {
	userID     int64
	menuItemID int64
	quantity   int
	unitPrice  decimal.Decimal
	price      decimal.Decimal
}

type orderRow struct {
	userID         int64
	deliveryCrewID *int64
	status         models.OrderStatus
	total          decimal.Decimal
	date           time.Time
}

type orderItemRow struct {
	orderID    int64
	menuItemID int64
	quantity   int
	unitPrice  decimal.Decimal
	price      decimal.Decimal
}

type userRow struct {
	username     string
	email        string
	passwordHash string
	superuser    bool
	dateJoined   time.Time
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func (s *state) category(id int64) (*models.Category, bool) {
	r, ok := s.categories[id]
	if !ok {
		return nil, false
	}
	return &models.Category{ID: id, Slug: r.slug, Title: r.title}, true
}

func (s *state) menuItem(id int64) (*models.MenuItem, bool) {
	r, ok := s.menuItems[id]
	if !ok {
		return nil, false
	}
	m := &models.MenuItem{
		ID:         id,
		Title:      r.title,
		Price:      r.price,
		Featured:   r.featured,
		CategoryID: r.categoryID,
	}
	m.Category, _ = s.category(r.categoryID)
	return m, true
}

func (s *state) cartLine(id int64) models.CartLine {
	r := s.cart[id]
	l := models.CartLine{
		ID:         id,
		UserID:     r.userID,
		MenuItemID: r.menuItemID,
		Quantity:   r.quantity,
		UnitPrice:  r.unitPrice,
		Price:      r.price,
	}
	l.MenuItem, _ = s.menuItem(r.menuItemID)
	return l
}

func (s *state) order(id int64) (*models.Order, bool) {
	r, ok := s.orders[id]
	if !ok {
		return nil, false
	}
	o := &models.Order{
		ID:             id,
		UserID:         r.userID,
		DeliveryCrewID: copyID(r.deliveryCrewID),
		Status:         r.status,
		Total:          r.total,
		Date:           r.date,
	}
	o.User, _ = s.user(r.userID)
	if r.deliveryCrewID != nil {
		o.DeliveryCrew, _ = s.user(*r.deliveryCrewID)
	}
	return o, true
}

func (s *state) orderItem(id int64) models.OrderItem {
	r := s.orderItems[id]
	it := models.OrderItem{
		ID:         id,
		OrderID:    r.orderID,
		MenuItemID: r.menuItemID,
		Quantity:   r.quantity,
		UnitPrice:  r.unitPrice,
		Price:      r.price,
	}
	it.MenuItem, _ = s.menuItem(r.menuItemID)
	return it
}

func (s *state) user(id int64) (*models.User, bool) {
	r, ok := s.users[id]
	if !ok {
		return nil, false
	}
	u := &models.User{
		ID:           id,
		Username:     r.username,
		Email:        r.email,
		PasswordHash: r.passwordHash,
		IsSuperuser:  r.superuser,
		DateJoined:   r.dateJoined,
	}
	for _, g := range sortedKeys(s.groups) {
		if _, member := s.groups[g][id]; member {
			u.Groups = append(u.Groups, g)
		}
	}
	return u, true
}
