package memory

import (
	"context"
	"time"

	"github.com/ashfaq-akash/LittleLemonApi/internal/models"
	"github.com/ashfaq-akash/LittleLemonApi/internal/store"
)

func (q *queries) ListOrders(ctx context.Context, f models.OrderFilter) ([]models.Order, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	orders := []models.Order{}
	for _, id := range sortedKeys(q.st.orders) {
		r := q.st.orders[id]
		if f.UserID != nil && r.userID != *f.UserID {
			continue
		}
		if f.DeliveryCrewID != nil && (r.deliveryCrewID == nil || *r.deliveryCrewID != *f.DeliveryCrewID) {
			continue
		}
		o, _ := q.st.order(id)
		orders = append(orders, *o)
	}
	return orders, nil
}

func (q *queries) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	o, ok := q.st.order(id)
	if !ok {
		return nil, store.ErrNotFound
	}
	return o, nil
}

func (q *queries) checkOrderRefs(o *models.Order) error {
	if _, ok := q.st.users[o.UserID]; !ok {
		return store.ErrForeignKeyViolation
	}
	if o.DeliveryCrewID != nil {
		if _, ok := q.st.users[*o.DeliveryCrewID]; !ok {
			return store.ErrForeignKeyViolation
		}
	}
	return nil
}

func (q *queries) InsertOrder(ctx context.Context, o *models.Order) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if err := q.checkOrderRefs(o); err != nil {
		return err
	}
	if o.Date.IsZero() {
		o.Date = time.Now().UTC()
	}
	o.ID = q.st.nextID()
	q.st.orders[o.ID] = orderRow{
		userID:         o.UserID,
		deliveryCrewID: copyID(o.DeliveryCrewID),
		status:         o.Status,
		total:          o.Total,
		date:           o.Date,
	}
	return nil
}

func (q *queries) InsertOrderItem(ctx context.Context, it *models.OrderItem) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.st.orders[it.OrderID]; !ok {
		return store.ErrForeignKeyViolation
	}
	if _, ok := q.st.menuItems[it.MenuItemID]; !ok {
		return store.ErrForeignKeyViolation
	}
	for _, existing := range q.st.orderItems {
		if existing.orderID == it.OrderID && existing.menuItemID == it.MenuItemID {
			return store.ErrDuplicateKey
		}
	}

	it.ID = q.st.nextID()
	q.st.orderItems[it.ID] = orderItemRow{
		orderID:    it.OrderID,
		menuItemID: it.MenuItemID,
		quantity:   it.Quantity,
		unitPrice:  it.UnitPrice,
		price:      it.Price,
	}
	return nil
}

func (q *queries) ListOrderItems(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	items := []models.OrderItem{}
	for _, id := range sortedKeys(q.st.orderItems) {
		if q.st.orderItems[id].orderID == orderID {
			items = append(items, q.st.orderItem(id))
		}
	}
	return items, nil
}

func (q *queries) UpdateOrder(ctx context.Context, o *models.Order) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.st.orders[o.ID]; !ok {
		return store.ErrNotFound
	}
	if err := q.checkOrderRefs(o); err != nil {
		return err
	}
	q.st.orders[o.ID] = orderRow{
		userID:         o.UserID,
		deliveryCrewID: copyID(o.DeliveryCrewID),
		status:         o.Status,
		total:          o.Total,
		date:           o.Date,
	}
	return nil
}

func (q *queries) UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	row, ok := q.st.orders[id]
	if !ok {
		return store.ErrNotFound
	}
	row.status = status
	q.st.orders[id] = row
	return nil
}

func (q *queries) DeleteOrder(ctx context.Context, id int64) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.st.orders[id]; !ok {
		return store.ErrNotFound
	}
	q.st.deleteOrder(id)
	return nil
}

func (s *state) deleteOrder(id int64) {
	for itemID, it := range s.orderItems {
		if it.orderID == id {
			delete(s.orderItems, itemID)
		}
	}
	delete(s.orders, id)
}
