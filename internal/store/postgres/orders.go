package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/ashfaq-akash/LittleLemonApi/internal/database"
	"github.com/ashfaq-akash/LittleLemonApi/internal/models"
)

func scanOrder(row pgx.Row) (*models.Order, error) {
	var (
		o                   models.Order
		status              int16
		username, email     string
		crewName, crewEmail *string
	)
	err := row.Scan(&o.ID, &o.UserID, &o.DeliveryCrewID, &status, &o.Total, &o.Date,
		&username, &email, &crewName, &crewEmail)
	if err != nil {
		return nil, err
	}
	o.Status = models.OrderStatus(status)
	o.User = &models.User{ID: o.UserID, Username: username, Email: email}
	if o.DeliveryCrewID != nil && crewName != nil {
		o.DeliveryCrew = &models.User{ID: *o.DeliveryCrewID, Username: *crewName}
		if crewEmail != nil {
			o.DeliveryCrew.Email = *crewEmail
		}
	}
	return &o, nil
}

func (q *queries) ListOrders(ctx context.Context, f models.OrderFilter) ([]models.Order, error) {
	rows, err := q.db.Query(ctx, database.ListOrdersSQL, f.UserID, f.DeliveryCrewID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func (q *queries) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	o, err := scanOrder(q.db.QueryRow(ctx, database.GetOrderSQL, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return o, nil
}

func (q *queries) InsertOrder(ctx context.Context, o *models.Order) error {
	if o.Date.IsZero() {
		o.Date = nowUTC()
	}
	err := q.db.QueryRow(ctx, database.InsertOrderSQL,
		o.UserID, o.DeliveryCrewID, int16(o.Status), o.Total, o.Date).Scan(&o.ID)
	return mapErr(err)
}

func (q *queries) InsertOrderItem(ctx context.Context, it *models.OrderItem) error {
	err := q.db.QueryRow(ctx, database.InsertOrderItemSQL,
		it.OrderID, it.MenuItemID, it.Quantity, it.UnitPrice, it.Price).Scan(&it.ID)
	return mapErr(err)
}

func (q *queries) ListOrderItems(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	rows, err := q.db.Query(ctx, database.ListOrderItemsSQL, orderID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	items := []models.OrderItem{}
	for rows.Next() {
		var (
			it models.OrderItem
			m  = &models.MenuItem{Category: &models.Category{}}
		)
		err := rows.Scan(&it.ID, &it.OrderID, &it.MenuItemID, &it.Quantity, &it.UnitPrice, &it.Price,
			&m.Title, &m.Price, &m.Featured, &m.CategoryID, &m.Category.Slug, &m.Category.Title)
		if err != nil {
			return nil, err
		}
		m.ID = it.MenuItemID
		m.Category.ID = m.CategoryID
		it.MenuItem = m
		items = append(items, it)
	}
	return items, rows.Err()
}

func (q *queries) UpdateOrder(ctx context.Context, o *models.Order) error {
	return q.execOne(ctx, database.UpdateOrderSQL, o.ID, o.DeliveryCrewID, int16(o.Status), o.Total, o.Date)
}

func (q *queries) UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) error {
	return q.execOne(ctx, database.UpdateOrderStatusSQL, id, int16(status))
}

func (q *queries) DeleteOrder(ctx context.Context, id int64) error {
	return q.execOne(ctx, database.DeleteOrderSQL, id)
}
