package postgres

import (
	"context"

	"github.com/ashfaq-akash/LittleLemonApi/internal/database"
	"github.com/ashfaq-akash/LittleLemonApi/internal/models"
)

func (q *queries) ListCartLines(ctx context.Context, userID int64) ([]models.CartLine, error) {
	return q.cartLines(ctx, database.ListCartLinesSQL, userID)
}

func (q *queries) LockCartLines(ctx context.Context, userID int64) ([]models.CartLine, error) {
	return q.cartLines(ctx, database.LockCartLinesSQL, userID)
}

func (q *queries) cartLines(ctx context.Context, sql string, userID int64) ([]models.CartLine, error) {
	rows, err := q.db.Query(ctx, sql, userID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	lines := []models.CartLine{}
	for rows.Next() {
		var (
			l models.CartLine
			m = &models.MenuItem{Category: &models.Category{}}
		)
		err := rows.Scan(&l.ID, &l.UserID, &l.MenuItemID, &l.Quantity, &l.UnitPrice, &l.Price,
			&m.Title, &m.Price, &m.Featured, &m.CategoryID, &m.Category.Slug, &m.Category.Title)
		if err != nil {
			return nil, err
		}
		m.ID = l.MenuItemID
		m.Category.ID = m.CategoryID
		l.MenuItem = m
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (q *queries) InsertCartLine(ctx context.Context, l *models.CartLine) error {
	err := q.db.QueryRow(ctx, database.InsertCartLineSQL,
		l.UserID, l.MenuItemID, l.Quantity, l.UnitPrice, l.Price).Scan(&l.ID)
	if err != nil {
		return mapErr(err)
	}
	l.MenuItem, err = q.GetMenuItem(ctx, l.MenuItemID)
	return err
}

func (q *queries) DeleteCartLines(ctx context.Context, userID int64) (int64, error) {
	tag, err := q.db.Exec(ctx, database.DeleteCartLinesSQL, userID)
	if err != nil {
		return 0, mapErr(err)
	}
	return tag.RowsAffected(), nil
}
