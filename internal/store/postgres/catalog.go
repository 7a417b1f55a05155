package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/ashfaq-akash/LittleLemonApi/internal/database"
	"github.com/ashfaq-akash/LittleLemonApi/internal/models"
)

func (q *queries) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := q.db.Query(ctx, database.ListCategoriesSQL)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Slug, &c.Title); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (q *queries) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	var c models.Category
	err := q.db.QueryRow(ctx, database.GetCategorySQL, id).Scan(&c.ID, &c.Slug, &c.Title)
	if err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}

func (q *queries) CreateCategory(ctx context.Context, c *models.Category) error {
	return mapErr(q.db.QueryRow(ctx, database.InsertCategorySQL, c.Slug, c.Title).Scan(&c.ID))
}

func (q *queries) UpdateCategory(ctx context.Context, c *models.Category) error {
	return q.execOne(ctx, database.UpdateCategorySQL, c.ID, c.Slug, c.Title)
}

func (q *queries) DeleteCategory(ctx context.Context, id int64) error {
	return q.execOne(ctx, database.DeleteCategorySQL, id)
}

var menuItemColumns = map[models.MenuItemField]string{
	models.MenuItemFieldID:       "m.id",
	models.MenuItemFieldTitle:    "m.title",
	models.MenuItemFieldPrice:    "m.price",
	models.MenuItemFieldFeatured: "m.featured",
	models.MenuItemFieldCategory: "m.category_id",
}

// buildMenuItemQuery renders the listing SQL for f. Sort fields outside
// menuItemColumns are rejected before they reach the database.
func buildMenuItemQuery(f models.MenuItemFilter) (string, []any, error) {
	var (
		sb    strings.Builder
		args  []any
		where []string
	)
	sb.WriteString(database.SelectMenuItemsSQL)

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.CategoryTitle != "" {
		where = append(where, "c.title = "+arg(f.CategoryTitle))
	}
	if f.MaxPrice != nil {
		where = append(where, "m.price <= "+arg(*f.MaxPrice))
	}
	if f.Search != "" {
		where = append(where, "m.title ILIKE "+arg(escapeLike(f.Search)+"%"))
	}
	if len(where) > 0 {
		sb.WriteString("\n\t\tWHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}

	order := make([]string, 0, len(f.Ordering)+1)
	for _, key := range f.Ordering {
		col, ok := menuItemColumns[key.Field]
		if !ok {
			return "", nil, fmt.Errorf("unknown ordering field %q", key.Field)
		}
		if key.Desc {
			col += " DESC"
		}
		order = append(order, col)
	}
	order = append(order, "m.id")
	sb.WriteString("\n\t\tORDER BY ")
	sb.WriteString(strings.Join(order, ", "))

	if f.PerPage > 0 {
		sb.WriteString("\n\t\tLIMIT " + arg(f.PerPage) + " OFFSET " + arg(f.Offset()))
	}
	return sb.String(), args, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func scanMenuItem(row pgx.Row) (*models.MenuItem, error) {
	m := &models.MenuItem{Category: &models.Category{}}
	err := row.Scan(&m.ID, &m.Title, &m.Price, &m.Featured, &m.CategoryID, &m.Category.Slug, &m.Category.Title)
	if err != nil {
		return nil, err
	}
	m.Category.ID = m.CategoryID
	return m, nil
}

func (q *queries) ListMenuItems(ctx context.Context, f models.MenuItemFilter) ([]models.MenuItem, error) {
	sql, args, err := buildMenuItemQuery(f)
	if err != nil {
		return nil, err
	}

	rows, err := q.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	items := []models.MenuItem{}
	for rows.Next() {
		m, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *m)
	}
	return items, rows.Err()
}

func (q *queries) GetMenuItem(ctx context.Context, id int64) (*models.MenuItem, error) {
	m, err := scanMenuItem(q.db.QueryRow(ctx, database.GetMenuItemSQL, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return m, nil
}

func (q *queries) CreateMenuItem(ctx context.Context, m *models.MenuItem) error {
	err := q.db.QueryRow(ctx, database.InsertMenuItemSQL, m.Title, m.Price, m.Featured, m.CategoryID).Scan(&m.ID)
	if err != nil {
		return mapErr(err)
	}
	m.Category, err = q.GetCategory(ctx, m.CategoryID)
	return err
}

func (q *queries) UpdateMenuItem(ctx context.Context, m *models.MenuItem) error {
	if err := q.execOne(ctx, database.UpdateMenuItemSQL, m.ID, m.Title, m.Price, m.Featured, m.CategoryID); err != nil {
		return err
	}
	var err error
	m.Category, err = q.GetCategory(ctx, m.CategoryID)
	return err
}

func (q *queries) DeleteMenuItem(ctx context.Context, id int64) error {
	return q.execOne(ctx, database.DeleteMenuItemSQL, id)
}
