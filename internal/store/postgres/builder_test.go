package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashfaq-akash/LittleLemonApi/internal/models"
	"github.com/ashfaq-akash/LittleLemonApi/internal/store"
)

func TestBuildMenuItemQuery(t *testing.T) {
	maxPrice := decimal.RequireFromString("10.00")
	sql, args, err := buildMenuItemQuery(models.MenuItemFilter{
		CategoryTitle: "Mains",
		MaxPrice:      &maxPrice,
		Search:        "50%_off",
		Ordering: []models.SortKey{
			{Field: models.MenuItemFieldPrice, Desc: true},
			{Field: models.MenuItemFieldTitle},
		},
		Page:    3,
		PerPage: 2,
	})
	require.NoError(t, err)

	assert.Contains(t, sql, "WHERE c.title = $1 AND m.price <= $2 AND m.title ILIKE $3")
	assert.Contains(t, sql, "ORDER BY m.price DESC, m.title, m.id")
	assert.Contains(t, sql, "LIMIT $4 OFFSET $5")
	require.Len(t, args, 5)
	assert.Equal(t, `50\%\_off%`, args[2])
	assert.Equal(t, 2, args[3])
	assert.Equal(t, 4, args[4])
}

func TestBuildMenuItemQueryDefaults(t *testing.T) {
	sql, args, err := buildMenuItemQuery(models.MenuItemFilter{})
	require.NoError(t, err)
	assert.NotContains(t, sql, "WHERE")
	assert.NotContains(t, sql, "LIMIT")
	assert.Contains(t, sql, "ORDER BY m.id")
	assert.Empty(t, args)
}

func TestBuildMenuItemQueryRejectsUnknownField(t *testing.T) {
	_, _, err := buildMenuItemQuery(models.MenuItemFilter{
		Ordering: []models.SortKey{{Field: "price; DROP TABLE menu_items"}},
	})
	assert.Error(t, err)
}

func TestMapErr(t *testing.T) {
	assert.NoError(t, mapErr(nil))
	assert.ErrorIs(t, mapErr(pgx.ErrNoRows), store.ErrNotFound)
	assert.ErrorIs(t, mapErr(&pgconn.PgError{Code: codeUniqueViolation}), store.ErrDuplicateKey)
	assert.ErrorIs(t, mapErr(&pgconn.PgError{Code: codeForeignKeyViolation}), store.ErrForeignKeyViolation)

	other := errors.New("connection reset")
	assert.Equal(t, other, mapErr(other))
}
