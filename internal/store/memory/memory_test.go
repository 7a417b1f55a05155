package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashfaq-akash/LittleLemonApi/internal/models"
	"github.com/ashfaq-akash/LittleLemonApi/internal/store"
)

func seedMenu(t *testing.T, s *Store) (*models.Category, []*models.MenuItem) {
	t.Helper()
	ctx := context.Background()

	cat := &models.Category{Title: "Mains", Slug: "mains"}
	require.NoError(t, s.CreateCategory(ctx, cat))

	var items []*models.MenuItem
	for _, item := range []struct {
		title string
		price string
	}{{"Pasta", "12.50"}, {"Bruschetta", "5.00"}, {"Pizza", "9.99"}} {
		m := &models.MenuItem{Title: item.title, Price: decimal.RequireFromString(item.price), CategoryID: cat.ID}
		require.NoError(t, s.CreateMenuItem(ctx, m))
		items = append(items, m)
	}
	return cat, items
}

func TestCategoryDeleteIsProtected(t *testing.T) {
	s := New()
	ctx := context.Background()
	cat, items := seedMenu(t, s)

	assert.ErrorIs(t, s.DeleteCategory(ctx, cat.ID), store.ErrForeignKeyViolation)

	for _, m := range items {
		require.NoError(t, s.DeleteMenuItem(ctx, m.ID))
	}
	assert.NoError(t, s.DeleteCategory(ctx, cat.ID))
	assert.ErrorIs(t, s.DeleteCategory(ctx, cat.ID), store.ErrNotFound)
}

func TestListMenuItemsFilterOrderPage(t *testing.T) {
	s := New()
	ctx := context.Background()
	_, _ = seedMenu(t, s)

	maxPrice := decimal.RequireFromString("10")
	items, err := s.ListMenuItems(ctx, models.MenuItemFilter{
		MaxPrice: &maxPrice,
		Ordering: []models.SortKey{{Field: models.MenuItemFieldPrice, Desc: true}},
	})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Pizza", items[0].Title)
	assert.Equal(t, "Mains", items[0].Category.Title)

	items, err = s.ListMenuItems(ctx, models.MenuItemFilter{Search: "p"})
	require.NoError(t, err)
	assert.Len(t, items, 2)

	items, err = s.ListMenuItems(ctx, models.MenuItemFilter{Page: 2, PerPage: 2})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Pizza", items[0].Title)

	items, err = s.ListMenuItems(ctx, models.MenuItemFilter{Page: 9, PerPage: 2})
	require.NoError(t, err)
	assert.Empty(t, items)

	items, err = s.ListMenuItems(ctx, models.MenuItemFilter{CategoryTitle: "Desserts"})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCartLineUniqueness(t *testing.T) {
	s := New()
	ctx := context.Background()
	_, items := seedMenu(t, s)

	u := &models.User{Username: "mario"}
	require.NoError(t, s.CreateUser(ctx, u))

	line := &models.CartLine{UserID: u.ID, MenuItemID: items[0].ID, Quantity: 1}
	require.NoError(t, s.InsertCartLine(ctx, line))

	dup := &models.CartLine{UserID: u.ID, MenuItemID: items[0].ID, Quantity: 2}
	assert.ErrorIs(t, s.InsertCartLine(ctx, dup), store.ErrDuplicateKey)

	n, err := s.DeleteCartLines(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = s.DeleteCartLines(ctx, u.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestInTxRollsBackOnError(t *testing.T) {
	s := New()
	ctx := context.Background()
	u := &models.User{Username: "mario"}
	require.NoError(t, s.CreateUser(ctx, u))

	boom := errors.New("boom")
	err := s.InTx(ctx, func(q store.Queries) error {
		if err := q.InsertOrder(ctx, &models.Order{UserID: u.ID, Total: decimal.NewFromInt(5)}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	orders, err := s.ListOrders(ctx, models.OrderFilter{})
	require.NoError(t, err)
	assert.Empty(t, orders)

	err = s.InTx(ctx, func(q store.Queries) error {
		return q.InsertOrder(ctx, &models.Order{UserID: u.ID, Total: decimal.NewFromInt(5)})
	})
	require.NoError(t, err)

	orders, err = s.ListOrders(ctx, models.OrderFilter{})
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestDeleteUserCascades(t *testing.T) {
	s := New()
	ctx := context.Background()
	_, items := seedMenu(t, s)

	customer := &models.User{Username: "mario"}
	crew := &models.User{Username: "luigi", Groups: []string{"delivery-crew"}}
	require.NoError(t, s.CreateUser(ctx, customer))
	require.NoError(t, s.CreateUser(ctx, crew))
	require.NoError(t, s.CreateToken(ctx, crew.ID, "abc"))

	own := &models.Order{UserID: crew.ID, Total: decimal.NewFromInt(5)}
	require.NoError(t, s.InsertOrder(ctx, own))
	require.NoError(t, s.InsertOrderItem(ctx, &models.OrderItem{OrderID: own.ID, MenuItemID: items[1].ID, Quantity: 1}))

	assigned := &models.Order{UserID: customer.ID, DeliveryCrewID: &crew.ID, Total: decimal.NewFromInt(5)}
	require.NoError(t, s.InsertOrder(ctx, assigned))

	require.NoError(t, s.DeleteUser(ctx, crew.ID))

	_, err := s.GetOrder(ctx, own.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	got, err := s.GetOrder(ctx, assigned.ID)
	require.NoError(t, err)
	assert.Nil(t, got.DeliveryCrewID)

	orphans, err := s.ListOrderItems(ctx, own.ID)
	require.NoError(t, err)
	assert.Empty(t, orphans)

	_, err = s.GetUserByToken(ctx, "abc")
	assert.ErrorIs(t, err, store.ErrNotFound)

	members, err := s.ListGroupMembers(ctx, "delivery-crew")
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestGroupsAndTokens(t *testing.T) {
	s := New()
	ctx := context.Background()
	u := &models.User{Username: "adrian"}
	require.NoError(t, s.CreateUser(ctx, u))
	assert.ErrorIs(t, s.CreateUser(ctx, &models.User{Username: "adrian"}), store.ErrDuplicateKey)

	require.NoError(t, s.AddUserToGroup(ctx, u.ID, "manager"))
	require.NoError(t, s.AddUserToGroup(ctx, u.ID, "manager"))
	got, err := s.GetUserByUsername(ctx, "adrian")
	require.NoError(t, err)
	assert.Equal(t, []string{"manager"}, got.Groups)

	removed, err := s.RemoveUserFromGroup(ctx, u.ID, "manager")
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = s.RemoveUserFromGroup(ctx, u.ID, "manager")
	require.NoError(t, err)
	assert.False(t, removed)

	require.NoError(t, s.CreateToken(ctx, u.ID, "k1"))
	assert.ErrorIs(t, s.CreateToken(ctx, u.ID, "k2"), store.ErrDuplicateKey)
	key, err := s.GetToken(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "k1", key)
}
