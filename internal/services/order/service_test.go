package order

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashfaq-akash/LittleLemonApi/internal/access"
	"github.com/ashfaq-akash/LittleLemonApi/internal/apperr"
	"github.com/ashfaq-akash/LittleLemonApi/internal/logger"
	"github.com/ashfaq-akash/LittleLemonApi/internal/models"
	"github.com/ashfaq-akash/LittleLemonApi/internal/pricing"
	"github.com/ashfaq-akash/LittleLemonApi/internal/store"
	"github.com/ashfaq-akash/LittleLemonApi/internal/store/memory"
)

type recorder struct {
	mu     sync.Mutex
	events []*models.OrderEvent
	err    error
}

func (r *recorder) PublishOrderEvent(_ context.Context, ev *models.OrderEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.err
}

func (r *recorder) kinds() []models.OrderEventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.OrderEventKind, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Kind)
	}
	return out
}

type fixture struct {
	store    *memory.Store
	events   *recorder
	service  *Service
	mario    access.Principal
	peach    access.Principal
	manager  access.Principal
	luigi    access.Principal
	toad     access.Principal
	pasta    *models.MenuItem
	lemonade *models.MenuItem
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	st := memory.New()

	mk := func(username string, groups ...string) access.Principal {
		u := &models.User{Username: username, Email: username + "@littlelemon.com", Groups: groups}
		require.NoError(t, st.CreateUser(ctx, u))
		return access.NewPrincipal(u)
	}

	f := &fixture{
		store:   st,
		events:  &recorder{},
		mario:   mk("mario"),
		peach:   mk("peach"),
		manager: mk("adrian", "manager"),
		luigi:   mk("luigi", "delivery-crew"),
		toad:    mk("toad", "delivery-crew"),
	}
	f.service = NewService(st, f.events, logger.Discard())

	cat := &models.Category{Slug: "mains", Title: "Mains"}
	require.NoError(t, st.CreateCategory(ctx, cat))
	f.pasta = &models.MenuItem{Title: "Pasta", Price: decimal.RequireFromString("12.50"), CategoryID: cat.ID}
	f.lemonade = &models.MenuItem{Title: "Lemonade", Price: decimal.RequireFromString("5.00"), CategoryID: cat.ID}
	require.NoError(t, st.CreateMenuItem(ctx, f.pasta))
	require.NoError(t, st.CreateMenuItem(ctx, f.lemonade))
	return f
}

func (f *fixture) addToCart(t *testing.T, p access.Principal, item *models.MenuItem, qty int) {
	t.Helper()
	line := &models.CartLine{UserID: p.UserID, Quantity: qty}
	require.NoError(t, pricing.PriceCartLine(line, item))
	require.NoError(t, f.store.InsertCartLine(context.Background(), line))
}

// placeOrder creates an order for mario worth 42.50
func (f *fixture) placeOrder(t *testing.T) *models.Order {
	t.Helper()
	f.addToCart(t, f.mario, f.pasta, 3)
	f.addToCart(t, f.mario, f.lemonade, 1)
	o, err := f.service.Create(context.Background(), f.mario)
	require.NoError(t, err)
	return o
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

func patch(t *testing.T, body string) Patch {
	t.Helper()
	p := Patch{}
	require.NoError(t, json.Unmarshal([]byte(body), &p))
	return p
}

func TestCreateFromCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	o := f.placeOrder(t)
	assert.Equal(t, "42.50", o.Total.StringFixed(2))
	assert.Equal(t, models.StatusActive, o.Status)
	assert.Nil(t, o.DeliveryCrewID)
	assert.Equal(t, f.mario.UserID, o.UserID)
	require.Len(t, o.Items, 2)
	assert.Equal(t, "37.50", o.Items[0].Price.StringFixed(2))
	assert.Equal(t, "5.00", o.Items[1].Price.StringFixed(2))

	lines, err := f.store.ListCartLines(ctx, f.mario.UserID)
	require.NoError(t, err)
	assert.Empty(t, lines)

	stored, err := f.store.ListOrderItems(ctx, o.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 2)

	assert.Equal(t, []models.OrderEventKind{models.OrderCreated}, f.events.kinds())
}

func TestCreateFromEmptyCart(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Create(context.Background(), f.mario)
	var v *apperr.ValidationError
	require.ErrorAs(t, err, &v)
	assert.Equal(t, []string{"Your cart is empty."}, v.NonField)

	orders, err := f.store.ListOrders(context.Background(), models.OrderFilter{})
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.Empty(t, f.events.kinds())
}

type failingItems struct {
	store.Queries
}

func (failingItems) InsertOrderItem(context.Context, *models.OrderItem) error {
	return errors.New("disk full")
}

// clearedCart reports how many lines DeleteCartLines removed, whatever the cart held
type clearedCart struct {
	store.Queries
	n int64
}

func (c clearedCart) DeleteCartLines(ctx context.Context, userID int64) (int64, error) {
	if _, err := c.Queries.DeleteCartLines(ctx, userID); err != nil {
		return 0, err
	}
	return c.n, nil
}

// txStore hands wrapped Queries to every transaction
type txStore struct {
	*memory.Store
	wrap func(store.Queries) store.Queries
}

func (s txStore) InTx(ctx context.Context, fn func(q store.Queries) error) error {
	return s.Store.InTx(ctx, func(q store.Queries) error {
		return fn(s.wrap(q))
	})
}

// interleavedStore runs before ahead of the next order write
type interleavedStore struct {
	*memory.Store
	before func()
}

func (s *interleavedStore) runBefore() {
	if s.before != nil {
		s.before()
		s.before = nil
	}
}

func (s *interleavedStore) UpdateOrder(ctx context.Context, o *models.Order) error {
	s.runBefore()
	return s.Store.UpdateOrder(ctx, o)
}

func (s *interleavedStore) UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) error {
	s.runBefore()
	return s.Store.UpdateOrderStatus(ctx, id, status)
}

func TestCreateRollsBackOnFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addToCart(t, f.mario, f.pasta, 3)
	f.addToCart(t, f.mario, f.lemonade, 1)

	failing := txStore{Store: f.store, wrap: func(q store.Queries) store.Queries { return failingItems{q} }}
	svc := NewService(failing, f.events, logger.Discard())
	_, err := svc.Create(ctx, f.mario)
	require.Error(t, err)
	assert.False(t, apperr.IsExpected(err))

	orders, err := f.store.ListOrders(ctx, models.OrderFilter{})
	require.NoError(t, err)
	assert.Empty(t, orders)

	lines, err := f.store.ListCartLines(ctx, f.mario.UserID)
	require.NoError(t, err)
	assert.Len(t, lines, 2)
	assert.Empty(t, f.events.kinds())
}

func TestCreateFailsWhenCartClearedConcurrently(t *testing.T) {
	tests := []struct {
		name    string
		cleared int64
		status  int
		message string
	}{
		{"taken by another checkout", 0, 400, "Your cart is empty."},
		{"partly taken", 1, 400, "Your cart is empty."},
		{"grew meanwhile", 3, 400, "Your cart changed while the order was being placed. Please try again."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			f.addToCart(t, f.mario, f.pasta, 3)
			f.addToCart(t, f.mario, f.lemonade, 1)

			st := txStore{Store: f.store, wrap: func(q store.Queries) store.Queries { return clearedCart{Queries: q, n: tt.cleared} }}
			_, err := NewService(st, f.events, logger.Discard()).Create(ctx, f.mario)
			require.Error(t, err)
			assert.Equal(t, tt.status, apperr.HTTPStatus(err))
			assert.Contains(t, err.Error(), tt.message)

			orders, err := f.store.ListOrders(ctx, models.OrderFilter{})
			require.NoError(t, err)
			assert.Empty(t, orders)

			lines, err := f.store.ListCartLines(ctx, f.mario.UserID)
			require.NoError(t, err)
			assert.Len(t, lines, 2)
			assert.Empty(t, f.events.kinds())
		})
	}
}

func TestConcurrentCheckoutsPlaceOneOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addToCart(t, f.mario, f.pasta, 3)
	f.addToCart(t, f.mario, f.lemonade, 1)

	const attempts = 8
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.Create(ctx, f.mario)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var placed int
	for err := range errs {
		if err == nil {
			placed++
			continue
		}
		var v *apperr.ValidationError
		require.ErrorAs(t, err, &v)
		assert.Equal(t, []string{"Your cart is empty."}, v.NonField)
	}
	assert.Equal(t, 1, placed)

	orders, err := f.store.ListOrders(ctx, models.OrderFilter{UserID: &f.mario.UserID})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "42.50", orders[0].Total.StringFixed(2))
}

func TestCreateIsCustomerOnly(t *testing.T) {
	f := newFixture(t)
	for _, p := range []access.Principal{f.manager, f.luigi} {
		_, err := f.service.Create(context.Background(), p)
		assert.Equal(t, 403, apperr.HTTPStatus(err))
	}
}

func TestSnapshotsSurvivePriceChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.placeOrder(t)

	f.pasta.Price = decimal.RequireFromString("20.00")
	require.NoError(t, f.store.UpdateMenuItem(ctx, f.pasta))

	got, err := f.service.Get(ctx, f.mario, o.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "12.50", got.Items[0].UnitPrice.StringFixed(2))
	assert.Equal(t, "42.50", got.Total.StringFixed(2))
}

func TestListScopes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.placeOrder(t)
	f.addToCart(t, f.peach, f.lemonade, 2)
	_, err := f.service.Create(ctx, f.peach)
	require.NoError(t, err)

	_, err = f.service.Update(ctx, f.manager, o.ID, patch(t, `{"delivery_crew": `+itoa(f.luigi.UserID)+`}`), true)
	require.NoError(t, err)

	count := func(p access.Principal) int {
		orders, err := f.service.List(ctx, p)
		require.NoError(t, err)
		return len(orders)
	}
	assert.Equal(t, 2, count(f.manager))
	assert.Equal(t, 1, count(f.mario))
	assert.Equal(t, 1, count(f.peach))
	assert.Equal(t, 1, count(f.luigi))
	assert.Equal(t, 0, count(f.toad))
}

func TestGetVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.placeOrder(t)

	_, err := f.service.Get(ctx, f.peach, o.ID)
	assert.Equal(t, 403, apperr.HTTPStatus(err))
	_, err = f.service.Get(ctx, f.luigi, o.ID)
	assert.Equal(t, 403, apperr.HTTPStatus(err))
	_, err = f.service.Get(ctx, f.peach, 9999)
	assert.Equal(t, 404, apperr.HTTPStatus(err))

	for _, p := range []access.Principal{f.mario, f.manager} {
		got, err := f.service.Get(ctx, p, o.ID)
		require.NoError(t, err)
		assert.Len(t, got.Items, 2)
	}
}

func TestManagerUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.placeOrder(t)

	updated, err := f.service.Update(ctx, f.manager, o.ID,
		patch(t, `{"delivery_crew": `+itoa(f.luigi.UserID)+`, "status": true, "total": "40.00"}`), true)
	require.NoError(t, err)
	require.NotNil(t, updated.DeliveryCrew)
	assert.Equal(t, "luigi", updated.DeliveryCrew.Username)
	assert.Equal(t, models.StatusDelivered, updated.Status)
	assert.Equal(t, "40.00", updated.Total.StringFixed(2))

	updated, err = f.service.Update(ctx, f.manager, o.ID, patch(t, `{"delivery_crew": null, "total": 41}`), false)
	require.NoError(t, err)
	assert.Nil(t, updated.DeliveryCrewID)
	assert.Equal(t, "41.00", updated.Total.StringFixed(2))

	updated, err = f.service.Update(ctx, f.manager, o.ID, patch(t, `{"date": "2024-03-01T12:00:00Z"}`), true)
	require.NoError(t, err)
	assert.Equal(t, 2024, updated.Date.Year())

	assert.Equal(t, []models.OrderEventKind{
		models.OrderCreated, models.OrderUpdated, models.OrderUpdated, models.OrderUpdated,
	}, f.events.kinds())
}

func TestManagerUpdateValidation(t *testing.T) {
	f := newFixture(t)
	o := f.placeOrder(t)

	tests := []struct {
		name    string
		body    string
		partial bool
		fields  []string
	}{
		{"put without required fields", `{"status": 1}`, false, []string{"delivery_crew", "total"}},
		{"unknown crew", `{"delivery_crew": 9999}`, true, []string{"delivery_crew"}},
		{"crew of wrong type", `{"delivery_crew": "luigi"}`, true, []string{"delivery_crew"}},
		{"status out of range", `{"status": 2}`, true, []string{"status"}},
		{"negative total", `{"total": -1}`, true, []string{"total"}},
		{"total too precise", `{"total": "1.234"}`, true, []string{"total"}},
		{"total not a number", `{"total": "a lot"}`, true, []string{"total"}},
		{"bad date", `{"date": "yesterday"}`, true, []string{"date"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.Update(context.Background(), f.manager, o.ID, patch(t, tt.body), tt.partial)
			var v *apperr.ValidationError
			require.ErrorAs(t, err, &v)
			for _, field := range tt.fields {
				assert.Contains(t, v.Fields, field)
			}
		})
	}

	got, err := f.service.Get(context.Background(), f.manager, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "42.50", got.Total.StringFixed(2))
	assert.Equal(t, models.StatusActive, got.Status)
}

func TestDeliveryCrewUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.placeOrder(t)

	_, err := f.service.Update(ctx, f.luigi, o.ID, patch(t, `{"status": 1}`), true)
	assert.Equal(t, 403, apperr.HTTPStatus(err), "unassigned crew")

	_, err = f.service.Update(ctx, f.manager, o.ID, patch(t, `{"delivery_crew": `+itoa(f.luigi.UserID)+`}`), true)
	require.NoError(t, err)

	_, err = f.service.Update(ctx, f.toad, o.ID, patch(t, `{"status": 1}`), true)
	assert.Equal(t, 403, apperr.HTTPStatus(err), "other crew")

	for _, body := range []string{`{}`, `{"status": 2}`, `{"status": "done"}`, `{"status": 1, "total": "0.00"}`} {
		_, err := f.service.Update(ctx, f.luigi, o.ID, patch(t, body), true)
		var v *apperr.ValidationError
		require.ErrorAs(t, err, &v, body)
	}

	updated, err := f.service.Update(ctx, f.luigi, o.ID, patch(t, `{"status": true}`), true)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, updated.Status)
	assert.Equal(t, "42.50", updated.Total.StringFixed(2))

	updated, err = f.service.Update(ctx, f.luigi, o.ID, patch(t, `{"status": 0}`), false)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, updated.Status)
}

func TestDeliveryCrewUpdateKeepsConcurrentManagerEdit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.placeOrder(t)

	_, err := f.service.Update(ctx, f.manager, o.ID, patch(t, `{"delivery_crew": `+itoa(f.luigi.UserID)+`}`), true)
	require.NoError(t, err)

	st := &interleavedStore{Store: f.store}
	st.before = func() {
		edited, err := f.store.GetOrder(ctx, o.ID)
		require.NoError(t, err)
		edited.Total = decimal.RequireFromString("99.00")
		require.NoError(t, f.store.UpdateOrder(ctx, edited))
	}
	svc := NewService(st, f.events, logger.Discard())

	updated, err := svc.Update(ctx, f.luigi, o.ID, patch(t, `{"status": 1}`), true)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, updated.Status)
	assert.Equal(t, "99.00", updated.Total.StringFixed(2))
	require.NotNil(t, updated.DeliveryCrewID)
	assert.Equal(t, f.luigi.UserID, *updated.DeliveryCrewID)
}

func TestCustomerCannotUpdateOrDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.placeOrder(t)

	_, err := f.service.Update(ctx, f.mario, o.ID, patch(t, `{"status": 1}`), true)
	assert.Equal(t, 403, apperr.HTTPStatus(err))
	assert.Equal(t, 403, apperr.HTTPStatus(f.service.Delete(ctx, f.mario, o.ID)))
	assert.Equal(t, 404, apperr.HTTPStatus(f.service.Delete(ctx, f.mario, 9999)))
}

func TestDeleteCascadesItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.placeOrder(t)

	require.NoError(t, f.service.Delete(ctx, f.manager, o.ID))

	items, err := f.store.ListOrderItems(ctx, o.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
	_, err = f.service.Get(ctx, f.manager, o.ID)
	assert.Equal(t, 404, apperr.HTTPStatus(err))
	assert.Equal(t, models.OrderDeleted, f.events.kinds()[len(f.events.kinds())-1])
}

func TestPublishFailureDoesNotFailRequest(t *testing.T) {
	f := newFixture(t)
	f.events.err = errors.New("broker down")

	o := f.placeOrder(t)
	assert.NotZero(t, o.ID)
}
