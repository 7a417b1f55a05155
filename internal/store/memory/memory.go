// Package memory is an in-process implementation of store.Store. It honours
// the same uniqueness and referential rules as the PostgreSQL schema.
package memory

import (
	"context"
	"sync"

	"github.com/ashfaq-akash/LittleLemonApi/internal/store"
)

type state struct {
	seq        int64
	categories map[int64]categoryRow
	menuItems  map[int64]menuItemRow
	cart       map[int64]cartRow
	orders     map[int64]orderRow
	orderItems map[int64]orderItemRow
	users      map[int64]userRow
	groups     map[string]map[int64]struct{}
	tokens     map[string]int64
}

func newState() *state {
	return &state{
		categories: map[int64]categoryRow{},
		menuItems:  map[int64]menuItemRow{},
		cart:       map[int64]cartRow{},
		orders:     map[int64]orderRow{},
		orderItems: map[int64]orderItemRow{},
		users:      map[int64]userRow{},
		groups:     map[string]map[int64]struct{}{},
		tokens:     map[string]int64{},
	}
}

func (s *state) nextID() int64 {
	s.seq++
	return s.seq
}

func (s *state) clone() *state {
	c := newState()
	c.seq = s.seq
	for k, v := range s.categories {
		c.categories[k] = v
	}
	for k, v := range s.menuItems {
		c.menuItems[k] = v
	}
	for k, v := range s.cart {
		c.cart[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.orderItems {
		c.orderItems[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for g, members := range s.groups {
		m := make(map[int64]struct{}, len(members))
		for id := range members {
			m[id] = struct{}{}
		}
		c.groups[g] = m
	}
	for k, v := range s.tokens {
		c.tokens[k] = v
	}
	return c
}

// Store keeps every record in maps guarded by one mutex
type Store struct {
	*queries
	mu *sync.Mutex
}

var _ store.Store = (*Store)(nil)

// New returns an empty store
func New() *Store {
	mu := &sync.Mutex{}
	return &Store{
		queries: &queries{mu: mu, st: newState()},
		mu:      mu,
	}
}

// InTx runs fn against a copy of the data and publishes the copy only when fn
// succeeds. Transactions are serialized; fn must use the Queries it is given.
func (s *Store) InTx(ctx context.Context, fn func(q store.Queries) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	work := s.st.clone()
	if err := fn(&queries{mu: noLock{}, st: work}); err != nil {
		return err
	}
	*s.st = *work
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

type noLock struct{}

func (noLock) Lock()   {}
func (noLock) Unlock() {}

type queries struct {
	mu sync.Locker
	st *state
}
