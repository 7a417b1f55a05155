package memory

import (
	"context"

	"github.com/ashfaq-akash/LittleLemonApi/internal/models"
	"github.com/ashfaq-akash/LittleLemonApi/internal/store"
)

func (q *queries) ListCartLines(ctx context.Context, userID int64) ([]models.CartLine, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	lines := []models.CartLine{}
	for _, id := range sortedKeys(q.st.cart) {
		if q.st.cart[id].userID == userID {
			lines = append(lines, q.st.cartLine(id))
		}
	}
	return lines, nil
}

// LockCartLines needs no row locks here: InTx already serializes transactions.
func (q *queries) LockCartLines(ctx context.Context, userID int64) ([]models.CartLine, error) {
	return q.ListCartLines(ctx, userID)
}

func (q *queries) InsertCartLine(ctx context.Context, l *models.CartLine) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.st.users[l.UserID]; !ok {
		return store.ErrForeignKeyViolation
	}
	if _, ok := q.st.menuItems[l.MenuItemID]; !ok {
		return store.ErrForeignKeyViolation
	}
	for _, existing := range q.st.cart {
		if existing.userID == l.UserID && existing.menuItemID == l.MenuItemID {
			return store.ErrDuplicateKey
		}
	}

	l.ID = q.st.nextID()
	q.st.cart[l.ID] = cartRow{
		userID:     l.UserID,
		menuItemID: l.MenuItemID,
		quantity:   l.Quantity,
		unitPrice:  l.UnitPrice,
		price:      l.Price,
	}
	l.MenuItem, _ = q.st.menuItem(l.MenuItemID)
	return nil
}

func (q *queries) DeleteCartLines(ctx context.Context, userID int64) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var n int64
	for id, l := range q.st.cart {
		if l.userID == userID {
			delete(q.st.cart, id)
			n++
		}
	}
	return n, nil
}
