package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/ashfaq-akash/LittleLemonApi/internal/models"
	"github.com/ashfaq-akash/LittleLemonApi/internal/store"
)

func sortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func (q *queries) ListCategories(ctx context.Context) ([]models.Category, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]models.Category, 0, len(q.st.categories))
	for _, id := range sortedKeys(q.st.categories) {
		c, _ := q.st.category(id)
		out = append(out, *c)
	}
	return out, nil
}

func (q *queries) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	c, ok := q.st.category(id)
	if !ok {
		return nil, store.ErrNotFound
	}
	return c, nil
}

func (q *queries) CreateCategory(ctx context.Context, c *models.Category) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	c.ID = q.st.nextID()
	q.st.categories[c.ID] = categoryRow{slug: c.Slug, title: c.Title}
	return nil
}

func (q *queries) UpdateCategory(ctx context.Context, c *models.Category) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.st.categories[c.ID]; !ok {
		return store.ErrNotFound
	}
	q.st.categories[c.ID] = categoryRow{slug: c.Slug, title: c.Title}
	return nil
}

func (q *queries) DeleteCategory(ctx context.Context, id int64) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.st.categories[id]; !ok {
		return store.ErrNotFound
	}
	for _, m := range q.st.menuItems {
		if m.categoryID == id {
			return store.ErrForeignKeyViolation
		}
	}
	delete(q.st.categories, id)
	return nil
}

func (q *queries) ListMenuItems(ctx context.Context, f models.MenuItemFilter) ([]models.MenuItem, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	search := strings.ToLower(f.Search)
	items := make([]models.MenuItem, 0, len(q.st.menuItems))
	for _, id := range sortedKeys(q.st.menuItems) {
		m, _ := q.st.menuItem(id)
		if f.CategoryTitle != "" && (m.Category == nil || m.Category.Title != f.CategoryTitle) {
			continue
		}
		if f.MaxPrice != nil && m.Price.GreaterThan(*f.MaxPrice) {
			continue
		}
		if search != "" && !strings.HasPrefix(strings.ToLower(m.Title), search) {
			continue
		}
		items = append(items, *m)
	}

	slices.SortStableFunc(items, func(a, b models.MenuItem) int {
		for _, key := range f.Ordering {
			c := compareMenuItems(a, b, key.Field)
			if key.Desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return cmp.Compare(a.ID, b.ID)
	})

	if f.PerPage <= 0 {
		return items, nil
	}
	start := f.Offset()
	if start < 0 || start >= len(items) {
		return []models.MenuItem{}, nil
	}
	end := start + min(f.PerPage, len(items)-start)
	return items[start:end], nil
}

func compareMenuItems(a, b models.MenuItem, field models.MenuItemField) int {
	switch field {
	case models.MenuItemFieldID:
		return cmp.Compare(a.ID, b.ID)
	case models.MenuItemFieldTitle:
		return cmp.Compare(a.Title, b.Title)
	case models.MenuItemFieldPrice:
		return a.Price.Cmp(b.Price)
	case models.MenuItemFieldFeatured:
		return compareBool(a.Featured, b.Featured)
	case models.MenuItemFieldCategory:
		return cmp.Compare(a.CategoryID, b.CategoryID)
	}
	return 0
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

func (q *queries) GetMenuItem(ctx context.Context, id int64) (*models.MenuItem, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	m, ok := q.st.menuItem(id)
	if !ok {
		return nil, store.ErrNotFound
	}
	return m, nil
}

func (q *queries) CreateMenuItem(ctx context.Context, m *models.MenuItem) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.st.categories[m.CategoryID]; !ok {
		return store.ErrForeignKeyViolation
	}
	m.ID = q.st.nextID()
	q.st.menuItems[m.ID] = menuItemRow{title: m.Title, price: m.Price, featured: m.Featured, categoryID: m.CategoryID}
	m.Category, _ = q.st.category(m.CategoryID)
	return nil
}

func (q *queries) UpdateMenuItem(ctx context.Context, m *models.MenuItem) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.st.menuItems[m.ID]; !ok {
		return store.ErrNotFound
	}
	if _, ok := q.st.categories[m.CategoryID]; !ok {
		return store.ErrForeignKeyViolation
	}
	q.st.menuItems[m.ID] = menuItemRow{title: m.Title, price: m.Price, featured: m.Featured, categoryID: m.CategoryID}
	m.Category, _ = q.st.category(m.CategoryID)
	return nil
}

func (q *queries) DeleteMenuItem(ctx context.Context, id int64) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.st.menuItems[id]; !ok {
		return store.ErrNotFound
	}
	for lineID, l := range q.st.cart {
		if l.menuItemID == id {
			delete(q.st.cart, lineID)
		}
	}
	for itemID, it := range q.st.orderItems {
		if it.menuItemID == id {
			delete(q.st.orderItems, itemID)
		}
	}
	delete(q.st.menuItems, id)
	return nil
}
