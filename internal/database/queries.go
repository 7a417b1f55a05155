package database

// Category queries
const (
	ListCategoriesSQL = `
		SELECT id, slug, title FROM categories ORDER BY id`

	GetCategorySQL = `
		SELECT id, slug, title FROM categories WHERE id = $1`

	InsertCategorySQL = `
		INSERT INTO categories (slug, title) VALUES ($1, $2)
		RETURNING id`

	UpdateCategorySQL = `
		UPDATE categories SET slug = $2, title = $3 WHERE id = $1`

	DeleteCategorySQL = `
		DELETE FROM categories WHERE id = $1`
)

// Menu item queries. SelectMenuItemsSQL is extended with WHERE, ORDER BY
// and LIMIT clauses by the listing builder.
const (
	SelectMenuItemsSQL = `
		SELECT m.id, m.title, m.price, m.featured, m.category_id, c.slug, c.title
		FROM menu_items m
		JOIN categories c ON c.id = m.category_id`

	GetMenuItemSQL = SelectMenuItemsSQL + `
		WHERE m.id = $1`

	InsertMenuItemSQL = `
		INSERT INTO menu_items (title, price, featured, category_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	UpdateMenuItemSQL = `
		UPDATE menu_items SET title = $2, price = $3, featured = $4, category_id = $5
		WHERE id = $1`

	DeleteMenuItemSQL = `
		DELETE FROM menu_items WHERE id = $1`
)

// Cart queries
const (
	selectCartLinesSQL = `
		SELECT l.id, l.user_id, l.menuitem_id, l.quantity, l.unit_price, l.price,
			   m.title, m.price, m.featured, m.category_id, c.slug, c.title
		FROM cart_lines l
		JOIN menu_items m ON m.id = l.menuitem_id
		JOIN categories c ON c.id = m.category_id
		WHERE l.user_id = $1
		ORDER BY l.id`

	ListCartLinesSQL = selectCartLinesSQL

	// LockCartLinesSQL holds the lines until commit so concurrent checkouts
	// of one cart queue up behind each other.
	LockCartLinesSQL = selectCartLinesSQL + `
		FOR UPDATE OF l`

	InsertCartLineSQL = `
		INSERT INTO cart_lines (user_id, menuitem_id, quantity, unit_price, price)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	DeleteCartLinesSQL = `
		DELETE FROM cart_lines WHERE user_id = $1`
)

// Order queries
const (
	SelectOrdersSQL = `
		SELECT o.id, o.user_id, o.delivery_crew_id, o.status, o.total, o.date,
			   u.username, u.email, d.username, d.email
		FROM orders o
		JOIN users u ON u.id = o.user_id
		LEFT JOIN users d ON d.id = o.delivery_crew_id`

	ListOrdersSQL = SelectOrdersSQL + `
		WHERE ($1::bigint IS NULL OR o.user_id = $1)
		  AND ($2::bigint IS NULL OR o.delivery_crew_id = $2)
		ORDER BY o.id`

	GetOrderSQL = SelectOrdersSQL + `
		WHERE o.id = $1`

	InsertOrderSQL = `
		INSERT INTO orders (user_id, delivery_crew_id, status, total, date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	UpdateOrderSQL = `
		UPDATE orders SET delivery_crew_id = $2, status = $3, total = $4, date = $5
		WHERE id = $1`

	UpdateOrderStatusSQL = `
		UPDATE orders SET status = $2
		WHERE id = $1`

	DeleteOrderSQL = `
		DELETE FROM orders WHERE id = $1`

	InsertOrderItemSQL = `
		INSERT INTO order_items (order_id, menuitem_id, quantity, unit_price, price)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	ListOrderItemsSQL = `
		SELECT i.id, i.order_id, i.menuitem_id, i.quantity, i.unit_price, i.price,
			   m.title, m.price, m.featured, m.category_id, c.slug, c.title
		FROM order_items i
		JOIN menu_items m ON m.id = i.menuitem_id
		JOIN categories c ON c.id = m.category_id
		WHERE i.order_id = $1
		ORDER BY i.id`
)

// User, group and token queries
const (
	SelectUsersSQL = `
		SELECT u.id, u.username, u.email, u.password_hash, u.is_superuser, u.date_joined,
			   ARRAY(SELECT g.group_name FROM user_groups g WHERE g.user_id = u.id ORDER BY g.group_name)
		FROM users u`

	GetUserSQL = SelectUsersSQL + `
		WHERE u.id = $1`

	GetUserByUsernameSQL = SelectUsersSQL + `
		WHERE u.username = $1`

	GetUserByTokenSQL = SelectUsersSQL + `
		JOIN auth_tokens t ON t.user_id = u.id
		WHERE t.key = $1`

	ListGroupMembersSQL = SelectUsersSQL + `
		JOIN user_groups m ON m.user_id = u.id
		WHERE m.group_name = $1
		ORDER BY u.id`

	InsertUserSQL = `
		INSERT INTO users (username, email, password_hash, is_superuser, date_joined)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	DeleteUserSQL = `
		DELETE FROM users WHERE id = $1`

	AddUserToGroupSQL = `
		INSERT INTO user_groups (user_id, group_name) VALUES ($1, $2)
		ON CONFLICT DO NOTHING`

	RemoveUserFromGroupSQL = `
		DELETE FROM user_groups WHERE user_id = $1 AND group_name = $2`

	GetTokenSQL = `
		SELECT key FROM auth_tokens WHERE user_id = $1`

	InsertTokenSQL = `
		INSERT INTO auth_tokens (key, user_id) VALUES ($1, $2)`
)
