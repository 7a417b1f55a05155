// Package store declares the persistence contract shared by the PostgreSQL
// and in-memory backends.
package store

import (
	"context"
	"errors"

	"github.com/ashfaq-akash/LittleLemonApi/internal/models"
)

var (
	ErrNotFound            = errors.New("record not found")
	ErrDuplicateKey        = errors.New("duplicate key")
	ErrForeignKeyViolation = errors.New("foreign key violation")
)

// Queries is every read and write the services need. Implementations
// return the sentinel errors above, possibly wrapped.
type Queries interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, id int64) (*models.Category, error)
	CreateCategory(ctx context.Context, c *models.Category) error
	UpdateCategory(ctx context.Context, c *models.Category) error
	// DeleteCategory fails with ErrForeignKeyViolation while menu items reference it
	DeleteCategory(ctx context.Context, id int64) error

	// ListMenuItems returns the filtered page with Category populated
	ListMenuItems(ctx context.Context, f models.MenuItemFilter) ([]models.MenuItem, error)
	GetMenuItem(ctx context.Context, id int64) (*models.MenuItem, error)
	CreateMenuItem(ctx context.Context, m *models.MenuItem) error
	UpdateMenuItem(ctx context.Context, m *models.MenuItem) error
	// DeleteMenuItem also removes the cart lines and order items that reference it
	DeleteMenuItem(ctx context.Context, id int64) error

	ListCartLines(ctx context.Context, userID int64) ([]models.CartLine, error)
	// LockCartLines is ListCartLines holding the lines until the transaction ends
	LockCartLines(ctx context.Context, userID int64) ([]models.CartLine, error)
	// InsertCartLine fails with ErrDuplicateKey when the user already has a line for the item
	InsertCartLine(ctx context.Context, l *models.CartLine) error
	DeleteCartLines(ctx context.Context, userID int64) (int64, error)

	// ListOrders returns orders with User and DeliveryCrew populated, oldest first
	ListOrders(ctx context.Context, f models.OrderFilter) ([]models.Order, error)
	GetOrder(ctx context.Context, id int64) (*models.Order, error)
	InsertOrder(ctx context.Context, o *models.Order) error
	InsertOrderItem(ctx context.Context, it *models.OrderItem) error
	ListOrderItems(ctx context.Context, orderID int64) ([]models.OrderItem, error)
	UpdateOrder(ctx context.Context, o *models.Order) error
	// UpdateOrderStatus writes the status column alone
	UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) error
	DeleteOrder(ctx context.Context, id int64) error

	CreateUser(ctx context.Context, u *models.User) error
	// GetUser and GetUserByUsername populate Groups
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	// DeleteUser removes the user's cart and orders and unassigns them as delivery crew
	DeleteUser(ctx context.Context, id int64) error

	ListGroupMembers(ctx context.Context, group string) ([]models.User, error)
	AddUserToGroup(ctx context.Context, userID int64, group string) error
	// RemoveUserFromGroup reports whether the user was a member
	RemoveUserFromGroup(ctx context.Context, userID int64, group string) (bool, error)

	GetToken(ctx context.Context, userID int64) (string, error)
	CreateToken(ctx context.Context, userID int64, key string) error
	GetUserByToken(ctx context.Context, key string) (*models.User, error)
}

// Store is a Queries backend that can run a unit of work atomically
type Store interface {
	Queries
	// InTx runs fn in one transaction. Nothing fn wrote survives when it returns an error.
	InTx(ctx context.Context, fn func(q Queries) error) error
	Ping(ctx context.Context) error
}
