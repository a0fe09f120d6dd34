package repository

import (
	"context"

	"github.com/mochaaless/p4Backend/internal/domain"
)

// ProductRepository defines persistence operations for products.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id string) error
}

// CartRepository defines persistence operations for carts. Carts are keyed by
// user ID; a user has at most one live cart.
type CartRepository interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	// Save unconditionally overwrites the cart.
	Save(ctx context.Context, cart *domain.Cart) error
	// SaveIfVersion persists the cart only if the stored version still equals
	// expected (or the cart does not exist and expected is 0). On success the
	// cart's version is bumped to expected+1. Returns (false, nil) when a
	// concurrent writer won.
	SaveIfVersion(ctx context.Context, cart *domain.Cart, expected int64) (bool, error)
	Delete(ctx context.Context, userID string) error
	// All returns every live cart. Used by the reconciler sweep and the
	// product deletion guard.
	All(ctx context.Context) ([]domain.Cart, error)
}

// OrderRepository defines persistence operations for orders. Orders are
// append-only; there is deliberately no update or delete.
type OrderRepository interface {
	// CreateFromCart atomically decrements stock for every cart line and
	// inserts the order with priced, name-snapshotted items. Either all lines
	// commit or nothing does. Returns ErrNotFound when a product is missing,
	// ErrInsufficientStock when stock cannot cover a line, and ErrConflict
	// when another checkout already committed the same checkout key.
	CreateFromCart(ctx context.Context, userID, checkoutKey string, items []domain.CartItem) (*domain.Order, error)
	GetByCheckoutKey(ctx context.Context, checkoutKey string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	// AnyWithProduct reports whether any order references the product.
	AnyWithProduct(ctx context.Context, productID string) (bool, error)
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	List(ctx context.Context) ([]domain.User, error)
}
