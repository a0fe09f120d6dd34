package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mochaaless/p4Backend/internal/domain"
	"github.com/mochaaless/p4Backend/pkg/database"
	apperrors "github.com/mochaaless/p4Backend/pkg/errors"
)

const uniqueViolation = "23505"

// OrderRepository implements repository.OrderRepository using PostgreSQL.
type OrderRepository struct {
	pool database.DBTX
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool database.DBTX) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// decrementQuery is the authoritative availability check: the row is only
// updated when stock covers the requested quantity, so stock can never go
// negative regardless of concurrent checkouts. RETURNING freezes the name and
// unit price the order line will carry.
const decrementQuery = `
	UPDATE products
	SET stock = stock - $2, updated_at = NOW()
	WHERE id = $1 AND stock >= $2
	RETURNING name, price`

// CreateFromCart converts cart lines into a committed order in a single
// transaction: every line's stock is conditionally decremented, the order and
// its priced items are inserted under the checkout key, and the whole thing
// commits or rolls back together.
func (r *OrderRepository) CreateFromCart(ctx context.Context, userID, checkoutKey string, items []domain.CartItem) (o *domain.Order, err error) {
	ctx, end := database.TraceQuery(ctx, "CreateFromCart", decrementQuery)
	defer func() { end(err) }()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	order := domain.NewOrder(userID, checkoutKey)

	for _, item := range items {
		var (
			name      string
			unitPrice int64
		)
		err = tx.QueryRow(ctx, decrementQuery, item.ProductID, item.Quantity).Scan(&name, &unitPrice)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				// Zero rows means either the product is gone or stock is
				// short. Distinguish the two; the tx rolls back either way.
				return nil, r.classifyDecrementFailure(ctx, tx, item)
			}
			return nil, fmt.Errorf("decrement stock for product %s: %w", item.ProductID, err)
		}

		order.Items = append(order.Items, domain.OrderItem{
			ProductID: item.ProductID,
			Name:      name,
			Quantity:  item.Quantity,
			Price:     unitPrice * int64(item.Quantity),
		})
	}

	order.Total = order.CalculateTotal()

	orderQuery := `
		INSERT INTO orders (id, user_id, checkout_key, total, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err = tx.Exec(ctx, orderQuery,
		order.ID, order.UserID, order.CheckoutKey, order.Total, order.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			// Another checkout of the same cart state already committed.
			return nil, apperrors.Conflict(fmt.Sprintf("checkout %s already committed", checkoutKey))
		}
		return nil, fmt.Errorf("insert order: %w", err)
	}

	// position records the cart line order so reads return items in the
	// same sequence the buyer saw, regardless of row UUIDs.
	itemQuery := `
		INSERT INTO order_items (id, order_id, product_id, name, price, quantity, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	for pos, item := range order.Items {
		_, err = tx.Exec(ctx, itemQuery,
			uuid.New().String(), order.ID, item.ProductID, item.Name, item.Price, item.Quantity, pos,
		)
		if err != nil {
			return nil, fmt.Errorf("insert order item: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return order, nil
}

// classifyDecrementFailure turns a zero-row conditional decrement into the
// precise domain error: missing product vs short stock.
func (r *OrderRepository) classifyDecrementFailure(ctx context.Context, tx pgx.Tx, item domain.CartItem) error {
	var stock int
	err := tx.QueryRow(ctx, `SELECT stock FROM products WHERE id = $1`, item.ProductID).Scan(&stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NotFound("product", item.ProductID)
		}
		return fmt.Errorf("check stock for product %s: %w", item.ProductID, err)
	}
	return apperrors.InsufficientStock(item.ProductID, item.Quantity, stock)
}

// orderSelect fetches an order and its items in one query via JSONB_AGG.
const orderSelect = `
	SELECT
		o.id, o.user_id, o.checkout_key, o.total, o.created_at,
		COALESCE(
			JSONB_AGG(
				JSONB_BUILD_OBJECT(
					'product_id', oi.product_id,
					'name', oi.name,
					'quantity', oi.quantity,
					'price', oi.price
				) ORDER BY oi.position
			) FILTER (WHERE oi.id IS NOT NULL),
			'[]'::jsonb
		) AS items
	FROM orders o
	LEFT JOIN order_items oi ON o.id = oi.order_id`

// GetByCheckoutKey retrieves the order committed under the given checkout key.
func (r *OrderRepository) GetByCheckoutKey(ctx context.Context, checkoutKey string) (*domain.Order, error) {
	query := orderSelect + `
	WHERE o.checkout_key = $1
	GROUP BY o.id, o.user_id, o.checkout_key, o.total, o.created_at`

	var (
		o         domain.Order
		itemsJSON []byte
	)

	err := r.pool.QueryRow(ctx, query, checkoutKey).Scan(
		&o.ID, &o.UserID, &o.CheckoutKey, &o.Total, &o.CreatedAt, &itemsJSON,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}

	if err := unmarshalItems(&o, itemsJSON); err != nil {
		return nil, err
	}

	return &o, nil
}

// ListByUser returns all orders for a user, newest first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	query := orderSelect + `
	WHERE o.user_id = $1
	GROUP BY o.id, o.user_id, o.checkout_key, o.total, o.created_at
	ORDER BY o.created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		var (
			o         domain.Order
			itemsJSON []byte
		)
		if err := rows.Scan(
			&o.ID, &o.UserID, &o.CheckoutKey, &o.Total, &o.CreatedAt, &itemsJSON,
		); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		if err := unmarshalItems(&o, itemsJSON); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	return orders, nil
}

// AnyWithProduct reports whether any order line references the product.
func (r *OrderRepository) AnyWithProduct(ctx context.Context, productID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM order_items WHERE product_id = $1)`, productID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check order references: %w", err)
	}
	return exists, nil
}

// unmarshalItems decodes the JSONB_AGG items column onto the order.
func unmarshalItems(o *domain.Order, itemsJSON []byte) error {
	if len(itemsJSON) > 0 && string(itemsJSON) != "null" {
		if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
			return fmt.Errorf("unmarshal order items: %w", err)
		}
	}
	if o.Items == nil {
		o.Items = []domain.OrderItem{}
	}
	return nil
}
