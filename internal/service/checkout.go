package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mochaaless/p4Backend/internal/domain"
	"github.com/mochaaless/p4Backend/internal/repository"
	apperrors "github.com/mochaaless/p4Backend/pkg/errors"
)

// DefaultCheckoutTimeout bounds the whole checkout sequence when no timeout is
// configured.
const DefaultCheckoutTimeout = 10 * time.Second

// CheckoutService converts a user's cart into a committed order while keeping
// inventory consistent. The commit itself is a single database transaction;
// this service owns the surrounding sequence: idempotency lookup, cart
// consumption, and event publication.
type CheckoutService struct {
	carts    repository.CartRepository
	orders   repository.OrderRepository
	producer EventPublisher
	logger   *slog.Logger
	timeout  time.Duration
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(carts repository.CartRepository, orders repository.OrderRepository, producer EventPublisher, logger *slog.Logger, timeout time.Duration) *CheckoutService {
	if timeout <= 0 {
		timeout = DefaultCheckoutTimeout
	}
	return &CheckoutService{
		carts:    carts,
		orders:   orders,
		producer: producer,
		logger:   logger,
		timeout:  timeout,
	}
}

// Checkout converts the user's cart into an order.
//
// The sequence is: load the cart, derive its deterministic checkout key,
// return the existing order if that key already committed (idempotent retry),
// otherwise run the transactional commit (conditional stock decrements + order
// insert), then consume the cart and publish order.created. Everything up to
// the commit leaves no trace on failure, so a client that sees a transient
// error may safely retry. A failure after the commit (cart deletion, event
// publication) still reports success; the leftover cart is repaired by the
// reconciler and can never be consumed twice because its checkout key already
// maps to an order.
func (s *CheckoutService) Checkout(ctx context.Context, userID string) (*domain.Order, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.InvalidInput("no cart found for user")
		}
		return nil, s.storageErr(err, "load cart")
	}

	if cart.IsEmpty() {
		return nil, apperrors.InvalidInput("cart is empty")
	}

	checkoutKey := cart.CheckoutKey()

	// Idempotent retry: if this exact cart state already committed, return
	// the existing order instead of creating a duplicate.
	if existing, err := s.orders.GetByCheckoutKey(ctx, checkoutKey); err == nil {
		s.logger.InfoContext(ctx, "checkout already committed, returning existing order",
			slog.String("user_id", userID),
			slog.String("checkout_key", checkoutKey),
			slog.String("order_id", existing.ID),
		)
		s.consumeCart(ctx, cart)
		return existing, nil
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, s.storageErr(err, "lookup checkout key")
	}

	order, err := s.orders.CreateFromCart(ctx, userID, checkoutKey, cart.Items)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrConflict):
			// A concurrent checkout of the same cart state won the race;
			// the committed order is the answer for both callers.
			winner, lookupErr := s.orders.GetByCheckoutKey(ctx, checkoutKey)
			if lookupErr != nil {
				return nil, s.storageErr(lookupErr, "lookup winning checkout")
			}
			s.consumeCart(ctx, cart)
			return winner, nil
		case errors.Is(err, apperrors.ErrNotFound):
			// A cart line points at a product that no longer exists. The
			// transaction rolled back; nothing was decremented.
			return nil, apperrors.InvalidInput(fmt.Sprintf("checkout failed: %v", err))
		case errors.Is(err, apperrors.ErrInsufficientStock):
			return nil, err
		default:
			return nil, s.storageErr(err, "commit checkout")
		}
	}

	s.consumeCart(ctx, cart)

	if err := s.producer.PublishOrderCreated(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.created event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "checkout completed",
		slog.String("user_id", userID),
		slog.String("order_id", order.ID),
		slog.String("checkout_key", checkoutKey),
		slog.Int64("total", order.Total),
		slog.Int("items", len(order.Items)),
	)

	return order, nil
}

// ListOrders returns the user's order history, newest first.
func (s *CheckoutService) ListOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}

	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	return orders, nil
}

// consumeCart deletes the checked-out cart. This runs after the commit point,
// so a failure here must not fail the checkout: the order exists and stock is
// consistent. The reconciler deletes any cart left behind.
func (s *CheckoutService) consumeCart(ctx context.Context, cart *domain.Cart) {
	if err := s.carts.Delete(ctx, cart.UserID); err != nil {
		s.logger.WarnContext(ctx, "cart cleanup failed after commit, reconciler will repair",
			slog.String("user_id", cart.UserID),
			slog.String("cart_id", cart.ID),
			slog.String("error", err.Error()),
		)
		return
	}

	if err := s.producer.PublishCartCleared(ctx, cart, "checked_out"); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.cleared event",
			slog.String("user_id", cart.UserID),
			slog.String("error", err.Error()),
		)
	}
}

// storageErr maps pre-commit storage failures. Deadline and cancellation
// become Unavailable (the client may retry; nothing was written); everything
// else is wrapped for the 500 path.
func (s *CheckoutService) storageErr(err error, op string) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperrors.Unavailable(op + " timed out")
	}
	return fmt.Errorf("%s: %w", op, err)
}
