package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mochaaless/p4Backend/internal/repository"
	apperrors "github.com/mochaaless/p4Backend/pkg/errors"
)

// DefaultReconcileInterval is the sweep period when none is configured.
const DefaultReconcileInterval = 5 * time.Minute

// Reconciler repairs the one partial-failure window checkout leaves open: the
// order committed but the cart deletion afterwards failed. It periodically
// sweeps live carts and deletes any whose checkout key already maps to a
// committed order. The sweep is safe to run concurrently with traffic; a cart
// whose user kept shopping has a new version, a new checkout key, and is left
// alone.
type Reconciler struct {
	carts    repository.CartRepository
	orders   repository.OrderRepository
	producer EventPublisher
	logger   *slog.Logger
	interval time.Duration
}

// NewReconciler creates a new reconciler.
func NewReconciler(carts repository.CartRepository, orders repository.OrderRepository, producer EventPublisher, logger *slog.Logger, interval time.Duration) *Reconciler {
	if interval <= 0 {
		interval = DefaultReconcileInterval
	}
	return &Reconciler{
		carts:    carts,
		orders:   orders,
		producer: producer,
		logger:   logger,
		interval: interval,
	}
}

// Run sweeps on a ticker until the context is cancelled. Intended to run as a
// background goroutine owned by the application.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reconciler started", slog.Duration("interval", r.interval))

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return
		case <-ticker.C:
			if err := r.Sweep(ctx); err != nil {
				r.logger.Error("reconcile sweep failed", slog.String("error", err.Error()))
			}
		}
	}
}

// Sweep runs a single reconciliation pass and returns the first listing error.
// Per-cart failures are logged and skipped so one bad entry cannot stall the
// rest of the sweep.
func (r *Reconciler) Sweep(ctx context.Context) error {
	carts, err := r.carts.All(ctx)
	if err != nil {
		return err
	}

	var repaired int
	for i := range carts {
		cart := carts[i]

		_, err := r.orders.GetByCheckoutKey(ctx, cart.CheckoutKey())
		if errors.Is(err, apperrors.ErrNotFound) {
			continue
		}
		if err != nil {
			r.logger.WarnContext(ctx, "reconcile lookup failed",
				slog.String("cart_id", cart.ID),
				slog.String("error", err.Error()),
			)
			continue
		}

		// This cart state already became an order; the cart is leftover.
		if err := r.carts.Delete(ctx, cart.UserID); err != nil {
			r.logger.WarnContext(ctx, "reconcile cart delete failed",
				slog.String("cart_id", cart.ID),
				slog.String("user_id", cart.UserID),
				slog.String("error", err.Error()),
			)
			continue
		}
		repaired++

		if err := r.producer.PublishCartCleared(ctx, &cart, "reconciled"); err != nil {
			r.logger.ErrorContext(ctx, "failed to publish cart.cleared event",
				slog.String("cart_id", cart.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	if repaired > 0 {
		r.logger.InfoContext(ctx, "reconcile sweep repaired carts",
			slog.Int("repaired", repaired),
			slog.Int("scanned", len(carts)),
		)
	}

	return nil
}
