package service

import (
	"context"

	"github.com/mochaaless/p4Backend/internal/domain"
)

// EventPublisher publishes shop domain events. Publication is best-effort
// everywhere it is used: services log failures and carry on, so an
// implementation must never be required for correctness.
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, order *domain.Order) error
	PublishCartUpdated(ctx context.Context, cart *domain.Cart) error
	PublishCartCleared(ctx context.Context, cart *domain.Cart, reason string) error
}
