package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mochaaless/p4Backend/internal/domain"
	pkgkafka "github.com/mochaaless/p4Backend/pkg/kafka"
)

// Kafka topic constants for shop domain events.
const (
	TopicOrderCreated = "shop.order.created"
	TopicCartUpdated  = "shop.cart.updated"
	TopicCartCleared  = "shop.cart.cleared"
)

// Aggregate type constants.
const (
	AggregateTypeOrder = "order"
	AggregateTypeCart  = "cart"
)

// Source identifier for events originating from this service.
const SourceShop = "shop-backend"

// OrderCreatedData is the payload for an order.created event.
type OrderCreatedData struct {
	OrderID string             `json:"order_id"`
	UserID  string             `json:"user_id"`
	Items   []domain.OrderItem `json:"items"`
	Total   int64              `json:"total"`
}

// CartUpdatedData is the payload for a cart.updated event.
type CartUpdatedData struct {
	CartID    string `json:"cart_id"`
	UserID    string `json:"user_id"`
	ItemCount int    `json:"item_count"`
	Version   int64  `json:"version"`
}

// CartClearedData is the payload for a cart.cleared event.
type CartClearedData struct {
	CartID string `json:"cart_id"`
	UserID string `json:"user_id"`
	Reason string `json:"reason"`
}

// Producer publishes shop domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishOrderCreated publishes an order.created event.
func (p *Producer) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	data := OrderCreatedData{
		OrderID: order.ID,
		UserID:  order.UserID,
		Items:   order.Items,
		Total:   order.Total,
	}

	event, err := pkgkafka.NewEvent(TopicOrderCreated, order.ID, AggregateTypeOrder, SourceShop, data)
	if err != nil {
		return fmt.Errorf("create order.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicOrderCreated, event); err != nil {
		return fmt.Errorf("publish order.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published order.created event",
		slog.String("order_id", order.ID),
		slog.String("user_id", order.UserID),
	)

	return nil
}

// PublishCartUpdated publishes a cart.updated event.
func (p *Producer) PublishCartUpdated(ctx context.Context, cart *domain.Cart) error {
	data := CartUpdatedData{
		CartID:    cart.ID,
		UserID:    cart.UserID,
		ItemCount: len(cart.Items),
		Version:   cart.Version,
	}

	event, err := pkgkafka.NewEvent(TopicCartUpdated, cart.ID, AggregateTypeCart, SourceShop, data)
	if err != nil {
		return fmt.Errorf("create cart.updated event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicCartUpdated, event); err != nil {
		return fmt.Errorf("publish cart.updated event: %w", err)
	}

	return nil
}

// PublishCartCleared publishes a cart.cleared event. Reason distinguishes a
// user-initiated clear from a checkout consumption or a reconciler sweep.
func (p *Producer) PublishCartCleared(ctx context.Context, cart *domain.Cart, reason string) error {
	data := CartClearedData{
		CartID: cart.ID,
		UserID: cart.UserID,
		Reason: reason,
	}

	event, err := pkgkafka.NewEvent(TopicCartCleared, cart.ID, AggregateTypeCart, SourceShop, data)
	if err != nil {
		return fmt.Errorf("create cart.cleared event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicCartCleared, event); err != nil {
		return fmt.Errorf("publish cart.cleared event: %w", err)
	}

	return nil
}
