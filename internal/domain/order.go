package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderItem is one purchased line. Name and Price are snapshots taken at
// purchase time: Price is the extended line price (unit price x quantity) in
// cents, and neither field changes when the catalog later changes.
type OrderItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Price     int64  `json:"price"`
}

// Order is a committed purchase. Orders are append-only: once created they are
// never updated or deleted. CheckoutKey is the idempotency key derived from the
// cart that produced the order; it is unique across all orders.
type Order struct {
	ID          string      `json:"id"`
	UserID      string      `json:"user_id"`
	CheckoutKey string      `json:"-"`
	Items       []OrderItem `json:"items"`
	Total       int64       `json:"total"`
	CreatedAt   time.Time   `json:"created_at"`
}

// NewOrder creates an order shell with a generated ID and timestamp. Items and
// Total are filled in by the checkout transaction.
func NewOrder(userID, checkoutKey string) *Order {
	return &Order{
		ID:          uuid.New().String(),
		UserID:      userID,
		CheckoutKey: checkoutKey,
		Items:       []OrderItem{},
		CreatedAt:   time.Now().UTC(),
	}
}

// CalculateTotal sums the extended line prices.
func (o *Order) CalculateTotal() int64 {
	var total int64
	for _, item := range o.Items {
		total += item.Price
	}
	return total
}
