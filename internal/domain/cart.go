package domain

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Cart limits. A cart exceeding either limit is rejected before it is saved.
const (
	MaxItemsPerCart    = 50
	MaxQuantityPerItem = 100
)

// CartItem is a single product line in a cart. Quantity is always positive;
// price is not stored here because carts price at checkout time.
type CartItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Cart is a user's working selection, stored in Redis. A user has at most one
// live cart. Version increments on every mutation and feeds the checkout key,
// so a retried checkout of the same cart state is idempotent.
type Cart struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Items     []CartItem `json:"items"`
	Version   int64      `json:"version"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewCart creates an empty cart for the given user.
func NewCart(userID string) *Cart {
	now := time.Now().UTC()
	return &Cart{
		ID:        uuid.New().String(),
		UserID:    userID,
		Items:     []CartItem{},
		Version:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddItem merges the quantity into an existing line for the product, or
// appends a new line. Adding the same product twice grows the line instead of
// duplicating it.
func (c *Cart) AddItem(productID string, quantity int) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity += quantity
			c.touch()
			return
		}
	}
	c.Items = append(c.Items, CartItem{ProductID: productID, Quantity: quantity})
	c.touch()
}

// RemoveItem deletes the line for the given product. Returns false if the
// product is not in the cart.
func (c *Cart) RemoveItem(productID string) bool {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.touch()
			return true
		}
	}
	return false
}

// Quantity returns the quantity for a product, or 0 if absent.
func (c *Cart) Quantity(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return c.Items[i].Quantity
		}
	}
	return 0
}

// HasProduct reports whether the cart contains a line for the product.
func (c *Cart) HasProduct(productID string) bool {
	return c.Quantity(productID) > 0
}

// IsEmpty reports whether the cart has no items.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// CheckoutKey derives the deterministic idempotency key for converting this
// cart state into an order. Two checkout attempts against the same cart state
// produce the same key; any mutation changes the version and therefore the key.
func (c *Cart) CheckoutKey() string {
	return c.ID + ":" + strconv.FormatInt(c.Version, 10)
}

func (c *Cart) touch() {
	c.UpdatedAt = time.Now().UTC()
}
