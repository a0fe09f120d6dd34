package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewOrder(t *testing.T) {
	order := NewOrder("user-1", "cart-1:3")

	assert.NotEmpty(t, order.ID)
	assert.Equal(t, "user-1", order.UserID)
	assert.Equal(t, "cart-1:3", order.CheckoutKey)
	assert.Empty(t, order.Items)
	assert.NotZero(t, order.CreatedAt)
}

func TestOrder_CalculateTotal(t *testing.T) {
	order := NewOrder("user-1", "cart-1:3")
	order.Items = []OrderItem{
		{ProductID: "prod-1", Name: "Widget", Quantity: 2, Price: 3998},
		{ProductID: "prod-2", Name: "Gadget", Quantity: 1, Price: 500},
	}

	assert.Equal(t, int64(4498), order.CalculateTotal())
}

func TestOrder_CalculateTotal_Empty(t *testing.T) {
	order := NewOrder("user-1", "cart-1:0")

	assert.Zero(t, order.CalculateTotal())
}
