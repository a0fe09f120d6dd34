package validator

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type addItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"gte=1"`
}

func TestValidate_PassesValidStruct(t *testing.T) {
	err := Validate(registerRequest{
		Email:    "shopper@example.com",
		Password: "correct-horse",
	})

	assert.NoError(t, err)
}

func TestValidate_ReportsEachFailedField(t *testing.T) {
	err := Validate(registerRequest{Email: "not-an-email", Password: "short"})

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	fields := ve.Fields()
	assert.Equal(t, "must be a valid email address", fields["Email"])
	assert.Equal(t, "must be at least 8 characters", fields["Password"])
}

func TestValidate_UUIDTag(t *testing.T) {
	err := Validate(addItemRequest{ProductID: "definitely-not-a-uuid", Quantity: 2})

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "must be a valid UUID", ve.Fields()["ProductID"])
}

func TestValidate_GteTag(t *testing.T) {
	err := Validate(addItemRequest{
		ProductID: "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa",
		Quantity:  0,
	})

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "must be at least 1", ve.Fields()["Quantity"])
}

func TestValidationError_ErrorJoinsFields(t *testing.T) {
	err := Validate(registerRequest{})

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Error(), "field 'Email' is required")
	assert.Contains(t, ve.Error(), "field 'Password' is required")
}

func TestDecodeAndValidate_DecodesThenValidates(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/v1/carts/items",
		strings.NewReader(`{"product_id":"aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa","quantity":2}`))

	var dst addItemRequest
	require.NoError(t, DecodeAndValidate(req, &dst))
	assert.Equal(t, 2, dst.Quantity)
}

func TestDecodeAndValidate_MalformedBody(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/v1/carts/items",
		strings.NewReader(`{"product_id":`))

	var dst addItemRequest
	err := DecodeAndValidate(req, &dst)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode request body")
}
