package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mochaaless/p4Backend/internal/domain"
	apperrors "github.com/mochaaless/p4Backend/pkg/errors"
)

func TestRegisterEndpoint(t *testing.T) {
	users := new(mockUserRepository)
	router := setupRouter(new(mockCartRepository), new(mockOrderRepository), new(mockProductRepository), users)

	users.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)

	payload, _ := json.Marshal(RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "correct horse battery"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	// The response must never carry the password or its hash.
	assert.NotContains(t, rec.Body.String(), "password")
	assert.NotContains(t, strings.ToLower(rec.Body.String()), "hash")

	resp := decodeEnvelope(t, rec)
	body, _ := json.Marshal(resp.Data)
	var got domain.User
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "ada@example.com", got.Email)
}

func TestRegisterEndpoint_InvalidEmail(t *testing.T) {
	router := setupRouter(new(mockCartRepository), new(mockOrderRepository), new(mockProductRepository), new(mockUserRepository))

	payload := []byte(`{"name":"Ada","email":"not-an-email","password":"correct horse battery"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, rec))
}

func TestRegisterEndpoint_DuplicateEmail(t *testing.T) {
	users := new(mockUserRepository)
	router := setupRouter(new(mockCartRepository), new(mockOrderRepository), new(mockProductRepository), users)

	users.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).
		Return(apperrors.AlreadyExists("user", "email", "ada@example.com"))

	payload, _ := json.Marshal(RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "correct horse battery"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "ALREADY_EXISTS", errorCode(t, rec))
}

func TestListUsersEndpoint(t *testing.T) {
	users := new(mockUserRepository)
	router := setupRouter(new(mockCartRepository), new(mockOrderRepository), new(mockProductRepository), users)

	users.On("List", mock.Anything).Return([]domain.User{
		*domain.NewUser("Ada", "ada@example.com", "hash"),
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `"hash"`)
}
