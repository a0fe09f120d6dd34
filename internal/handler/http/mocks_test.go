package http

import (
	"context"
	"io"
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"

	"github.com/mochaaless/p4Backend/internal/domain"
	"github.com/mochaaless/p4Backend/internal/service"
)

// ============================================================================
// Mock repositories (handlers are tested through real services)
// ============================================================================

type mockCartRepository struct {
	mock.Mock
}

func (m *mockCartRepository) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cart), args.Error(1)
}

func (m *mockCartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	args := m.Called(ctx, cart)
	return args.Error(0)
}

func (m *mockCartRepository) SaveIfVersion(ctx context.Context, cart *domain.Cart, expected int64) (bool, error) {
	args := m.Called(ctx, cart, expected)
	return args.Bool(0), args.Error(1)
}

func (m *mockCartRepository) Delete(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *mockCartRepository) All(ctx context.Context) ([]domain.Cart, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Cart), args.Error(1)
}

type mockOrderRepository struct {
	mock.Mock
}

func (m *mockOrderRepository) CreateFromCart(ctx context.Context, userID, checkoutKey string, items []domain.CartItem) (*domain.Order, error) {
	args := m.Called(ctx, userID, checkoutKey, items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderRepository) GetByCheckoutKey(ctx context.Context, checkoutKey string) (*domain.Order, error) {
	args := m.Called(ctx, checkoutKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderRepository) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *mockOrderRepository) AnyWithProduct(ctx context.Context, productID string) (bool, error) {
	args := m.Called(ctx, productID)
	return args.Bool(0), args.Error(1)
}

type mockProductRepository struct {
	mock.Mock
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *mockProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *mockProductRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) List(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

// noopPublisher satisfies service.EventPublisher; handler tests never assert
// on events.
type noopPublisher struct{}

func (noopPublisher) PublishOrderCreated(context.Context, *domain.Order) error      { return nil }
func (noopPublisher) PublishCartUpdated(context.Context, *domain.Cart) error        { return nil }
func (noopPublisher) PublishCartCleared(context.Context, *domain.Cart, string) error { return nil }

// ============================================================================
// Test helpers
// ============================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// setupRouter builds a chi router matching the production /api/v1 layout with
// the given repositories plugged in underneath real services.
func setupRouter(carts *mockCartRepository, orders *mockOrderRepository, products *mockProductRepository, users *mockUserRepository) *chi.Mux {
	logger := testLogger()

	productService := service.NewProductService(products, carts, orders, logger)
	cartService := service.NewCartService(carts, products, noopPublisher{}, logger)
	checkoutService := service.NewCheckoutService(carts, orders, noopPublisher{}, logger, 0)
	userService := service.NewUserService(users, logger)

	productHandler := NewProductHandler(productService, logger)
	cartHandler := NewCartHandler(cartService, logger)
	orderHandler := NewOrderHandler(checkoutService, logger)
	userHandler := NewUserHandler(userService, logger)

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Route("/users", func(r chi.Router) {
			r.Post("/", userHandler.Register)
			r.Get("/", userHandler.List)
		})
		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.List)
			r.Post("/", productHandler.Create)
			r.Get("/{id}", productHandler.Get)
			r.Put("/{id}", productHandler.Update)
			r.Delete("/{id}", productHandler.Delete)
		})
		r.Route("/carts", func(r chi.Router) {
			r.Get("/", cartHandler.Get)
			r.Post("/", cartHandler.AddItem)
			r.Delete("/", cartHandler.Remove)
		})
		r.Route("/orders", func(r chi.Router) {
			r.Post("/", orderHandler.Checkout)
			r.Get("/", orderHandler.List)
		})
	})
	return r
}
