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

// AddItemInput holds the parameters for adding an item to the cart. Prices are
// not accepted here; carts price at checkout time against the catalog.
type AddItemInput struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
}

// CartService implements the business logic for cart operations.
type CartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	producer EventPublisher
	logger   *slog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(carts repository.CartRepository, products repository.ProductRepository, producer EventPublisher, logger *slog.Logger) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
		producer: producer,
		logger:   logger,
	}
}

// CartLineView is a stored cart line joined with the product's current name
// and unit price for display.
type CartLineView struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name,omitempty"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

// CartView is the read model returned to clients. Prices here are advisory:
// checkout re-prices every line inside its transaction.
type CartView struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Items     []CartLineView `json:"items"`
	Version   int64          `json:"version"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// GetCart retrieves the cart for a user, enriched with catalog details per
// line. If no cart exists, returns an empty cart view.
func (s *CartService) GetCart(ctx context.Context, userID string) (*CartView, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}

	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			cart = domain.NewCart(userID)
		} else {
			return nil, fmt.Errorf("get cart: %w", err)
		}
	}

	return s.cartView(ctx, cart), nil
}

// cartView resolves each line's product name and current price. A line whose
// product has since vanished from the catalog keeps its id and quantity; the
// gap surfaces at checkout, not here.
func (s *CartService) cartView(ctx context.Context, cart *domain.Cart) *CartView {
	view := &CartView{
		ID:        cart.ID,
		UserID:    cart.UserID,
		Items:     make([]CartLineView, 0, len(cart.Items)),
		Version:   cart.Version,
		UpdatedAt: cart.UpdatedAt,
	}

	for _, item := range cart.Items {
		line := CartLineView{ProductID: item.ProductID, Quantity: item.Quantity}
		product, err := s.products.GetByID(ctx, item.ProductID)
		switch {
		case err == nil:
			line.Name = product.Name
			line.UnitPrice = product.Price
		case !errors.Is(err, apperrors.ErrNotFound):
			s.logger.WarnContext(ctx, "could not resolve product for cart line",
				slog.String("product_id", item.ProductID),
				slog.String("error", err.Error()),
			)
		}
		view.Items = append(view.Items, line)
	}

	return view
}

// AddItem adds a product to the user's cart, creating the cart on first use.
// Adding a product already in the cart merges by increasing the line quantity.
// The stock check here is advisory: it catches obvious over-asks early, but the
// authoritative check happens inside the checkout transaction.
func (s *CartService) AddItem(ctx context.Context, userID string, input AddItemInput) (*domain.Cart, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if input.ProductID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	if input.Quantity <= 0 {
		return nil, apperrors.InvalidInput("quantity must be greater than 0")
	}
	if input.Quantity > domain.MaxQuantityPerItem {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", domain.MaxQuantityPerItem))
	}

	product, err := s.products.GetByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("product", input.ProductID)
		}
		return nil, fmt.Errorf("load product: %w", err)
	}

	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("get cart: %w", err)
		}
		cart = domain.NewCart(userID)
	}

	newQty := cart.Quantity(input.ProductID) + input.Quantity
	if newQty > domain.MaxQuantityPerItem {
		return nil, apperrors.InvalidInput(fmt.Sprintf("combined quantity must not exceed %d", domain.MaxQuantityPerItem))
	}
	if product.Stock < newQty {
		return nil, apperrors.InsufficientStock(product.ID, newQty, product.Stock)
	}
	if !cart.HasProduct(input.ProductID) && len(cart.Items) >= domain.MaxItemsPerCart {
		return nil, apperrors.InvalidInput(fmt.Sprintf("cart must not contain more than %d items", domain.MaxItemsPerCart))
	}

	expectedVersion := cart.Version
	cart.AddItem(input.ProductID, input.Quantity)

	ok, err := s.carts.SaveIfVersion(ctx, cart, expectedVersion)
	if err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	if !ok {
		return nil, apperrors.Conflict("cart was modified concurrently, please retry")
	}

	if err := s.producer.PublishCartUpdated(ctx, cart); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.updated event",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "item added to cart",
		slog.String("user_id", userID),
		slog.String("product_id", input.ProductID),
		slog.Int("quantity", input.Quantity),
	)

	return cart, nil
}

// RemoveItem removes a single product line from the cart.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID string) (*domain.Cart, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if productID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}

	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart for removal: %w", err)
	}

	expectedVersion := cart.Version
	if !cart.RemoveItem(productID) {
		return nil, apperrors.NotFound("cart item", productID)
	}

	ok, err := s.carts.SaveIfVersion(ctx, cart, expectedVersion)
	if err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	if !ok {
		return nil, apperrors.Conflict("cart was modified concurrently, please retry")
	}

	if err := s.producer.PublishCartUpdated(ctx, cart); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.updated event",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	return cart, nil
}

// ClearCart deletes the user's cart entirely.
func (s *CartService) ClearCart(ctx context.Context, userID string) error {
	if userID == "" {
		return apperrors.InvalidInput("user id is required")
	}

	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// Already gone; clearing is idempotent.
			return nil
		}
		return fmt.Errorf("get cart for clear: %w", err)
	}

	if err := s.carts.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}

	if err := s.producer.PublishCartCleared(ctx, cart, "user_cleared"); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.cleared event",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "cart cleared", slog.String("user_id", userID))

	return nil
}
