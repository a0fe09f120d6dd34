package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mochaaless/p4Backend/internal/domain"
	"github.com/mochaaless/p4Backend/internal/repository"
	apperrors "github.com/mochaaless/p4Backend/pkg/errors"
)

// CreateProductInput holds the parameters for creating a product. Price is in
// cents.
type CreateProductInput struct {
	Name        string `json:"name" validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"max=2000"`
	Price       int64  `json:"price" validate:"gte=0"`
	Stock       int    `json:"stock" validate:"gte=0"`
}

// UpdateProductInput holds the parameters for updating a product. All fields
// are required; updates replace the whole catalog entry including stock.
type UpdateProductInput struct {
	Name        string `json:"name" validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"max=2000"`
	Price       int64  `json:"price" validate:"gte=0"`
	Stock       int    `json:"stock" validate:"gte=0"`
}

// ProductService implements the business logic for catalog operations.
type ProductService struct {
	products repository.ProductRepository
	carts    repository.CartRepository
	orders   repository.OrderRepository
	logger   *slog.Logger
}

// NewProductService creates a new product service.
func NewProductService(products repository.ProductRepository, carts repository.CartRepository, orders repository.OrderRepository, logger *slog.Logger) *ProductService {
	return &ProductService{
		products: products,
		carts:    carts,
		orders:   orders,
		logger:   logger,
	}
}

// CreateProduct adds a product to the catalog.
func (s *ProductService) CreateProduct(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	if input.Name == "" {
		return nil, apperrors.InvalidInput("product name is required")
	}
	if input.Price < 0 {
		return nil, apperrors.InvalidInput("price must not be negative")
	}
	if input.Stock < 0 {
		return nil, apperrors.InvalidInput("stock must not be negative")
	}

	product := domain.NewProduct(input.Name, input.Description, input.Price, input.Stock)

	if err := s.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ID),
		slog.String("name", product.Name),
	)

	return product, nil
}

// GetProduct retrieves a product by ID.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}

	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}

	return product, nil
}

// ListProducts returns the catalog, newest first.
func (s *ProductService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// UpdateProduct replaces a product's catalog entry. Setting stock here is an
// administrative restock or correction; checkout decrements run against
// whatever value is current.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, input UpdateProductInput) (*domain.Product, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	if input.Name == "" {
		return nil, apperrors.InvalidInput("product name is required")
	}
	if input.Price < 0 {
		return nil, apperrors.InvalidInput("price must not be negative")
	}
	if input.Stock < 0 {
		return nil, apperrors.InvalidInput("stock must not be negative")
	}

	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load product for update: %w", err)
	}

	product.Name = input.Name
	product.Description = input.Description
	product.Price = input.Price
	product.Stock = input.Stock

	if err := s.products.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	s.logger.InfoContext(ctx, "product updated",
		slog.String("product_id", product.ID),
	)

	return product, nil
}

// DeleteProduct removes a product from the catalog. Deletion is refused while
// any live cart or any committed order still references the product, so order
// history never dangles and checkouts in flight don't race a disappearing row.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("product id is required")
	}

	referenced, err := s.orders.AnyWithProduct(ctx, id)
	if err != nil {
		return fmt.Errorf("check orders for product: %w", err)
	}
	if referenced {
		return apperrors.InvalidInput("product is referenced by existing orders")
	}

	carts, err := s.carts.All(ctx)
	if err != nil {
		return fmt.Errorf("check carts for product: %w", err)
	}
	for i := range carts {
		if carts[i].HasProduct(id) {
			return apperrors.InvalidInput("product is present in a live cart")
		}
	}

	if err := s.products.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	s.logger.InfoContext(ctx, "product deleted", slog.String("product_id", id))

	return nil
}
