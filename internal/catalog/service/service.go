// Package service provides the implementation of catalog business logic.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/skmunene/dukahub/internal/catalog/store"
)

// ProductService defines the methods for managing products.
type ProductService interface {
	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*ProductDto, error)

	// FindAll returns all available products.
	FindAll(ctx context.Context, offset, limit int32) ([]ProductDto, error)

	// Create adds a new product to the catalog.
	Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error)

	// Update modifies an existing product's details.
	// Returns ErrProductNotFound if no product exists with the given ID and version.
	Update(ctx context.Context, product ProductUpdateDto) (*ProductDto, error)

	// DeleteByID removes a product by its ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id uuid.UUID, version int32) error
}

// Service implements ProductService and provides methods to manage products.
type Service struct {
	repository store.ProductStore
}

// NewService creates a new instance of ProductService with the provided repository.
func NewService(repository store.ProductStore) *Service {
	return &Service{repository: repository}
}

// ProductDto represents the data transfer object for a product.
// Version is read-only and used for optimistic concurrency control.
type ProductDto struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Price     int64     `json:"price"`
	Stock     int32     `json:"stock"`
	Category  string    `json:"category"`
	Image     string    `json:"image,omitempty"`
	Version   int32     `json:"version"`
	CreatedAt string    `json:"created_at"`
}

// ProductCreateDto represents the data transfer object for creating a new product.
type ProductCreateDto struct {
	Name     string `json:"name" validate:"required"`
	Price    int64  `json:"price" validate:"required,min=1"`
	Stock    int32  `json:"stock" validate:"min=0"`
	Category string `json:"category" validate:"required"`
	Image    string `json:"image"`
}

// ProductUpdateDto represents the data transfer object for updating a product.
type ProductUpdateDto struct {
	ID       uuid.UUID `json:"-"`
	Name     string    `json:"name" validate:"required"`
	Price    int64     `json:"price" validate:"required,min=1"`
	Stock    int32     `json:"stock" validate:"min=0"`
	Category string    `json:"category" validate:"required"`
	Image    string    `json:"image"`
	Version  int32     `json:"version" validate:"required,min=1"`
}

func (s *Service) FindByID(ctx context.Context, id uuid.UUID) (*ProductDto, error) {
	product, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDto(product), nil
}

func (s *Service) FindAll(ctx context.Context, offset, limit int32) ([]ProductDto, error) {
	products, err := s.repository.FindAll(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	dtos := make([]ProductDto, len(products))
	for i := range products {
		dtos[i] = *toDto(&products[i])
	}
	return dtos, nil
}

func (s *Service) Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error) {
	created, err := s.repository.Create(ctx, store.CreateParams{
		Name:     product.Name,
		Price:    product.Price,
		Stock:    product.Stock,
		Category: product.Category,
		Image:    product.Image,
	})
	if err != nil {
		return nil, err
	}
	return toDto(created), nil
}

func (s *Service) Update(ctx context.Context, product ProductUpdateDto) (*ProductDto, error) {
	updated, err := s.repository.Update(ctx, store.UpdateParams{
		ID:       product.ID,
		Name:     product.Name,
		Price:    product.Price,
		Stock:    product.Stock,
		Category: product.Category,
		Image:    product.Image,
		Version:  product.Version,
	})
	if err != nil {
		return nil, err
	}
	return toDto(updated), nil
}

func (s *Service) DeleteByID(ctx context.Context, id uuid.UUID, version int32) error {
	return s.repository.DeleteByID(ctx, id, version)
}

// toDto converts a store.Product to a ProductDto.
func toDto(product *store.Product) *ProductDto {
	return &ProductDto{
		ID:        product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Stock:     product.Stock,
		Category:  product.Category,
		Image:     product.Image,
		Version:   product.Version,
		CreatedAt: product.CreatedAt.Format(time.RFC3339),
	}
}
