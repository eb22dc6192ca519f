package service

import (
	"context"
	"fmt"
	"time"

	"simplestore/internal/domain"
	"simplestore/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// RelatedProductsLimit caps the related-products list on product reads
	RelatedProductsLimit = 5

	// TopRatedLimit caps the top-rated ranking
	TopRatedLimit = 5
)

// ProductDetail is the composite payload of a product read: the product
// annotated with its average rating, plus other products of its category.
type ProductDetail struct {
	Product domain.RatedProduct `json:"product"`
	Related []*domain.Product   `json:"related_products"`
}

// CatalogService defines the business logic for categories and products
type CatalogService interface {
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	CreateCategory(ctx context.Context, name string) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, name string) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	ListProducts(ctx context.Context, categoryID *uuid.UUID) ([]*domain.Product, error)
	CreateProduct(ctx context.Context, categoryID uuid.UUID, name string, price decimal.Decimal, description string) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id, categoryID uuid.UUID, name string, price decimal.Decimal, description string) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error

	GetProductDetail(ctx context.Context, id uuid.UUID) (*ProductDetail, error)
	TopRated(ctx context.Context, categoryID *uuid.UUID) ([]*domain.RatedProduct, error)
	AverageRating(ctx context.Context, productID uuid.UUID) (float64, int, error)
}

type catalogService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	reviewRepo   repository.ReviewRepository
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	reviewRepo repository.ReviewRepository,
) CatalogService {
	return &catalogService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		reviewRepo:   reviewRepo,
	}
}

// ListCategories returns all categories
func (s *catalogService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.categoryRepo.List(ctx)
}

// GetCategory returns one category by ID
func (s *catalogService) GetCategory(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	return s.categoryRepo.FindByID(ctx, id)
}

// CreateCategory creates a new category
func (s *catalogService) CreateCategory(ctx context.Context, name string) (*domain.Category, error) {
	now := time.Now()
	category := &domain.Category{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	return category, nil
}

// UpdateCategory renames an existing category
func (s *catalogService) UpdateCategory(ctx context.Context, id uuid.UUID, name string) (*domain.Category, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	category.Name = name
	category.UpdatedAt = time.Now()

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

// DeleteCategory removes a category; its products and their reviews are
// deleted with it.
func (s *catalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return s.categoryRepo.Delete(ctx, id)
}

// ListProducts returns products in creation order, optionally narrowed to
// one category. An unknown category yields an empty list, not an error.
func (s *catalogService) ListProducts(ctx context.Context, categoryID *uuid.UUID) ([]*domain.Product, error) {
	return s.productRepo.List(ctx, categoryID)
}

// CreateProduct creates a new product in the given category
func (s *catalogService) CreateProduct(ctx context.Context, categoryID uuid.UUID, name string, price decimal.Decimal, description string) (*domain.Product, error) {
	now := time.Now()
	product := &domain.Product{
		ID:          uuid.New(),
		CategoryID:  categoryID,
		Name:        name,
		Price:       price,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// UpdateProduct updates an existing product
func (s *catalogService) UpdateProduct(ctx context.Context, id, categoryID uuid.UUID, name string, price decimal.Decimal, description string) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	product.CategoryID = categoryID
	product.Name = name
	product.Price = price
	product.Description = description
	product.UpdatedAt = time.Now()

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// DeleteProduct removes a product and, by cascade, its reviews
func (s *catalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return s.productRepo.Delete(ctx, id)
}

// GetProductDetail returns the product annotated with its average rating
// together with up to RelatedProductsLimit other products of the same
// category, excluding the product itself.
func (s *catalogService) GetProductDetail(ctx context.Context, id uuid.UUID) (*ProductDetail, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	related, err := s.productRepo.FindRelated(ctx, product.CategoryID, product.ID, RelatedProductsLimit)
	if err != nil {
		return nil, err
	}

	detail := &ProductDetail{
		Product: domain.RatedProduct{Product: *product},
		Related: related,
	}

	avg, count, err := s.averageRating(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		detail.Product.AvgRating = &avg
	}

	return detail, nil
}

// TopRated returns up to TopRatedLimit products ordered by descending
// average rating, optionally restricted to one category. Products without
// reviews sort last. An unknown category yields an empty list.
func (s *catalogService) TopRated(ctx context.Context, categoryID *uuid.UUID) ([]*domain.RatedProduct, error) {
	return s.productRepo.TopRated(ctx, categoryID, TopRatedLimit)
}

// AverageRating computes the arithmetic mean of the product's review
// ratings. The review count is returned alongside so callers can
// distinguish "no reviews" from a genuine average; the mean is never
// computed over an empty set.
func (s *catalogService) AverageRating(ctx context.Context, productID uuid.UUID) (float64, int, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return 0, 0, err
	}

	return s.averageRating(ctx, productID)
}

func (s *catalogService) averageRating(ctx context.Context, productID uuid.UUID) (float64, int, error) {
	reviews, err := s.reviewRepo.ListByProduct(ctx, productID)
	if err != nil {
		return 0, 0, err
	}

	if len(reviews) == 0 {
		return 0, 0, nil
	}

	sum := 0
	for _, review := range reviews {
		sum += review.Rating
	}

	return float64(sum) / float64(len(reviews)), len(reviews), nil
}
