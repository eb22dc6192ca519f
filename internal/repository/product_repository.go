package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"simplestore/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound        = errors.New("product not found")
	ErrProductCategoryMissing = errors.New("product references an unknown category")
)

// ProductRepository defines the interface for product data access.
// Queries are explicit per operation, there is no dynamic field dispatch.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	List(ctx context.Context, categoryID *uuid.UUID) ([]*domain.Product, error)
	FindRelated(ctx context.Context, categoryID, exclude uuid.UUID, limit int) ([]*domain.Product, error)
	TopRated(ctx context.Context, categoryID *uuid.UUID, limit int) ([]*domain.RatedProduct, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

// Create inserts a new product
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (id, category_id, name, price, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.CategoryID,
		product.Name,
		product.Price,
		product.Description,
		product.CreatedAt,
		product.UpdatedAt,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrProductCategoryMissing
		}
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// Update updates an existing product
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products
		SET category_id = $2, name = $3, price = $4, description = $5, updated_at = $6
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.CategoryID,
		product.Name,
		product.Price,
		product.Description,
		product.UpdatedAt,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrProductCategoryMissing
		}
		return fmt.Errorf("failed to update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// Delete removes a product. Reviews of the product are removed by
// ON DELETE CASCADE.
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM products WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// FindByID retrieves a product by ID
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `
		SELECT id, category_id, name, price, description, created_at, updated_at
		FROM products
		WHERE id = $1
	`

	product := &domain.Product{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&product.ID,
		&product.CategoryID,
		&product.Name,
		&product.Price,
		&product.Description,
		&product.CreatedAt,
		&product.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// List retrieves products in creation order, optionally narrowed to one
// category. An unknown category simply yields an empty list.
func (r *productRepository) List(ctx context.Context, categoryID *uuid.UUID) ([]*domain.Product, error) {
	query := `
		SELECT id, category_id, name, price, description, created_at, updated_at
		FROM products
		ORDER BY created_at ASC
	`
	args := []interface{}{}

	if categoryID != nil {
		query = `
			SELECT id, category_id, name, price, description, created_at, updated_at
			FROM products
			WHERE category_id = $1
			ORDER BY created_at ASC
		`
		args = append(args, *categoryID)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// FindRelated retrieves up to limit products sharing the given category,
// excluding the product itself, in default creation order.
func (r *productRepository) FindRelated(ctx context.Context, categoryID, exclude uuid.UUID, limit int) ([]*domain.Product, error) {
	query := `
		SELECT id, category_id, name, price, description, created_at, updated_at
		FROM products
		WHERE category_id = $1 AND id <> $2
		ORDER BY created_at ASC
		LIMIT $3
	`

	rows, err := r.db.QueryContext(ctx, query, categoryID, exclude, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find related products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// TopRated retrieves up to limit products ranked by descending average
// review rating, optionally narrowed to one category. Products without
// reviews have a NULL average and sort last.
func (r *productRepository) TopRated(ctx context.Context, categoryID *uuid.UUID, limit int) ([]*domain.RatedProduct, error) {
	whereClause := ""
	args := []interface{}{}
	argIndex := 1

	if categoryID != nil {
		whereClause = fmt.Sprintf("WHERE p.category_id = $%d", argIndex)
		args = append(args, *categoryID)
		argIndex++
	}

	query := fmt.Sprintf(`
		SELECT p.id, p.category_id, p.name, p.price, p.description, p.created_at, p.updated_at,
		       AVG(r.rating)::float8 AS avg_rating
		FROM products p
		LEFT JOIN reviews r ON r.product_id = p.id
		%s
		GROUP BY p.id
		ORDER BY avg_rating DESC NULLS LAST
		LIMIT $%d
	`, whereClause, argIndex)

	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query top rated products: %w", err)
	}
	defer rows.Close()

	products := []*domain.RatedProduct{}
	for rows.Next() {
		product := &domain.RatedProduct{}
		var avg sql.NullFloat64
		err := rows.Scan(
			&product.ID,
			&product.CategoryID,
			&product.Name,
			&product.Price,
			&product.Description,
			&product.CreatedAt,
			&product.UpdatedAt,
			&avg,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rated product: %w", err)
		}
		if avg.Valid {
			product.AvgRating = &avg.Float64
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating top rated products: %w", err)
	}

	return products, nil
}

func scanProducts(rows *sql.Rows) ([]*domain.Product, error) {
	products := []*domain.Product{}
	for rows.Next() {
		product := &domain.Product{}
		err := rows.Scan(
			&product.ID,
			&product.CategoryID,
			&product.Name,
			&product.Price,
			&product.Description,
			&product.CreatedAt,
			&product.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}
