package repository

import (
	"context"
	"fmt"

	"campus-market-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProductRepository handles database operations for product listings
type ProductRepository struct {
	db *pgxpool.Pool
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{db: db}
}

const productColumns = `id, seller_id, seller_name, title, description, price, quantity,
	type, location, image_urls, is_sold_out, created_at, updated_at`

// Create creates a new product
func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (id, seller_id, seller_name, title, description, price, quantity,
			type, location, image_urls, is_sold_out, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.db.Exec(ctx, query,
		product.ID, product.SellerID, product.SellerName, product.Title, product.Description,
		product.Price, product.Quantity, product.Type, product.Location, product.ImageURLs,
		product.IsSoldOut, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// GetByID retrieves a product by ID
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1`, productColumns)
	product, err := scanProduct(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	return product, nil
}

// ListAvailable retrieves sellable products for a viewer, newest first.
// Filters out sold-out stock, the viewer's own listings and excluded IDs.
func (r *ProductRepository) ListAvailable(ctx context.Context, viewerID string, excludedIDs []string) ([]*models.Product, error) {
	if excludedIDs == nil {
		excludedIDs = []string{}
	}
	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE quantity > 0
		  AND seller_id <> $1
		  AND NOT (id = ANY($2))
		ORDER BY created_at DESC
	`, productColumns)
	rows, err := r.db.Query(ctx, query, viewerID, excludedIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list available products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

// ListBySeller retrieves all products posted by a seller, newest first
func (r *ProductRepository) ListBySeller(ctx context.Context, sellerID string) ([]*models.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE seller_id = $1
		ORDER BY created_at DESC
	`, productColumns)
	rows, err := r.db.Query(ctx, query, sellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list seller products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

// Update updates the editable fields of a product
func (r *ProductRepository) Update(ctx context.Context, product *models.Product) error {
	query := `
		UPDATE products
		SET description = $1, price = $2, quantity = $3, type = $4, location = $5,
			image_urls = $6, is_sold_out = $7, updated_at = $8
		WHERE id = $9
	`
	result, err := r.db.Exec(ctx, query,
		product.Description, product.Price, product.Quantity, product.Type,
		product.Location, product.ImageURLs, product.IsSoldOut, product.UpdatedAt,
		product.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete deletes a product by ID
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM products WHERE id = $1`
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanProduct(row pgx.Row) (*models.Product, error) {
	var product models.Product
	err := row.Scan(
		&product.ID, &product.SellerID, &product.SellerName, &product.Title,
		&product.Description, &product.Price, &product.Quantity, &product.Type,
		&product.Location, &product.ImageURLs, &product.IsSoldOut,
		&product.CreatedAt, &product.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}
	return &product, nil
}

func collectProducts(rows pgx.Rows) ([]*models.Product, error) {
	var products []*models.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}
	return products, nil
}
