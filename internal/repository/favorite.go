package repository

import (
	"context"
	"fmt"

	"campus-market-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// FavoriteRepository handles database operations for per-user favorites
type FavoriteRepository struct {
	db *pgxpool.Pool
}

// NewFavoriteRepository creates a new favorite repository
func NewFavoriteRepository(db *pgxpool.Pool) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

// ListByUser retrieves a user's favorites, most recently added first
func (r *FavoriteRepository) ListByUser(ctx context.Context, userID string) ([]*models.Favorite, error) {
	query := `
		SELECT user_id, product_id, quantity, title, price, image_url, added_at
		FROM favorites
		WHERE user_id = $1
		ORDER BY added_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	defer rows.Close()

	var favs []*models.Favorite
	for rows.Next() {
		var fav models.Favorite
		err := rows.Scan(
			&fav.UserID, &fav.ProductID, &fav.Quantity,
			&fav.Title, &fav.Price, &fav.ImageURL, &fav.AddedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		favs = append(favs, &fav)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating favorites: %w", err)
	}
	return favs, nil
}

// ListProductIDs retrieves the product IDs a user has favorited
func (r *FavoriteRepository) ListProductIDs(ctx context.Context, userID string) ([]string, error) {
	query := `SELECT product_id FROM favorites WHERE user_id = $1`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorite ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan favorite id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating favorite ids: %w", err)
	}
	return ids, nil
}

// Get retrieves a single favorite by its composite key
func (r *FavoriteRepository) Get(ctx context.Context, userID, productID string) (*models.Favorite, error) {
	query := `
		SELECT user_id, product_id, quantity, title, price, image_url, added_at
		FROM favorites
		WHERE user_id = $1 AND product_id = $2
	`
	var fav models.Favorite
	err := r.db.QueryRow(ctx, query, userID, productID).Scan(
		&fav.UserID, &fav.ProductID, &fav.Quantity,
		&fav.Title, &fav.Price, &fav.ImageURL, &fav.AddedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get favorite: %w", err)
	}
	return &fav, nil
}

// Exists checks whether a user has favorited a product
func (r *FavoriteRepository) Exists(ctx context.Context, userID, productID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM favorites WHERE user_id = $1 AND product_id = $2)`
	var exists bool
	err := r.db.QueryRow(ctx, query, userID, productID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check favorite existence: %w", err)
	}
	return exists, nil
}

// Create creates a new favorite
func (r *FavoriteRepository) Create(ctx context.Context, fav *models.Favorite) error {
	query := `
		INSERT INTO favorites (user_id, product_id, quantity, title, price, image_url, added_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query,
		fav.UserID, fav.ProductID, fav.Quantity,
		fav.Title, fav.Price, fav.ImageURL, fav.AddedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create favorite: %w", err)
	}
	return nil
}

// UpdateQuantity persists a new quantity on an existing favorite
func (r *FavoriteRepository) UpdateQuantity(ctx context.Context, userID, productID string, quantity int) error {
	query := `UPDATE favorites SET quantity = $1 WHERE user_id = $2 AND product_id = $3`
	result, err := r.db.Exec(ctx, query, quantity, userID, productID)
	if err != nil {
		return fmt.Errorf("failed to update favorite quantity: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a favorite entirely
func (r *FavoriteRepository) Delete(ctx context.Context, userID, productID string) error {
	query := `DELETE FROM favorites WHERE user_id = $1 AND product_id = $2`
	result, err := r.db.Exec(ctx, query, userID, productID)
	if err != nil {
		return fmt.Errorf("failed to delete favorite: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
