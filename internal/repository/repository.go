package repository

import (
	"context"
	"errors"

	"campus-market-backend/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// UserStore handles persistence for user accounts and profiles
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	UpdatePhotoURL(ctx context.Context, userID, photoURL string) error
}

// ProductStore handles persistence for product listings
type ProductStore interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id string) (*models.Product, error)
	ListAvailable(ctx context.Context, viewerID string, excludedIDs []string) ([]*models.Product, error)
	ListBySeller(ctx context.Context, sellerID string) ([]*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error
}

// FavoriteStore handles persistence for per-user favorites (cart lines)
type FavoriteStore interface {
	ListByUser(ctx context.Context, userID string) ([]*models.Favorite, error)
	ListProductIDs(ctx context.Context, userID string) ([]string, error)
	Get(ctx context.Context, userID, productID string) (*models.Favorite, error)
	Exists(ctx context.Context, userID, productID string) (bool, error)
	Create(ctx context.Context, fav *models.Favorite) error
	UpdateQuantity(ctx context.Context, userID, productID string, quantity int) error
	Delete(ctx context.Context, userID, productID string) error
}
