package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campus-market-backend/internal/models"
	"campus-market-backend/internal/repository"

	"github.com/rs/zerolog/log"
)

// CartNotifier pushes the latest cart projection to a user's live subscription
type CartNotifier interface {
	NotifyCart(userID string, lines []models.CartLine)
}

// CartService projects a user's favorites into cart line items and applies
// quantity edits back to the store. It keeps no state of its own: every view
// is rebuilt from the favorites store, and every mutation re-notifies the
// owner's subscription with a full snapshot.
type CartService struct {
	favorites repository.FavoriteStore
	products  repository.ProductStore
	catalog   *CatalogService
	notifier  CartNotifier
}

// NewCartService creates a new cart service
func NewCartService(
	favorites repository.FavoriteStore,
	products repository.ProductStore,
	catalog *CatalogService,
	notifier CartNotifier,
) *CartService {
	return &CartService{
		favorites: favorites,
		products:  products,
		catalog:   catalog,
		notifier:  notifier,
	}
}

// BuildLines rebuilds the cart view from the favorites store. Favorites whose
// product no longer exists are skipped; seller names resolve through a cache
// shared for this build, with a literal "Unknown" fallback. MaxQuantity is the
// product's live stock, not the add-time snapshot.
func (s *CartService) BuildLines(ctx context.Context, userID string) ([]models.CartLine, error) {
	favs, err := s.favorites.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load favorites: %w", err)
	}

	names := make(map[string]string)
	lines := make([]models.CartLine, 0, len(favs))
	for _, fav := range favs {
		product, err := s.products.GetByID(ctx, fav.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to load product %s: %w", fav.ProductID, err)
		}

		name, ok := names[product.SellerID]
		if !ok {
			name = s.catalog.SellerName(ctx, product.SellerID)
			names[product.SellerID] = name
		}

		image := ""
		if len(product.ImageURLs) > 0 {
			image = product.ImageURLs[0]
		}

		title := product.Title
		if title == "" {
			title = product.Description
		}

		lines = append(lines, models.CartLine{
			ProductID:   product.ID,
			SellerID:    product.SellerID,
			SellerName:  name,
			Title:       title,
			Price:       product.Price,
			Quantity:    fav.Quantity,
			MaxQuantity: product.Quantity,
			Image:       image,
		})
	}

	return lines, nil
}

// AddFavorite saves a product into the user's favorites with quantity 1 and a
// snapshot of its fields at add time.
func (s *CartService) AddFavorite(ctx context.Context, userID string, product *models.Product) error {
	image := ""
	if len(product.ImageURLs) > 0 {
		image = product.ImageURLs[0]
	}

	fav := &models.Favorite{
		UserID:    userID,
		ProductID: product.ID,
		Quantity:  1,
		Title:     product.Title,
		Price:     product.Price,
		ImageURL:  image,
		AddedAt:   time.Now(),
	}
	if err := s.favorites.Create(ctx, fav); err != nil {
		return err
	}

	s.notify(ctx, userID)
	return nil
}

// ToggleFavorite adds a product to the favorites if absent and removes it if
// present. Returns whether the product ended up favorited.
func (s *CartService) ToggleFavorite(ctx context.Context, userID, productID string) (bool, error) {
	exists, err := s.favorites.Exists(ctx, userID, productID)
	if err != nil {
		return false, fmt.Errorf("failed to check favorite: %w", err)
	}

	if exists {
		if err := s.favorites.Delete(ctx, userID, productID); err != nil {
			return true, err
		}
		s.notify(ctx, userID)
		return false, nil
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, ErrNotFound
		}
		return false, err
	}
	if err := s.AddFavorite(ctx, userID, product); err != nil {
		return false, err
	}
	return true, nil
}

// AdjustQuantity applies a quantity delta to a cart line. An increment past
// the product's live stock is rejected with ErrAtCapacity and no mutation. A
// result of zero or less removes the line entirely, but only once the caller
// confirms; until then ErrConfirmationRequired is returned and nothing
// changes. Returns whether the line was removed.
func (s *CartService) AdjustQuantity(ctx context.Context, userID, productID string, delta int, confirmed bool) (bool, error) {
	fav, err := s.favorites.Get(ctx, userID, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, ErrNotFound
		}
		return false, err
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, ErrNotFound
		}
		return false, err
	}

	newQuantity := fav.Quantity + delta
	if newQuantity > product.Quantity {
		return false, ErrAtCapacity
	}

	if newQuantity <= 0 {
		if !confirmed {
			return false, ErrConfirmationRequired
		}
		if err := s.favorites.Delete(ctx, userID, productID); err != nil {
			return false, err
		}
		s.notify(ctx, userID)
		return true, nil
	}

	if err := s.favorites.UpdateQuantity(ctx, userID, productID, newQuantity); err != nil {
		return false, err
	}
	s.notify(ctx, userID)
	return false, nil
}

// RemoveItem deletes a cart line unconditionally, used from the edit dialog.
// The deletion still requires an explicit confirmation.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID string, confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}

	if err := s.favorites.Delete(ctx, userID, productID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	s.notify(ctx, userID)
	return nil
}

// notify rebuilds the owner's cart view and pushes it to their subscription
func (s *CartService) notify(ctx context.Context, userID string) {
	if s.notifier == nil {
		return
	}
	lines, err := s.BuildLines(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("Failed to rebuild cart for notification")
		return
	}
	s.notifier.NotifyCart(userID, lines)
}
