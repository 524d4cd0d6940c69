package services

import (
	"context"
	"fmt"

	"campus-market-backend/internal/models"
	"campus-market-backend/internal/repository"
)

const unknownSeller = "Unknown"

// CatalogService loads the sellable products a viewer can browse
type CatalogService struct {
	products repository.ProductStore
	users    repository.UserStore
}

// NewCatalogService creates a new catalog service
func NewCatalogService(products repository.ProductStore, users repository.UserStore) *CatalogService {
	return &CatalogService{
		products: products,
		users:    users,
	}
}

// Load returns available products for a viewer, newest first. Products with no
// remaining stock, the viewer's own listings and the excluded IDs (already
// favorited) are filtered out. Seller display names are resolved with a cache
// that lives for this call only, so repeated sellers cost one lookup each.
func (s *CatalogService) Load(ctx context.Context, viewerID string, excludedIDs []string) ([]*models.Product, error) {
	products, err := s.products.ListAvailable(ctx, viewerID, excludedIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	names := make(map[string]string)
	for _, p := range products {
		p.SellerName = s.resolveSellerName(ctx, names, p.SellerID)
	}

	return products, nil
}

// resolveSellerName returns the seller's display name, consulting the per-call
// cache first. Missing user records and lookup failures fall back to "Unknown"
// rather than failing the load.
func (s *CatalogService) resolveSellerName(ctx context.Context, cache map[string]string, sellerID string) string {
	if name, ok := cache[sellerID]; ok {
		return name
	}

	name := unknownSeller
	if user, err := s.users.GetByID(ctx, sellerID); err == nil && user.Name != "" {
		name = user.Name
	}

	cache[sellerID] = name
	return name
}

// SellerName resolves a single seller's display name with the fallback applied
func (s *CatalogService) SellerName(ctx context.Context, sellerID string) string {
	return s.resolveSellerName(ctx, make(map[string]string), sellerID)
}
