package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"campus-market-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogLoadFiltersUnsellable(t *testing.T) {
	now := time.Now()
	products := newFakeProductStore(
		testProduct("a", "seller-1", 3, now),
		testProduct("b", "seller-1", 0, now.Add(-time.Minute)),
		testProduct("c", "viewer", 5, now.Add(-2*time.Minute)),
	)
	users := newFakeUserStore(&models.User{ID: "seller-1", Name: "Kanthima"})
	catalog := NewCatalogService(products, users)

	result, err := catalog.Load(context.Background(), "viewer", nil)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "a", result[0].ID)
	assert.Equal(t, "Kanthima", result[0].SellerName)
}

func TestCatalogLoadExcludesFavorited(t *testing.T) {
	now := time.Now()
	products := newFakeProductStore(
		testProduct("a", "seller-1", 3, now),
		testProduct("b", "seller-1", 2, now.Add(-time.Minute)),
	)
	users := newFakeUserStore(&models.User{ID: "seller-1", Name: "Kanthima"})
	catalog := NewCatalogService(products, users)

	result, err := catalog.Load(context.Background(), "viewer", []string{"a"})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "b", result[0].ID)
}

func TestCatalogLoadNewestFirst(t *testing.T) {
	now := time.Now()
	products := newFakeProductStore(
		testProduct("old", "seller-1", 1, now.Add(-time.Hour)),
		testProduct("new", "seller-1", 1, now),
		testProduct("mid", "seller-1", 1, now.Add(-time.Minute)),
	)
	users := newFakeUserStore(&models.User{ID: "seller-1", Name: "Kanthima"})
	catalog := NewCatalogService(products, users)

	result, err := catalog.Load(context.Background(), "viewer", nil)
	require.NoError(t, err)
	require.Len(t, result, 3)
	assert.Equal(t, "new", result[0].ID)
	assert.Equal(t, "mid", result[1].ID)
	assert.Equal(t, "old", result[2].ID)
}

func TestCatalogLoadCachesSellerNamePerLoad(t *testing.T) {
	now := time.Now()
	products := newFakeProductStore(
		testProduct("a", "seller-1", 1, now),
		testProduct("b", "seller-1", 1, now.Add(-time.Minute)),
		testProduct("c", "seller-1", 1, now.Add(-2*time.Minute)),
	)
	users := newFakeUserStore(&models.User{ID: "seller-1", Name: "Kanthima"})
	catalog := NewCatalogService(products, users)

	result, err := catalog.Load(context.Background(), "viewer", nil)
	require.NoError(t, err)
	require.Len(t, result, 3)

	// Three products, one seller: the name lookup happens once
	assert.Equal(t, 1, users.lookupCount())
	for _, p := range result {
		assert.Equal(t, "Kanthima", p.SellerName)
	}
}

func TestCatalogLoadUnknownSellerFallback(t *testing.T) {
	products := newFakeProductStore(testProduct("a", "ghost", 1, time.Now()))
	catalog := NewCatalogService(products, newFakeUserStore())

	result, err := catalog.Load(context.Background(), "viewer", nil)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "Unknown", result[0].SellerName)
}

func TestCatalogLoadUnavailable(t *testing.T) {
	products := newFakeProductStore()
	products.listErr = fmt.Errorf("connection refused")
	catalog := NewCatalogService(products, newFakeUserStore())

	_, err := catalog.Load(context.Background(), "viewer", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCatalogUnavailable)
}
