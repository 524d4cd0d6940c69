package handlers

import (
	"encoding/json"
	"net/http"

	"campus-market-backend/internal/middleware"
	"campus-market-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// CartHandler handles the favorites/cart endpoints
type CartHandler struct {
	cartService *services.CartService
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *services.CartService) *CartHandler {
	return &CartHandler{
		cartService: cartService,
	}
}

// AdjustQuantityRequest represents a quantity change on a cart line
type AdjustQuantityRequest struct {
	Delta     int  `json:"delta"`
	Confirmed bool `json:"confirmed"`
}

// RemoveItemRequest represents a removal from the cart edit dialog
type RemoveItemRequest struct {
	Confirmed bool `json:"confirmed"`
}

// List handles GET /api/v1/cart
func (h *CartHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	lines, err := h.cartService.BuildLines(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to build cart")
		respondError(w, err.Error(), statusFor(err))
		return
	}

	respondJSON(w, map[string]interface{}{
		"items": lines,
		"total": len(lines),
	}, http.StatusOK)
}

// AdjustQuantity handles POST /api/v1/cart/items/{product_id}/quantity
func (h *CartHandler) AdjustQuantity(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	productID := chi.URLParam(r, "product_id")

	var req AdjustQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	removed, err := h.cartService.AdjustQuantity(r.Context(), userID, productID, req.Delta, req.Confirmed)
	if err != nil {
		respondError(w, err.Error(), statusFor(err))
		return
	}

	respondJSON(w, map[string]interface{}{"removed": removed}, http.StatusOK)
}

// Remove handles DELETE /api/v1/cart/items/{product_id}
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	productID := chi.URLParam(r, "product_id")

	var req RemoveItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.cartService.RemoveItem(r.Context(), userID, productID, req.Confirmed); err != nil {
		respondError(w, err.Error(), statusFor(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Toggle handles POST /api/v1/cart/items/{product_id}/toggle
func (h *CartHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	productID := chi.URLParam(r, "product_id")

	added, err := h.cartService.ToggleFavorite(r.Context(), userID, productID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Str("product_id", productID).Msg("Failed to toggle favorite")
		respondError(w, err.Error(), statusFor(err))
		return
	}

	respondJSON(w, map[string]interface{}{"favorited": added}, http.StatusOK)
}
