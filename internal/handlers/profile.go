package handlers

import (
	"encoding/json"
	"net/http"

	"campus-market-backend/internal/middleware"
	"campus-market-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// ProfileHandler handles profile endpoints
type ProfileHandler struct {
	userService    *services.UserService
	productService *services.ProductService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(userService *services.UserService, productService *services.ProductService) *ProfileHandler {
	return &ProfileHandler{
		userService:    userService,
		productService: productService,
	}
}

// UpdateProfileRequest represents an edit-profile request
type UpdateProfileRequest struct {
	Name      string `json:"name"`
	Faculty   string `json:"faculty"`
	Phone     string `json:"phone"`
	Instagram string `json:"instagram"`
}

// Me handles GET /api/v1/me
func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	user, err := h.userService.GetProfile(r.Context(), userID)
	if err != nil {
		respondError(w, err.Error(), statusFor(err))
		return
	}

	respondJSON(w, user, http.StatusOK)
}

// UpdateMe handles PUT /api/v1/me
func (h *ProfileHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), userID, req.Name, req.Faculty, req.Phone, req.Instagram)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to update profile")
		respondError(w, err.Error(), statusFor(err))
		return
	}

	respondJSON(w, user, http.StatusOK)
}

// UploadPhoto handles POST /api/v1/me/photo with the image as a "photo" file
func (h *ProfileHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	file, header, err := r.FormFile("photo")
	if err != nil {
		respondError(w, "photo file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	url, err := h.userService.UploadProfilePhoto(r.Context(), userID, header.Header.Get("Content-Type"), file)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to upload profile photo")
		respondError(w, err.Error(), statusFor(err))
		return
	}

	respondJSON(w, map[string]string{"photo_url": url}, http.StatusOK)
}

// GetSeller handles GET /api/v1/users/{user_id}: a seller's public profile
// together with their listings.
func (h *ProfileHandler) GetSeller(w http.ResponseWriter, r *http.Request) {
	sellerID := chi.URLParam(r, "user_id")

	user, err := h.userService.GetProfile(r.Context(), sellerID)
	if err != nil {
		respondError(w, err.Error(), statusFor(err))
		return
	}

	products, err := h.productService.ListBySeller(r.Context(), sellerID)
	if err != nil {
		log.Error().Err(err).Str("seller_id", sellerID).Msg("Failed to list seller products")
		respondError(w, err.Error(), statusFor(err))
		return
	}

	// Public view: no email or password material
	respondJSON(w, map[string]interface{}{
		"user": map[string]interface{}{
			"id":        user.ID,
			"name":      user.Name,
			"faculty":   user.Faculty,
			"phone":     user.Phone,
			"instagram": user.Instagram,
			"photo_url": user.PhotoURL,
		},
		"products": products,
	}, http.StatusOK)
}
