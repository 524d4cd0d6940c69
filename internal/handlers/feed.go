package handlers

import (
	"net/http"

	"campus-market-backend/internal/middleware"
	"campus-market-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// FeedHandler handles the swipe feed endpoints
type FeedHandler struct {
	feedService *services.FeedService
}

// NewFeedHandler creates a new feed handler
func NewFeedHandler(feedService *services.FeedService) *FeedHandler {
	return &FeedHandler{
		feedService: feedService,
	}
}

// Get handles GET /api/v1/feed
func (h *FeedHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	respondJSON(w, h.feedService.State(userID), http.StatusOK)
}

// Load handles POST /api/v1/feed/load, called on screen focus
func (h *FeedHandler) Load(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	status, err := h.feedService.Load(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to load feed")
		respondError(w, err.Error(), statusFor(err))
		return
	}

	respondJSON(w, status, http.StatusOK)
}

// Like handles POST /api/v1/feed/like
func (h *FeedHandler) Like(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	status, err := h.feedService.Like(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to like product")
		respondError(w, err.Error(), statusFor(err))
		return
	}

	respondJSON(w, status, http.StatusOK)
}

// Dislike handles POST /api/v1/feed/dislike
func (h *FeedHandler) Dislike(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	status, err := h.feedService.Dislike(userID)
	if err != nil {
		respondError(w, err.Error(), statusFor(err))
		return
	}

	respondJSON(w, status, http.StatusOK)
}

// Refresh handles POST /api/v1/feed/refresh
func (h *FeedHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	status, err := h.feedService.Refresh(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to refresh feed")
		respondError(w, err.Error(), statusFor(err))
		return
	}

	respondJSON(w, status, http.StatusOK)
}

// NextImage handles POST /api/v1/feed/image/next
func (h *FeedHandler) NextImage(w http.ResponseWriter, r *http.Request) {
	h.stepImage(w, r, h.feedService.NextImage)
}

// PrevImage handles POST /api/v1/feed/image/prev
func (h *FeedHandler) PrevImage(w http.ResponseWriter, r *http.Request) {
	h.stepImage(w, r, h.feedService.PrevImage)
}

func (h *FeedHandler) stepImage(w http.ResponseWriter, r *http.Request, step func(string) (services.FeedStatus, error)) {
	userID := middleware.GetUserID(r.Context())

	status, err := step(userID)
	if err != nil {
		respondError(w, err.Error(), statusFor(err))
		return
	}

	respondJSON(w, status, http.StatusOK)
}
