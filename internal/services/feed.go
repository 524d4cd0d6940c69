package services

import (
	"context"
	"fmt"
	"sync"

	"campus-market-backend/internal/models"
	"campus-market-backend/internal/repository"
)

// ErrNoActiveCard is returned for like/dislike when the feed is empty.
var ErrNoActiveCard = fmt.Errorf("%w: no active card", ErrNotFound)

// favoriteWriter is the slice of the cart service the feed needs for likes
type favoriteWriter interface {
	AddFavorite(ctx context.Context, userID string, product *models.Product) error
}

// FeedStatus is the projected view of a feed session returned to the client
type FeedStatus struct {
	Empty      bool            `json:"empty"`
	Product    *models.Product `json:"product,omitempty"`
	Index      int             `json:"index"`
	Total      int             `json:"total"`
	ImageIndex int             `json:"image_index"`
	Skipped    int             `json:"skipped"`
}

// feedSession is the transient swipe state for one signed-in user. It is never
// persisted; a fresh session starts empty until the first load.
type feedSession struct {
	pending    []*models.Product
	disliked   []*models.Product
	index      int
	imageIndex int
}

func (s *feedSession) current() *models.Product {
	if s.index >= len(s.pending) {
		return nil
	}
	return s.pending[s.index]
}

// advance moves forward by exactly one position and resets image navigation
func (s *feedSession) advance() {
	s.index++
	s.imageIndex = 0
}

// FeedService maintains per-user swipe feed sessions over the catalog
type FeedService struct {
	mu        sync.Mutex
	sessions  map[string]*feedSession
	catalog   *CatalogService
	favorites repository.FavoriteStore
	cart      favoriteWriter
}

// NewFeedService creates a new feed service
func NewFeedService(catalog *CatalogService, favorites repository.FavoriteStore, cart favoriteWriter) *FeedService {
	return &FeedService{
		sessions:  make(map[string]*feedSession),
		catalog:   catalog,
		favorites: favorites,
		cart:      cart,
	}
}

func (s *FeedService) session(userID string) *feedSession {
	sess, ok := s.sessions[userID]
	if !ok {
		sess = &feedSession{}
		s.sessions[userID] = sess
	}
	return sess
}

func (s *FeedService) status(sess *feedSession) FeedStatus {
	current := sess.current()
	return FeedStatus{
		Empty:      current == nil,
		Product:    current,
		Index:      sess.index,
		Total:      len(sess.pending),
		ImageIndex: sess.imageIndex,
		Skipped:    len(sess.disliked),
	}
}

// load replaces the session's queue with a fresh catalog result. On a load
// failure the previous state is left untouched.
func (s *FeedService) load(ctx context.Context, userID string, sess *feedSession) error {
	excluded, err := s.favorites.ListProductIDs(ctx, userID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	products, err := s.catalog.Load(ctx, userID, excluded)
	if err != nil {
		return err
	}

	sess.pending = products
	sess.disliked = nil
	sess.index = 0
	sess.imageIndex = 0
	return nil
}

// Load populates the user's feed from the catalog, e.g. on screen focus
func (s *FeedService) Load(ctx context.Context, userID string) (FeedStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session(userID)
	if err := s.load(ctx, userID, sess); err != nil {
		return s.status(sess), err
	}
	return s.status(sess), nil
}

// State returns the current feed view without touching it
func (s *FeedService) State(userID string) FeedStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status(s.session(userID))
}

// Dislike skips the active card. The card joins the skipped queue and the feed
// advances by one.
func (s *FeedService) Dislike(userID string) (FeedStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session(userID)
	current := sess.current()
	if current == nil {
		return s.status(sess), ErrNoActiveCard
	}

	sess.disliked = append(sess.disliked, current)
	sess.advance()
	return s.status(sess), nil
}

// Like favorites the active card and advances. The favorite write must succeed
// before the feed moves on; on failure the same card stays active.
func (s *FeedService) Like(ctx context.Context, userID string) (FeedStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session(userID)
	current := sess.current()
	if current == nil {
		return s.status(sess), ErrNoActiveCard
	}

	if err := s.cart.AddFavorite(ctx, userID, current); err != nil {
		return s.status(sess), fmt.Errorf("failed to add favorite: %w", err)
	}

	sess.advance()
	return s.status(sess), nil
}

// Refresh re-shows skipped cards when the feed has run out, in original skip
// order. With nothing skipped (or while a card is still showing) it reloads
// the catalog instead.
func (s *FeedService) Refresh(ctx context.Context, userID string) (FeedStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session(userID)
	if sess.current() == nil && len(sess.disliked) > 0 {
		sess.pending = sess.disliked
		sess.disliked = nil
		sess.index = 0
		sess.imageIndex = 0
		return s.status(sess), nil
	}

	if err := s.load(ctx, userID, sess); err != nil {
		return s.status(sess), err
	}
	return s.status(sess), nil
}

// NextImage steps the active card's image right, capped at the last image
func (s *FeedService) NextImage(userID string) (FeedStatus, error) {
	return s.stepImage(userID, 1)
}

// PrevImage steps the active card's image left, floored at the first image
func (s *FeedService) PrevImage(userID string) (FeedStatus, error) {
	return s.stepImage(userID, -1)
}

func (s *FeedService) stepImage(userID string, delta int) (FeedStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session(userID)
	current := sess.current()
	if current == nil {
		return s.status(sess), ErrNoActiveCard
	}

	next := sess.imageIndex + delta
	if next < 0 {
		next = 0
	}
	if max := len(current.ImageURLs) - 1; next > max {
		next = max
	}
	if next < 0 {
		next = 0
	}
	sess.imageIndex = next
	return s.status(sess), nil
}

// Drop discards a user's transient feed session, e.g. at sign-out
func (s *FeedService) Drop(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}
