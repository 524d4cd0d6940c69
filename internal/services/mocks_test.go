package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"campus-market-backend/internal/models"
	"campus-market-backend/internal/repository"
)

type fakeProductStore struct {
	mu       sync.Mutex
	products map[string]*models.Product
	listErr  error
	getErr   error
}

func newFakeProductStore(products ...*models.Product) *fakeProductStore {
	s := &fakeProductStore{products: make(map[string]*models.Product)}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

func (s *fakeProductStore) Create(_ context.Context, product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[product.ID] = product
	return nil
}

func (s *fakeProductStore) GetByID(_ context.Context, id string) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	product, ok := s.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return product, nil
}

func (s *fakeProductStore) ListAvailable(_ context.Context, viewerID string, excludedIDs []string) ([]*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}

	excluded := make(map[string]bool, len(excludedIDs))
	for _, id := range excludedIDs {
		excluded[id] = true
	}

	var result []*models.Product
	for _, p := range s.products {
		if p.Quantity <= 0 || p.SellerID == viewerID || excluded[p.ID] {
			continue
		}
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (s *fakeProductStore) ListBySeller(_ context.Context, sellerID string) ([]*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []*models.Product
	for _, p := range s.products {
		if p.SellerID == sellerID {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (s *fakeProductStore) Update(_ context.Context, product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[product.ID]; !ok {
		return repository.ErrNotFound
	}
	s.products[product.ID] = product
	return nil
}

func (s *fakeProductStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.products, id)
	return nil
}

func (s *fakeProductStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.products)
}

type fakeUserStore struct {
	mu      sync.Mutex
	users   map[string]*models.User
	lookups int
	getErr  error
}

func newFakeUserStore(users ...*models.User) *fakeUserStore {
	s := &fakeUserStore{users: make(map[string]*models.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeUserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
	return nil
}

func (s *fakeUserStore) GetByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups++
	if s.getErr != nil {
		return nil, s.getErr
	}
	user, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return user, nil
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *fakeUserStore) EmailExists(_ context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeUserStore) UpdateProfile(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	s.users[user.ID] = user
	return nil
}

func (s *fakeUserStore) UpdatePhotoURL(_ context.Context, userID, photoURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	user.PhotoURL = photoURL
	return nil
}

func (s *fakeUserStore) lookupCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookups
}

type fakeFavoriteStore struct {
	mu        sync.Mutex
	favorites map[string]*models.Favorite
	createErr error
	listErr   error
}

func favKey(userID, productID string) string {
	return userID + "/" + productID
}

func newFakeFavoriteStore(favs ...*models.Favorite) *fakeFavoriteStore {
	s := &fakeFavoriteStore{favorites: make(map[string]*models.Favorite)}
	for _, f := range favs {
		s.favorites[favKey(f.UserID, f.ProductID)] = f
	}
	return s
}

func (s *fakeFavoriteStore) ListByUser(_ context.Context, userID string) ([]*models.Favorite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var result []*models.Favorite
	for _, f := range s.favorites {
		if f.UserID == userID {
			result = append(result, f)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].AddedAt.After(result[j].AddedAt)
	})
	return result, nil
}

func (s *fakeFavoriteStore) ListProductIDs(ctx context.Context, userID string) ([]string, error) {
	favs, err := s.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(favs))
	for _, f := range favs {
		ids = append(ids, f.ProductID)
	}
	return ids, nil
}

func (s *fakeFavoriteStore) Get(_ context.Context, userID, productID string) (*models.Favorite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fav, ok := s.favorites[favKey(userID, productID)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return fav, nil
}

func (s *fakeFavoriteStore) Exists(_ context.Context, userID, productID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.favorites[favKey(userID, productID)]
	return ok, nil
}

func (s *fakeFavoriteStore) Create(_ context.Context, fav *models.Favorite) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	s.favorites[favKey(fav.UserID, fav.ProductID)] = fav
	return nil
}

func (s *fakeFavoriteStore) UpdateQuantity(_ context.Context, userID, productID string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	fav, ok := s.favorites[favKey(userID, productID)]
	if !ok {
		return repository.ErrNotFound
	}
	fav.Quantity = quantity
	return nil
}

func (s *fakeFavoriteStore) Delete(_ context.Context, userID, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := favKey(userID, productID)
	if _, ok := s.favorites[key]; !ok {
		return repository.ErrNotFound
	}
	delete(s.favorites, key)
	return nil
}

// fakeBlobStorage records uploads in call order; failAt aborts the n-th call
type fakeBlobStorage struct {
	mu        sync.Mutex
	uploads   []string
	deletes   []string
	failAt    int
	deleteErr error
}

func (s *fakeBlobStorage) Upload(_ context.Context, key, _ string, body io.Reader) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAt > 0 && len(s.uploads)+1 == s.failAt {
		return "", fmt.Errorf("blob store unavailable")
	}
	if body != nil {
		io.Copy(io.Discard, body)
	}
	s.uploads = append(s.uploads, key)
	return "https://blobs.test/" + key, nil
}

func (s *fakeBlobStorage) Delete(_ context.Context, publicURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deletes = append(s.deletes, publicURL)
	return nil
}

func (s *fakeBlobStorage) uploadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.uploads)
}

// fakeNotifier records cart snapshots pushed per user
type fakeNotifier struct {
	mu        sync.Mutex
	snapshots map[string][][]models.CartLine
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{snapshots: make(map[string][][]models.CartLine)}
}

func (n *fakeNotifier) NotifyCart(userID string, lines []models.CartLine) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.snapshots[userID] = append(n.snapshots[userID], lines)
}

func (n *fakeNotifier) count(userID string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.snapshots[userID])
}

func (n *fakeNotifier) latest(userID string) []models.CartLine {
	n.mu.Lock()
	defer n.mu.Unlock()
	snaps := n.snapshots[userID]
	if len(snaps) == 0 {
		return nil
	}
	return snaps[len(snaps)-1]
}

// fakeFavoriteWriter stands in for the cart service in feed tests
type fakeFavoriteWriter struct {
	mu    sync.Mutex
	err   error
	added []string
}

func (w *fakeFavoriteWriter) AddFavorite(_ context.Context, _ string, product *models.Product) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.added = append(w.added, product.ID)
	return nil
}

func imageBody() io.Reader {
	return bytes.NewReader([]byte("jpeg-bytes"))
}

func testProduct(id, sellerID string, quantity int, createdAt time.Time) *models.Product {
	return &models.Product{
		ID:          id,
		SellerID:    sellerID,
		Title:       "Item-" + id,
		Description: "Item-" + id + " description",
		Price:       100,
		Quantity:    quantity,
		Type:        models.TypeNew,
		Location:    "Library",
		ImageURLs:   []string{"https://blobs.test/product_images/" + id + ".jpg"},
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}
