package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"campus-market-backend/internal/models"
	"campus-market-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ImageUpload is one image file attached to a listing form
type ImageUpload struct {
	ContentType string
	Body        io.Reader
}

// ListingForm carries the raw posting form. Price and quantity arrive as
// strings so validation can report non-numeric input the same way the form
// reports a missing field.
type ListingForm struct {
	Description string
	Price       string
	Quantity    string
	Type        string
	Location    string
}

// parsed holds a validated listing form
type parsedListing struct {
	description string
	price       float64
	quantity    int
	productType string
	location    string
}

// validateListing checks the form before any storage call is made
func validateListing(form ListingForm, imageCount int) (*parsedListing, error) {
	description := strings.TrimSpace(form.Description)
	if description == "" {
		return nil, fmt.Errorf("%w: description is required", ErrValidation)
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(form.Price), 64)
	if err != nil || price < 0 {
		return nil, fmt.Errorf("%w: price must be a number greater than or equal to 0", ErrValidation)
	}

	productType := strings.TrimSpace(form.Type)
	if productType != models.TypeNew && productType != models.TypeUsed {
		return nil, fmt.Errorf("%w: type must be New or Used", ErrValidation)
	}

	quantity, err := strconv.Atoi(strings.TrimSpace(form.Quantity))
	if err != nil || quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be a number greater than or equal to 1", ErrValidation)
	}

	if imageCount == 0 {
		return nil, fmt.Errorf("%w: at least one image is required", ErrValidation)
	}

	return &parsedListing{
		description: description,
		price:       price,
		quantity:    quantity,
		productType: productType,
		location:    strings.TrimSpace(form.Location),
	}, nil
}

// ProductService handles listing creation, editing and deletion
type ProductService struct {
	products repository.ProductStore
	users    repository.UserStore
	blobs    BlobStorage
}

// NewProductService creates a new product service
func NewProductService(products repository.ProductStore, users repository.UserStore, blobs BlobStorage) *ProductService {
	return &ProductService{
		products: products,
		users:    users,
		blobs:    blobs,
	}
}

// Create validates the posting form, uploads the images one after another and
// then writes the product record. The uploads run as an ordered chain: the
// first failure aborts the remaining uploads and no record is written.
// Already-uploaded blobs are left behind in that case.
func (s *ProductService) Create(ctx context.Context, sellerID string, form ListingForm, images []ImageUpload) (*models.Product, error) {
	parsed, err := validateListing(form, len(images))
	if err != nil {
		return nil, err
	}

	sellerName := s.sellerDisplayName(ctx, sellerID)

	urls, err := s.uploadImages(ctx, images)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	product := &models.Product{
		ID:          uuid.New().String(),
		SellerID:    sellerID,
		SellerName:  sellerName,
		Title:       firstWord(parsed.description),
		Description: parsed.description,
		Price:       parsed.price,
		Quantity:    parsed.quantity,
		Type:        parsed.productType,
		Location:    parsed.location,
		ImageURLs:   urls,
		IsSoldOut:   false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

// Get retrieves a single product
func (s *ProductService) Get(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return product, nil
}

// ListBySeller retrieves a seller's own listings, newest first
func (s *ProductService) ListBySeller(ctx context.Context, sellerID string) ([]*models.Product, error) {
	return s.products.ListBySeller(ctx, sellerID)
}

// Update edits a listing. Only the owner may edit. Kept image URLs pass
// through unchanged; new images upload sequentially with the same
// abort-on-first-failure behavior as Create.
func (s *ProductService) Update(ctx context.Context, userID, productID string, form ListingForm, keptURLs []string, newImages []ImageUpload) (*models.Product, error) {
	product, err := s.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.SellerID != userID {
		return nil, ErrForbidden
	}

	parsed, err := validateListing(form, len(keptURLs)+len(newImages))
	if err != nil {
		return nil, err
	}

	uploaded, err := s.uploadImages(ctx, newImages)
	if err != nil {
		return nil, err
	}

	product.Description = parsed.description
	product.Price = parsed.price
	product.Quantity = parsed.quantity
	product.Type = parsed.productType
	product.Location = parsed.location
	product.ImageURLs = append(append([]string{}, keptURLs...), uploaded...)
	product.IsSoldOut = parsed.quantity <= 0
	product.UpdatedAt = time.Now()

	if err := s.products.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return product, nil
}

// Delete removes a listing and its image blobs. Blob deletion is best-effort:
// a failed delete logs a warning and the record is removed regardless.
func (s *ProductService) Delete(ctx context.Context, userID, productID string) error {
	product, err := s.Get(ctx, productID)
	if err != nil {
		return err
	}
	if product.SellerID != userID {
		return ErrForbidden
	}

	for _, url := range product.ImageURLs {
		if err := s.blobs.Delete(ctx, url); err != nil {
			log.Warn().Err(err).Str("url", url).Msg("Failed to delete image blob")
		}
	}

	if err := s.products.Delete(ctx, productID); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

// uploadImages uploads images one by one, preserving order. The first failure
// stops the chain and reports which image failed.
func (s *ProductService) uploadImages(ctx context.Context, images []ImageUpload) ([]string, error) {
	urls := make([]string, 0, len(images))
	for i, img := range images {
		contentType := img.ContentType
		if contentType == "" {
			contentType = "image/jpeg"
		}

		key := fmt.Sprintf("product_images/%d-%d.jpg", time.Now().UnixMilli(), i)
		url, err := s.blobs.Upload(ctx, key, contentType, img.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to upload image %d of %d: %w", i+1, len(images), err)
		}
		urls = append(urls, url)
	}
	return urls, nil
}

// sellerDisplayName resolves the poster's name with their email as fallback
func (s *ProductService) sellerDisplayName(ctx context.Context, sellerID string) string {
	user, err := s.users.GetByID(ctx, sellerID)
	if err != nil {
		return ""
	}
	if user.Name != "" {
		return user.Name
	}
	return user.Email
}

// firstWord mirrors the listing title derivation: the first word of the
// description, or "Untitled" when the description is a single space run.
func firstWord(description string) string {
	fields := strings.Fields(description)
	if len(fields) == 0 {
		return "Untitled"
	}
	return fields[0]
}
