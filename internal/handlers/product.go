package handlers

import (
	"fmt"
	"mime/multipart"
	"net/http"

	"campus-market-backend/internal/middleware"
	"campus-market-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// 32 MB, enough for a handful of listing photos
const maxUploadMemory = 32 << 20

// ProductHandler handles listing endpoints
type ProductHandler struct {
	productService *services.ProductService
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService *services.ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
	}
}

// Create handles POST /api/v1/products as a multipart form with the listing
// fields plus one or more "images" files.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		respondError(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	form := listingForm(r)
	images, closeImages, err := openImages(r.MultipartForm.File["images"])
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer closeImages()

	product, err := h.productService.Create(r.Context(), userID, form, images)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to create product")
		respondError(w, err.Error(), statusFor(err))
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("product_id", product.ID).
		Int("images", len(product.ImageURLs)).
		Msg("Product posted")

	respondJSON(w, product, http.StatusCreated)
}

// Get handles GET /api/v1/products/{product_id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "product_id")

	product, err := h.productService.Get(r.Context(), productID)
	if err != nil {
		respondError(w, err.Error(), statusFor(err))
		return
	}

	respondJSON(w, product, http.StatusOK)
}

// ListMine handles GET /api/v1/products, the seller's own listings
func (h *ProductHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	products, err := h.productService.ListBySeller(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list products")
		respondError(w, err.Error(), statusFor(err))
		return
	}

	respondJSON(w, map[string]interface{}{
		"products": products,
		"total":    len(products),
	}, http.StatusOK)
}

// Update handles PUT /api/v1/products/{product_id}. Besides the listing
// fields, "kept_image_urls" values name already-hosted images to retain and
// "images" files are uploaded as additions.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	productID := chi.URLParam(r, "product_id")

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		respondError(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	form := listingForm(r)
	keptURLs := r.MultipartForm.Value["kept_image_urls"]
	images, closeImages, err := openImages(r.MultipartForm.File["images"])
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer closeImages()

	product, err := h.productService.Update(r.Context(), userID, productID, form, keptURLs, images)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Str("product_id", productID).Msg("Failed to update product")
		respondError(w, err.Error(), statusFor(err))
		return
	}

	respondJSON(w, product, http.StatusOK)
}

// Delete handles DELETE /api/v1/products/{product_id}
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	productID := chi.URLParam(r, "product_id")

	if err := h.productService.Delete(r.Context(), userID, productID); err != nil {
		log.Error().Err(err).Str("user_id", userID).Str("product_id", productID).Msg("Failed to delete product")
		respondError(w, err.Error(), statusFor(err))
		return
	}

	log.Info().Str("user_id", userID).Str("product_id", productID).Msg("Product deleted")
	w.WriteHeader(http.StatusNoContent)
}

func listingForm(r *http.Request) services.ListingForm {
	return services.ListingForm{
		Description: r.FormValue("description"),
		Price:       r.FormValue("price"),
		Quantity:    r.FormValue("quantity"),
		Type:        r.FormValue("type"),
		Location:    r.FormValue("location"),
	}
}

// openImages opens the uploaded files in form order. The caller must invoke
// the returned cleanup once the uploads are consumed.
func openImages(headers []*multipart.FileHeader) ([]services.ImageUpload, func(), error) {
	images := make([]services.ImageUpload, 0, len(headers))
	files := make([]multipart.File, 0, len(headers))

	closeAll := func() {
		for _, f := range files {
			f.Close()
		}
	}

	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("failed to read uploaded file %s", header.Filename)
		}
		files = append(files, file)
		images = append(images, services.ImageUpload{
			ContentType: header.Header.Get("Content-Type"),
			Body:        file,
		})
	}

	return images, closeAll, nil
}
