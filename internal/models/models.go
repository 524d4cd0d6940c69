package models

import "time"

// Product condition values
const (
	TypeNew  = "New"
	TypeUsed = "Used"
)

// User represents a registered account in the marketplace
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Faculty      string    `json:"faculty"`
	Phone        string    `json:"phone"`
	Instagram    string    `json:"instagram"`
	PhotoURL     string    `json:"photo_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Product represents a marketplace listing
type Product struct {
	ID          string    `json:"id"`
	SellerID    string    `json:"seller_id"`
	SellerName  string    `json:"seller_name"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Quantity    int       `json:"quantity"`
	Type        string    `json:"type"`
	Location    string    `json:"location"`
	ImageURLs   []string  `json:"image_urls"`
	IsSoldOut   bool      `json:"is_sold_out"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Favorite links a user to a product with a desired quantity. It doubles as
// the persisted cart line; a favorite with quantity 0 is never stored.
type Favorite struct {
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Title     string    `json:"title"`
	Price     float64   `json:"price"`
	ImageURL  string    `json:"image_url"`
	AddedAt   time.Time `json:"added_at"`
}

// CartLine is the view of a favorite joined with live product and seller data.
// MaxQuantity reflects the product's current stock, not the add-time snapshot.
type CartLine struct {
	ProductID   string  `json:"product_id"`
	SellerID    string  `json:"seller_id"`
	SellerName  string  `json:"seller_name"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	MaxQuantity int     `json:"max_quantity"`
	Image       string  `json:"image"`
}
