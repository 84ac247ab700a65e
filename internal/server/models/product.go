package models

import "time"

// Product is a listed auto part. Public fields are always visible; the
// owning seller's contact details are attached separately (see ProductView).
type Product struct {
	ID          string
	SellerID    string
	Name        string
	Description string
	PriceCents  int64
	Brand       string
	Model       string
	Year        int
	Condition   string
	Tags        []string
	ImageURLs   []string
	IsFeatured  bool
	CreatedAt   time.Time
}

// SellerContact is the buyer-facing seller block on a product view.
// Tel1, Tel2 and Address are nil unless the requesting buyer holds a grant;
// Name and City are public.
type SellerContact struct {
	SellerID string
	Name     string
	City     string
	LogoURL  string
	Tel1     *string
	Tel2     *string
	Address  *string
}

// ProductView is the product detail payload returned to buyers.
type ProductView struct {
	Product
	Seller   SellerContact
	Unlocked bool
}
