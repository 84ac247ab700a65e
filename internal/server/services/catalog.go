package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/anypart/marketplace/internal/common"
	"github.com/anypart/marketplace/internal/server/models"
	"github.com/anypart/marketplace/internal/server/repositories/repomanager"
)

// CatalogService serves product listings and the buyer-facing product
// detail view. Seller contact details in a view are redacted unless the
// requesting buyer holds an unlock grant for the product.
type CatalogService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewCatalogService(db *sql.DB, m repomanager.RepositoryManager) *CatalogService {
	return &CatalogService{db: db, repomanager: m}
}

// RedactSellerContact strips the paywalled fields from a seller contact
// block, leaving only the public ones.
func RedactSellerContact(c models.SellerContact) models.SellerContact {
	return models.SellerContact{
		SellerID: c.SellerID,
		Name:     c.Name,
		City:     c.City,
		LogoURL:  c.LogoURL,
	}
}

// GetProductDetails returns the product view for a buyer. buyerID may be
// empty for anonymous visitors; contact details are then always redacted.
func (s *CatalogService) GetProductDetails(ctx context.Context, productID, buyerID string) (*models.ProductView, error) {
	view, err := s.repomanager.Products(s.db).GetView(ctx, productID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("error loading product: %w", err)
	}

	unlocked := false
	if buyerID != "" {
		_, err := s.repomanager.Grants(s.db).Find(ctx, buyerID, productID)
		switch {
		case err == nil:
			unlocked = true
		case errors.Is(err, common.ErrNotFound):
		default:
			return nil, fmt.Errorf("error checking grant: %w", err)
		}
	}

	view.Unlocked = unlocked
	if !unlocked {
		view.Seller = RedactSellerContact(view.Seller)
	}
	return view, nil
}

// ListFeatured returns up to limit products flagged for the landing page.
func (s *CatalogService) ListFeatured(ctx context.Context, limit int) ([]*models.Product, error) {
	items, err := s.repomanager.Products(s.db).ListFeatured(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing featured products: %w", err)
	}
	return items, nil
}

// ListUnlocked returns the products the buyer has already unlocked.
func (s *CatalogService) ListUnlocked(ctx context.Context, buyerID string) ([]*models.Product, error) {
	items, err := s.repomanager.Products(s.db).ListUnlockedByBuyer(ctx, buyerID)
	if err != nil {
		return nil, fmt.Errorf("error listing unlocked products: %w", err)
	}
	return items, nil
}

// ListSellerProducts returns all products owned by a seller.
func (s *CatalogService) ListSellerProducts(ctx context.Context, sellerID string) ([]*models.Product, error) {
	items, err := s.repomanager.Products(s.db).ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("error listing seller products: %w", err)
	}
	return items, nil
}

// CreateProduct lists a new product for the seller.
func (s *CatalogService) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	created, err := s.repomanager.Products(s.db).Create(ctx, product)
	if err != nil {
		return nil, fmt.Errorf("error creating product: %w", err)
	}
	return created, nil
}

// UpdateProduct edits a product. The update is scoped to product.SellerID,
// so a seller cannot touch another seller's listing; a mismatch surfaces as
// common.ErrNotFound.
func (s *CatalogService) UpdateProduct(ctx context.Context, product *models.Product) error {
	if err := s.repomanager.Products(s.db).Update(ctx, product); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return fmt.Errorf("error updating product: %w", err)
	}
	return nil
}
