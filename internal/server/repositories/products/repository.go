package products

import (
	"context"

	"github.com/anypart/marketplace/internal/server/models"
)

// Repository is the product catalog store. GetView returns the full,
// unredacted product including seller contact; redaction for non-granted
// buyers happens in the catalog service.
type Repository interface {
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	GetView(ctx context.Context, productID string) (*models.ProductView, error)
	ListFeatured(ctx context.Context, limit int) ([]*models.Product, error)
	ListBySeller(ctx context.Context, sellerID string) ([]*models.Product, error)
	ListUnlockedByBuyer(ctx context.Context, buyerID string) ([]*models.Product, error)
}
