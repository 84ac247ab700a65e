package grants

import (
	"context"

	"github.com/anypart/marketplace/internal/server/models"
)

// Repository is the unlock-grant store. Grants are immutable once created
// and unique per (buyer, product); the uniqueness is enforced by the
// database so that concurrent duplicate inserts surface as
// common.ErrAlreadyExists instead of racing silently.
type Repository interface {
	// Find returns the grant for (buyer, product) or common.ErrNotFound.
	Find(ctx context.Context, buyerID, productID string) (*models.Grant, error)

	// Create inserts a new grant and returns it with its generated id.
	// A concurrent duplicate yields common.ErrAlreadyExists.
	Create(ctx context.Context, grant *models.Grant) (*models.Grant, error)

	// ListByBuyer returns the buyer's grants, newest first.
	ListByBuyer(ctx context.Context, buyerID string) ([]*models.Grant, error)
}
