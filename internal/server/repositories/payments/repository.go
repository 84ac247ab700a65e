package payments

import (
	"context"

	"github.com/anypart/marketplace/internal/server/models"
)

// Repository stores credit-package purchases and the package catalog.
type Repository interface {
	// CreatePending records a new PENDING payment before the buyer is
	// redirected to the gateway.
	CreatePending(ctx context.Context, payment *models.Payment) (*models.Payment, error)

	// GetByOrderRef returns the payment for a gateway order reference or
	// common.ErrNotFound.
	GetByOrderRef(ctx context.Context, orderRef string) (*models.Payment, error)

	// MarkStatus updates status/method/gatewayStatus for an order. Only a
	// PENDING payment transitions; a repeated webhook on a settled payment
	// affects zero rows and returns common.ErrNotFound.
	MarkStatus(ctx context.Context, orderRef, status, method string, gatewayStatus int) error

	// ListByBuyer returns the buyer's payments, newest first.
	ListByBuyer(ctx context.Context, buyerID string) ([]*models.Payment, error)

	// ListPackages returns the purchasable credit packages, cheapest first.
	ListPackages(ctx context.Context) ([]*models.CreditPackage, error)

	// GetPackage returns one credit package or common.ErrNotFound.
	GetPackage(ctx context.Context, id string) (*models.CreditPackage, error)
}
