package sellers

import (
	"context"

	"github.com/anypart/marketplace/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, seller *models.Seller) (*models.Seller, error)
	GetByLogin(ctx context.Context, userName string) (*models.Seller, error)
	GetByID(ctx context.Context, id string) (*models.Seller, error)
}
