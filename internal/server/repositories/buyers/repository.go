package buyers

import (
	"context"

	"github.com/anypart/marketplace/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, buyer *models.Buyer) (*models.Buyer, error)
	GetByLogin(ctx context.Context, userName string) (*models.Buyer, error)
	GetByID(ctx context.Context, id string) (*models.Buyer, error)
}
