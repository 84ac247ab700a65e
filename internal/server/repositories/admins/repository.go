package admins

import (
	"context"

	"github.com/anypart/marketplace/internal/server/models"
)

type Repository interface {
	GetByLogin(ctx context.Context, userName string) (*models.Admin, error)
}
