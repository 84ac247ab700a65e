// Package admins provides the PostgreSQL-backed admin account store.
package admins

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/anypart/marketplace/internal/common"
	"github.com/anypart/marketplace/internal/dbx"
	"github.com/anypart/marketplace/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByLogin(ctx context.Context, userName string) (*models.Admin, error) {
	query := `
		SELECT id, user_name, password_hash, created_at
		FROM admins
		WHERE user_name = $1
	`
	admin := &models.Admin{}
	err := r.db.QueryRowContext(ctx, query, userName).
		Scan(&admin.ID, &admin.UserName, &admin.PasswordHash, &admin.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return admin, nil
}
