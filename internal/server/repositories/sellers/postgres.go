// Package sellers provides the PostgreSQL-backed seller account store.
package sellers

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

const sellerColumns = `id, name, user_name, password_hash, tel1, tel2, address, city, logo_url, created_at`

func (r *PostgresRepository) scanSeller(row *sql.Row) (*models.Seller, error) {
	seller := &models.Seller{}
	err := row.Scan(&seller.ID, &seller.Name, &seller.UserName, &seller.PasswordHash,
		&seller.Tel1, &seller.Tel2, &seller.Address, &seller.City, &seller.LogoURL, &seller.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return seller, nil
}

func (r *PostgresRepository) Create(ctx context.Context, seller *models.Seller) (*models.Seller, error) {
	query := `
		INSERT INTO sellers (name, user_name, password_hash, tel1, tel2, address, city, logo_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		seller.Name, seller.UserName, seller.PasswordHash,
		seller.Tel1, seller.Tel2, seller.Address, seller.City, seller.LogoURL).
		Scan(&seller.ID, &seller.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return seller, nil
}

func (r *PostgresRepository) GetByLogin(ctx context.Context, userName string) (*models.Seller, error) {
	query := `SELECT ` + sellerColumns + ` FROM sellers WHERE user_name = $1`
	return r.scanSeller(r.db.QueryRowContext(ctx, query, userName))
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Seller, error) {
	query := `SELECT ` + sellerColumns + ` FROM sellers WHERE id = $1`
	return r.scanSeller(r.db.QueryRowContext(ctx, query, id))
}
