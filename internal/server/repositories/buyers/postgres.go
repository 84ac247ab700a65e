// Package buyers provides the PostgreSQL-backed buyer account store.
package buyers

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

const buyerColumns = `id, full_name, email, user_name, password_hash, tel, city, district, address, verified, created_at`

func (r *PostgresRepository) scanBuyer(row *sql.Row) (*models.Buyer, error) {
	buyer := &models.Buyer{}
	err := row.Scan(&buyer.ID, &buyer.FullName, &buyer.Email, &buyer.UserName, &buyer.PasswordHash,
		&buyer.Tel, &buyer.City, &buyer.District, &buyer.Address, &buyer.Verified, &buyer.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return buyer, nil
}

func (r *PostgresRepository) Create(ctx context.Context, buyer *models.Buyer) (*models.Buyer, error) {
	query := `
		INSERT INTO buyers (full_name, email, user_name, password_hash, tel, city, district, address)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		buyer.FullName, buyer.Email, buyer.UserName, buyer.PasswordHash,
		buyer.Tel, buyer.City, buyer.District, buyer.Address).
		Scan(&buyer.ID, &buyer.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return buyer, nil
}

func (r *PostgresRepository) GetByLogin(ctx context.Context, userName string) (*models.Buyer, error) {
	query := `SELECT ` + buyerColumns + ` FROM buyers WHERE user_name = $1`
	return r.scanBuyer(r.db.QueryRowContext(ctx, query, userName))
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Buyer, error) {
	query := `SELECT ` + buyerColumns + ` FROM buyers WHERE id = $1`
	return r.scanBuyer(r.db.QueryRowContext(ctx, query, id))
}
