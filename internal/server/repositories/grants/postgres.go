// Package grants provides the PostgreSQL-backed store of unlock grants.
package grants

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/anypart/marketplace/internal/common"
	"github.com/anypart/marketplace/internal/dbx"
	"github.com/anypart/marketplace/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Find(ctx context.Context, buyerID, productID string) (*models.Grant, error) {
	query := `
		SELECT id, buyer_id, product_id, credit_token_id, created_at
		FROM grants
		WHERE buyer_id = $1 AND product_id = $2
	`
	grant := &models.Grant{}
	err := r.db.QueryRowContext(ctx, query, buyerID, productID).
		Scan(&grant.ID, &grant.BuyerID, &grant.ProductID, &grant.CreditTokenID, &grant.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return grant, nil
}

func (r *PostgresRepository) Create(ctx context.Context, grant *models.Grant) (*models.Grant, error) {
	query := `
		INSERT INTO grants (buyer_id, product_id, credit_token_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query, grant.BuyerID, grant.ProductID, grant.CreditTokenID).
		Scan(&grant.ID, &grant.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return grant, nil
}

func (r *PostgresRepository) ListByBuyer(ctx context.Context, buyerID string) ([]*models.Grant, error) {
	query := `
		SELECT id, buyer_id, product_id, credit_token_id, created_at
		FROM grants
		WHERE buyer_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, buyerID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*models.Grant
	for rows.Next() {
		grant := &models.Grant{}
		if err := rows.Scan(&grant.ID, &grant.BuyerID, &grant.ProductID, &grant.CreditTokenID, &grant.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, grant)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}
