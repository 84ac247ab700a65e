// Package credittokens provides the PostgreSQL-backed credit-token ledger.
package credittokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

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

func (r *PostgresRepository) CountUnused(ctx context.Context, buyerID string, enforceExpiry bool, now time.Time) (int, error) {
	query := `
		SELECT COUNT(*) FROM credit_tokens
		WHERE buyer_id = $1 AND status = $2
	`
	args := []any{buyerID, models.CreditTokenUnused}
	if enforceExpiry {
		query += ` AND (expires_at IS NULL OR expires_at > $3)`
		args = append(args, now)
	}

	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// SelectForConsume orders by expiry so that expiring credits are spent first.
// FOR UPDATE SKIP LOCKED makes concurrent unlock transactions pick distinct
// tokens instead of blocking on the same row.
func (r *PostgresRepository) SelectForConsume(ctx context.Context, buyerID string, enforceExpiry bool, now time.Time) (*models.CreditToken, error) {
	query := `
		SELECT id, buyer_id, status, expires_at, purchase_ref, created_at
		FROM credit_tokens
		WHERE buyer_id = $1 AND status = $2
	`
	args := []any{buyerID, models.CreditTokenUnused}
	if enforceExpiry {
		query += ` AND (expires_at IS NULL OR expires_at > $3)`
		args = append(args, now)
	}
	query += `
		ORDER BY expires_at ASC NULLS LAST, created_at ASC
		LIMIT 1
		FOR UPDATE SKIP LOCKED
	`

	token := &models.CreditToken{}
	err := r.db.QueryRowContext(ctx, query, args...).
		Scan(&token.ID, &token.BuyerID, &token.Status, &token.ExpiresAt, &token.PurchaseRef, &token.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return token, nil
}

func (r *PostgresRepository) MarkUsed(ctx context.Context, tokenID, grantID string) error {
	query := `
		UPDATE credit_tokens
		SET status = $1, grant_id = $2, updated_at = now()
		WHERE id = $3 AND status = $4
	`
	res, err := r.db.ExecContext(ctx, query, models.CreditTokenUsed, grantID, tokenID, models.CreditTokenUnused)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Mint(ctx context.Context, buyerID string, count int, expiresAt *time.Time, purchaseRef string) ([]string, error) {
	query := `
		INSERT INTO credit_tokens (buyer_id, status, expires_at, purchase_ref)
		SELECT $1, $2, $3, $4 FROM generate_series(1, $5)
		RETURNING id
	`
	rows, err := r.db.QueryContext(ctx, query, buyerID, models.CreditTokenUnused, expiresAt, purchaseRef, count)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return ids, nil
}
