// Package payments provides the PostgreSQL-backed payment and credit-package
// store.
package payments

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

const paymentColumns = `id, order_ref, buyer_id, package_id, amount_cents, currency, status, method, gateway_status, created_at, updated_at`

func (r *PostgresRepository) CreatePending(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	query := `
		INSERT INTO payments (order_ref, buyer_id, package_id, amount_cents, currency)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, status, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		payment.OrderRef, payment.BuyerID, payment.PackageID, payment.AmountCents, payment.Currency).
		Scan(&payment.ID, &payment.Status, &payment.CreatedAt, &payment.UpdatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return payment, nil
}

func (r *PostgresRepository) GetByOrderRef(ctx context.Context, orderRef string) (*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE order_ref = $1`
	payment := &models.Payment{}
	err := r.db.QueryRowContext(ctx, query, orderRef).Scan(
		&payment.ID, &payment.OrderRef, &payment.BuyerID, &payment.PackageID,
		&payment.AmountCents, &payment.Currency, &payment.Status, &payment.Method,
		&payment.GatewayStatus, &payment.CreatedAt, &payment.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return payment, nil
}

func (r *PostgresRepository) MarkStatus(ctx context.Context, orderRef, status, method string, gatewayStatus int) error {
	query := `
		UPDATE payments
		SET status = $1, method = $2, gateway_status = $3, updated_at = now()
		WHERE order_ref = $4 AND status = $5
	`
	res, err := r.db.ExecContext(ctx, query, status, method, gatewayStatus, orderRef, models.PaymentPending)
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

func (r *PostgresRepository) ListByBuyer(ctx context.Context, buyerID string) ([]*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE buyer_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, buyerID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*models.Payment
	for rows.Next() {
		payment := &models.Payment{}
		if err := rows.Scan(&payment.ID, &payment.OrderRef, &payment.BuyerID, &payment.PackageID,
			&payment.AmountCents, &payment.Currency, &payment.Status, &payment.Method,
			&payment.GatewayStatus, &payment.CreatedAt, &payment.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, payment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) ListPackages(ctx context.Context) ([]*models.CreditPackage, error) {
	query := `
		SELECT id, name, price_cents, token_count, validity_days
		FROM credit_packages
		ORDER BY price_cents ASC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*models.CreditPackage
	for rows.Next() {
		pkg := &models.CreditPackage{}
		if err := rows.Scan(&pkg.ID, &pkg.Name, &pkg.PriceCents, &pkg.TokenCount, &pkg.ValidityDays); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, pkg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) GetPackage(ctx context.Context, id string) (*models.CreditPackage, error) {
	query := `
		SELECT id, name, price_cents, token_count, validity_days
		FROM credit_packages
		WHERE id = $1
	`
	pkg := &models.CreditPackage{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&pkg.ID, &pkg.Name, &pkg.PriceCents, &pkg.TokenCount, &pkg.ValidityDays)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return pkg, nil
}
