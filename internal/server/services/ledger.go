package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/anypart/marketplace/internal/server/config"
	"github.com/anypart/marketplace/internal/server/models"
	"github.com/anypart/marketplace/internal/server/repositories/repomanager"
)

// LedgerService answers balance queries over the credit-token ledger and
// mints tokens outside the purchase flow (admin top-ups). Purchase-driven
// minting lives in PaymentService because it must commit atomically with
// the payment status flip.
type LedgerService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	enforceExpiry bool
}

func NewLedgerService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *LedgerService {
	return &LedgerService{
		db:            db,
		repomanager:   m,
		enforceExpiry: cfg.EnforceCreditExpiry,
	}
}

// AvailableCredits returns the number of tokens the buyer can still spend.
func (s *LedgerService) AvailableCredits(ctx context.Context, buyerID string) (int, error) {
	repo := s.repomanager.CreditTokens(s.db)
	n, err := repo.CountUnused(ctx, buyerID, s.enforceExpiry, time.Now())
	if err != nil {
		return 0, fmt.Errorf("error counting credits: %w", err)
	}
	return n, nil
}

// ListGrants returns the buyer's unlock history, newest first. Each grant
// records which token paid for which product.
func (s *LedgerService) ListGrants(ctx context.Context, buyerID string) ([]*models.Grant, error) {
	items, err := s.repomanager.Grants(s.db).ListByBuyer(ctx, buyerID)
	if err != nil {
		return nil, fmt.Errorf("error listing grants: %w", err)
	}
	return items, nil
}

// MintTokens creates count fresh tokens for the buyer. validityDays <= 0
// means the tokens never expire. purchaseRef ties the tokens back to their
// origin (an order reference or an admin note).
func (s *LedgerService) MintTokens(ctx context.Context, buyerID string, count, validityDays int, purchaseRef string) ([]string, error) {
	var expiresAt *time.Time
	if validityDays > 0 {
		t := time.Now().AddDate(0, 0, validityDays)
		expiresAt = &t
	}
	repo := s.repomanager.CreditTokens(s.db)
	ids, err := repo.Mint(ctx, buyerID, count, expiresAt, purchaseRef)
	if err != nil {
		return nil, fmt.Errorf("error minting tokens: %w", err)
	}
	return ids, nil
}
