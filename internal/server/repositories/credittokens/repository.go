package credittokens

import (
	"context"
	"time"

	"github.com/anypart/marketplace/internal/server/models"
)

// Repository is the credit-token ledger store. Tokens are never deleted:
// consumption is a status flip with a grant back-reference.
type Repository interface {
	// CountUnused returns the number of unused tokens for a buyer. When
	// enforceExpiry is set, tokens expired at now are excluded.
	CountUnused(ctx context.Context, buyerID string, enforceExpiry bool, now time.Time) (int, error)

	// SelectForConsume picks the next token to spend: soonest expiry first
	// (never-expiring tokens last), oldest first on ties. Returns
	// common.ErrNotFound when the buyer has no spendable token. Inside a
	// transaction the selected row is locked, skipping rows locked by
	// concurrent consumers.
	SelectForConsume(ctx context.Context, buyerID string, enforceExpiry bool, now time.Time) (*models.CreditToken, error)

	// MarkUsed flips an unused token to used and records the consuming
	// grant. Returns common.ErrNotFound if the token is missing or was
	// already consumed.
	MarkUsed(ctx context.Context, tokenID, grantID string) error

	// Mint creates count unused tokens for a buyer and returns their ids.
	Mint(ctx context.Context, buyerID string, count int, expiresAt *time.Time, purchaseRef string) ([]string, error)
}
