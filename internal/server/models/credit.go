package models

import "time"

// Credit token statuses. A token transitions Unused to Used exactly once and
// never reverts.
const (
	CreditTokenUnused = 0
	CreditTokenUsed   = 1
)

// CreditToken is a single-use unit entitling its buyer to one seller-contact
// unlock. Tokens are never deleted; consumption flips Status and sets
// GrantID inside the unlock transaction.
type CreditToken struct {
	ID          string
	BuyerID     string
	Status      int
	ExpiresAt   *time.Time
	PurchaseRef string
	GrantID     *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreditPackage is a purchasable bundle of credit tokens.
type CreditPackage struct {
	ID           string
	Name         string
	PriceCents   int64
	TokenCount   int
	ValidityDays int
}
