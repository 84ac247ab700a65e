package models

import "time"

// Grant records that a buyer may view a product's seller contact details.
// At most one grant exists per (buyer, product) pair; rows are immutable.
type Grant struct {
	ID            string
	BuyerID       string
	ProductID     string
	CreditTokenID string
	CreatedAt     time.Time
}
