package models

import "time"

// Seller is a merchant account offering products. Tel1/Tel2 and Address are
// the contact fields hidden behind the credit-unlock paywall.
type Seller struct {
	ID           string
	Name         string
	UserName     string
	PasswordHash string
	Tel1         string
	Tel2         string
	Address      string
	City         string
	LogoURL      string
	CreatedAt    time.Time
}
