// Package models defines the database row structs shared by repositories
// and services.
package models

import "time"

// Buyer is a registered purchasing account. Buyers own credit tokens and
// unlock grants; they are never deleted.
type Buyer struct {
	ID           string
	FullName     string
	Email        string
	UserName     string
	PasswordHash string
	Tel          string
	City         string
	District     string
	Address      string
	Verified     bool
	CreatedAt    time.Time
}
