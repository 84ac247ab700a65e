package models

import "time"

// Admin is a back-office account authenticated with JWT access tokens.
type Admin struct {
	ID           string
	UserName     string
	PasswordHash string
	CreatedAt    time.Time
}
