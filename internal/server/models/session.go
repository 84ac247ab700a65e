package models

import "time"

// Principal kinds stored in the sessions table.
const (
	PrincipalBuyer  = "buyer"
	PrincipalSeller = "seller"
	PrincipalAdmin  = "admin"
)

// Session maps an opaque bearer token to a principal. Expired sessions are
// excluded lazily at lookup time rather than purged eagerly.
type Session struct {
	Token       string
	Kind        string
	PrincipalID string
	ExpiresAt   time.Time
	CreatedAt   time.Time
}
