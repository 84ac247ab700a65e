package sessions

import (
	"context"
	"time"

	"github.com/anypart/marketplace/internal/server/models"
)

// Repository is the opaque-token session store. Lookups are lazy about
// expiry: an expired row is simply never returned.
type Repository interface {
	// Create inserts a session row.
	Create(ctx context.Context, session *models.Session) error

	// FindActive returns the session for token if it exists and has not
	// expired at now; otherwise common.ErrNotFound. Expired and absent
	// sessions are indistinguishable to callers.
	FindActive(ctx context.Context, token string, now time.Time) (*models.Session, error)

	// Delete removes a session by token. Deleting an absent token is not
	// an error.
	Delete(ctx context.Context, token string) error

	// DeleteExpired removes all sessions expired at now and reports how
	// many were deleted.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
