package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/anypart/marketplace/internal/common"
	"github.com/anypart/marketplace/internal/cryptox"
	"github.com/anypart/marketplace/internal/logging"
	"github.com/anypart/marketplace/internal/server/config"
	"github.com/anypart/marketplace/internal/server/models"
	"github.com/anypart/marketplace/internal/server/repositories/repomanager"
)

// sessionTokenBytes is the entropy of an opaque session token; the stored
// token string is twice as long (hex).
const sessionTokenBytes = 32

// SessionService handles buyer and seller registration, login, logout and
// the per-request token-to-principal resolution. Sessions are opaque random
// tokens stored server-side; the token travels in a cookie but this layer
// only ever sees the string.
type SessionService struct {
	db               *sql.DB
	repomanager      repomanager.RepositoryManager
	logger           logging.Logger
	validityDuration time.Duration
}

func NewSessionService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *SessionService {
	return &SessionService{
		db:               db,
		repomanager:      m,
		logger:           logger,
		validityDuration: cfg.SessionValidityDuration,
	}
}

// Resolve maps a session token to its principal. Absent, expired, or empty
// tokens all yield common.ErrUnauthenticated.
func (s *SessionService) Resolve(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, common.ErrUnauthenticated
	}
	repo := s.repomanager.Sessions(s.db)
	session, err := repo.FindActive(ctx, token, time.Now())
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthenticated
		}
		return nil, fmt.Errorf("error resolving session: %w", err)
	}
	return session, nil
}

// RegisterBuyer creates a buyer account. The password is stored as an
// Argon2id hash. A taken username or email yields common.ErrAlreadyExists.
func (s *SessionService) RegisterBuyer(ctx context.Context, buyer *models.Buyer, password string) (*models.Buyer, error) {
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}
	buyer.PasswordHash = hash
	created, err := s.repomanager.Buyers(s.db).Create(ctx, buyer)
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("error creating buyer: %w", err)
	}
	return created, nil
}

// RegisterSeller creates a seller account.
func (s *SessionService) RegisterSeller(ctx context.Context, seller *models.Seller, password string) (*models.Seller, error) {
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}
	seller.PasswordHash = hash
	created, err := s.repomanager.Sellers(s.db).Create(ctx, seller)
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("error creating seller: %w", err)
	}
	return created, nil
}

// LoginBuyer verifies credentials and opens a buyer session. Unknown logins
// and wrong passwords are indistinguishable: both yield
// common.ErrInvalidCredentials.
func (s *SessionService) LoginBuyer(ctx context.Context, userName, password string) (*models.Session, error) {
	buyer, err := s.repomanager.Buyers(s.db).GetByLogin(ctx, userName)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, common.ErrInternal
	}
	ok, err := cryptox.VerifyPassword(buyer.PasswordHash, password)
	if err != nil || !ok {
		return nil, common.ErrInvalidCredentials
	}
	return s.openSession(ctx, models.PrincipalBuyer, buyer.ID)
}

// LoginSeller verifies credentials and opens a seller session.
func (s *SessionService) LoginSeller(ctx context.Context, userName, password string) (*models.Session, error) {
	seller, err := s.repomanager.Sellers(s.db).GetByLogin(ctx, userName)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, common.ErrInternal
	}
	ok, err := cryptox.VerifyPassword(seller.PasswordHash, password)
	if err != nil || !ok {
		return nil, common.ErrInvalidCredentials
	}
	return s.openSession(ctx, models.PrincipalSeller, seller.ID)
}

// Logout drops the session. Logging out an unknown token is a no-op.
func (s *SessionService) Logout(ctx context.Context, token string) error {
	if err := s.repomanager.Sessions(s.db).Delete(ctx, token); err != nil {
		return fmt.Errorf("error deleting session: %w", err)
	}
	return nil
}

// PurgeExpired removes expired session rows. Meant to be run periodically.
func (s *SessionService) PurgeExpired(ctx context.Context) error {
	n, err := s.repomanager.Sessions(s.db).DeleteExpired(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("error purging sessions: %w", err)
	}
	if n > 0 {
		s.logger.Info(ctx, "purged expired sessions", "count", n)
	}
	return nil
}

func (s *SessionService) openSession(ctx context.Context, kind, principalID string) (*models.Session, error) {
	token, err := common.MakeRandHexString(sessionTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("error generating session token: %w", err)
	}
	session := &models.Session{
		Token:       token,
		Kind:        kind,
		PrincipalID: principalID,
		ExpiresAt:   time.Now().Add(s.validityDuration),
	}
	if err := s.repomanager.Sessions(s.db).Create(ctx, session); err != nil {
		return nil, fmt.Errorf("error creating session: %w", err)
	}
	return session, nil
}
