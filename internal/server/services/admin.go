package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/anypart/marketplace/internal/common"
	"github.com/anypart/marketplace/internal/cryptox"
	"github.com/anypart/marketplace/internal/server/auth"
	"github.com/anypart/marketplace/internal/server/config"
	"github.com/anypart/marketplace/internal/server/repositories/repomanager"
)

// AdminService authenticates back-office accounts. Unlike buyers and
// sellers, admins get short-lived HS256 access tokens instead of stored
// sessions.
type AdminService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
}

func NewAdminService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *AdminService {
	return &AdminService{
		db:                          db,
		repomanager:                 m,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
	}
}

// Login verifies admin credentials and returns a signed access token.
func (s *AdminService) Login(ctx context.Context, userName, password string) (string, error) {
	admin, err := s.repomanager.Admins(s.db).GetByLogin(ctx, userName)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", common.ErrInvalidCredentials
		}
		return "", common.ErrInternal
	}
	ok, err := cryptox.VerifyPassword(admin.PasswordHash, password)
	if err != nil || !ok {
		return "", common.ErrInvalidCredentials
	}
	return auth.GenerateToken(admin.ID, s.jwtSecret, s.accessTokenValidityDuration)
}

// Authenticate validates an access token and returns the admin id.
func (s *AdminService) Authenticate(tokenString string) (string, error) {
	adminID, err := auth.GetAdminIDFromToken(tokenString, s.jwtSecret)
	if err != nil {
		return "", common.ErrInvalidToken
	}
	return adminID, nil
}
