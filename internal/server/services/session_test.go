package services

import (
	"context"
	"testing"
	"time"

	"github.com/anypart/marketplace/internal/common"
	"github.com/anypart/marketplace/internal/cryptox"
	"github.com/anypart/marketplace/internal/server/config"
	"github.com/anypart/marketplace/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSessionService(t *testing.T, rm *fakeRepoManager) (*SessionService, func()) {
	t.Helper()
	db, _ := newSQLMockDB(t)
	cfg := &config.Config{SessionValidityDuration: time.Hour}
	return NewSessionService(db, rm, cfg, nopLogger{}), func() { db.Close() }
}

func TestRegisterAndLoginBuyer(t *testing.T) {
	rm := newFakeRepoManager()
	svc, closeDB := newSessionService(t, rm)
	defer closeDB()

	buyer, err := svc.RegisterBuyer(context.Background(), &models.Buyer{UserName: "kasun"}, "pa55word")
	require.NoError(t, err)
	assert.NotEmpty(t, buyer.PasswordHash)
	assert.NotContains(t, buyer.PasswordHash, "pa55word", "password must not be stored in the clear")

	rm.buyers.getOut = buyer
	session, err := svc.LoginBuyer(context.Background(), "kasun", "pa55word")
	require.NoError(t, err)
	assert.Equal(t, models.PrincipalBuyer, session.Kind)
	assert.Len(t, session.Token, 2*sessionTokenBytes)
	assert.True(t, session.ExpiresAt.After(time.Now()))
	assert.Same(t, session, rm.sessions.created)
}

func TestLoginBuyer_WrongPassword(t *testing.T) {
	rm := newFakeRepoManager()
	hash, err := cryptox.HashPassword("correct")
	require.NoError(t, err)
	rm.buyers.getOut = &models.Buyer{ID: "b-1", UserName: "kasun", PasswordHash: hash}

	svc, closeDB := newSessionService(t, rm)
	defer closeDB()

	_, err = svc.LoginBuyer(context.Background(), "kasun", "wrong")
	require.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestLoginBuyer_UnknownUser(t *testing.T) {
	rm := newFakeRepoManager()
	rm.buyers.getErr = common.ErrNotFound

	svc, closeDB := newSessionService(t, rm)
	defer closeDB()

	_, err := svc.LoginBuyer(context.Background(), "ghost", "whatever")
	require.ErrorIs(t, err, common.ErrInvalidCredentials,
		"unknown user and wrong password must be indistinguishable")
}

func TestRegisterBuyer_TakenUsername(t *testing.T) {
	rm := newFakeRepoManager()
	rm.buyers.createErr = common.ErrAlreadyExists

	svc, closeDB := newSessionService(t, rm)
	defer closeDB()

	_, err := svc.RegisterBuyer(context.Background(), &models.Buyer{UserName: "kasun"}, "pw")
	require.ErrorIs(t, err, common.ErrAlreadyExists)
}

func TestLoginSeller(t *testing.T) {
	rm := newFakeRepoManager()
	hash, err := cryptox.HashPassword("sellerpw")
	require.NoError(t, err)
	rm.sellers.getOut = &models.Seller{ID: "s-1", UserName: "automart", PasswordHash: hash}

	svc, closeDB := newSessionService(t, rm)
	defer closeDB()

	session, err := svc.LoginSeller(context.Background(), "automart", "sellerpw")
	require.NoError(t, err)
	assert.Equal(t, models.PrincipalSeller, session.Kind)
	assert.Equal(t, "s-1", session.PrincipalID)
}

func TestResolve(t *testing.T) {
	rm := newFakeRepoManager()
	rm.sessions.findOut = &models.Session{Token: "tok", Kind: models.PrincipalBuyer, PrincipalID: "b-1"}

	svc, closeDB := newSessionService(t, rm)
	defer closeDB()

	session, err := svc.Resolve(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "b-1", session.PrincipalID)
}

func TestResolve_ExpiredOrMissing(t *testing.T) {
	rm := newFakeRepoManager()
	rm.sessions.findErr = common.ErrNotFound

	svc, closeDB := newSessionService(t, rm)
	defer closeDB()

	_, err := svc.Resolve(context.Background(), "stale")
	require.ErrorIs(t, err, common.ErrUnauthenticated)

	_, err = svc.Resolve(context.Background(), "")
	require.ErrorIs(t, err, common.ErrUnauthenticated)
}

func TestLogout(t *testing.T) {
	rm := newFakeRepoManager()
	svc, closeDB := newSessionService(t, rm)
	defer closeDB()

	require.NoError(t, svc.Logout(context.Background(), "tok"))
	assert.Equal(t, []string{"tok"}, rm.sessions.deleted)
}

func TestPurgeExpired(t *testing.T) {
	rm := newFakeRepoManager()
	rm.sessions.expiredOut = 4

	svc, closeDB := newSessionService(t, rm)
	defer closeDB()

	require.NoError(t, svc.PurgeExpired(context.Background()))
}
