package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/anypart/marketplace/internal/common"
)

func TestGenerateAndParse_Success(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret")
	adminID := "admin-123"

	tok, err := GenerateToken(adminID, secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	gotAdminID, err := GetAdminIDFromToken(tok, secret)
	if err != nil {
		t.Fatalf("GetAdminIDFromToken error: %v", err)
	}
	if gotAdminID != adminID {
		t.Fatalf("adminID mismatch: got %q want %q", gotAdminID, adminID)
	}
}

func TestGetAdminIDFromToken_Expired(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")

	tok, err := GenerateToken("a1", secret, -1*time.Second)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	_, err = GetAdminIDFromToken(tok, secret)
	if err == nil {
		t.Fatalf("expected error for expired token, got nil")
	}
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected common.ErrInvalidToken, got %v", err)
	}
}

func TestGetAdminIDFromToken_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := GenerateToken("a2", []byte("right-secret"), time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	_, err = GetAdminIDFromToken(tok, []byte("wrong-secret"))
	if err == nil {
		t.Fatalf("expected error for invalid signature, got nil")
	}
}

func TestGetAdminIDFromToken_MalformedString(t *testing.T) {
	t.Parallel()

	_, err := GetAdminIDFromToken("not.a.jwt", []byte("k"))
	if err == nil {
		t.Fatalf("expected error for malformed token, got nil")
	}
}
