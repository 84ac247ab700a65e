package payhere

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/anypart/marketplace/internal/common"
)

func upper(s string) string {
	sum := md5.Sum([]byte(s))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{100000, "1000.00"},
		{199, "1.99"},
		{5, "0.05"},
		{0, "0.00"},
	}
	for _, tt := range tests {
		if got := FormatAmount(tt.cents); got != tt.want {
			t.Errorf("FormatAmount(%d) = %q, want %q", tt.cents, got, tt.want)
		}
	}
}

func TestCheckoutHash(t *testing.T) {
	s := NewSigner("1211149", "topsecret")

	want := upper("1211149" + "ORD-42" + "1000.00" + "LKR" + upper("topsecret"))
	got := s.CheckoutHash("ORD-42", "1000.00", "LKR")
	if got != want {
		t.Fatalf("CheckoutHash = %q, want %q", got, want)
	}
	if got != strings.ToUpper(got) {
		t.Fatalf("CheckoutHash not uppercase: %q", got)
	}
}

func TestVerifyNotify_Valid(t *testing.T) {
	s := NewSigner("1211149", "topsecret")

	sig := upper("1211149" + "ORD-42" + "1000.00" + "LKR" + "2" + upper("topsecret"))
	if err := s.VerifyNotify("1211149", "ORD-42", "1000.00", "LKR", StatusCodeSuccess, sig); err != nil {
		t.Fatalf("VerifyNotify error: %v", err)
	}
	// case-insensitive comparison of the supplied signature
	if err := s.VerifyNotify("1211149", "ORD-42", "1000.00", "LKR", StatusCodeSuccess, strings.ToLower(sig)); err != nil {
		t.Fatalf("VerifyNotify lowercase sig error: %v", err)
	}
}

func TestVerifyNotify_Tampered(t *testing.T) {
	s := NewSigner("1211149", "topsecret")

	sig := upper("1211149" + "ORD-42" + "1000.00" + "LKR" + "2" + upper("topsecret"))

	// changed amount invalidates the signature
	if err := s.VerifyNotify("1211149", "ORD-42", "9000.00", "LKR", StatusCodeSuccess, sig); !errors.Is(err, common.ErrInvalidSignature) {
		t.Fatalf("want ErrInvalidSignature for tampered amount, got %v", err)
	}
	// changed status code invalidates the signature
	if err := s.VerifyNotify("1211149", "ORD-42", "1000.00", "LKR", StatusCodeFailed, sig); !errors.Is(err, common.ErrInvalidSignature) {
		t.Fatalf("want ErrInvalidSignature for tampered status, got %v", err)
	}
	// wrong merchant id is rejected outright
	if err := s.VerifyNotify("999", "ORD-42", "1000.00", "LKR", StatusCodeSuccess, sig); !errors.Is(err, common.ErrInvalidSignature) {
		t.Fatalf("want ErrInvalidSignature for wrong merchant, got %v", err)
	}
}
