// Package cryptox provides password hashing for buyer/seller credentials
// using Argon2id with a per-password random salt.
package cryptox

import (
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/anypart/marketplace/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
	saltLen      = 16
)

// HashPassword derives an Argon2id hash of password with a random salt and
// returns it in "salt$hash" hex form, suitable for storage in a text column.
func HashPassword(password string) (string, error) {
	salt := common.GenerateRandByteArray(saltLen)
	hash := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	return hex.EncodeToString(salt) + "$" + hex.EncodeToString(hash), nil
}

// VerifyPassword reports whether candidate matches the stored "salt$hash"
// value. The comparison is constant-time.
func VerifyPassword(stored, candidate string) (bool, error) {
	parts := strings.SplitN(stored, "$", 2)
	if len(parts) != 2 {
		return false, fmt.Errorf("malformed password hash")
	}
	salt, err := hex.DecodeString(parts[0])
	if err != nil {
		return false, fmt.Errorf("malformed salt: %w", err)
	}
	hash, err := hex.DecodeString(parts[1])
	if err != nil {
		return false, fmt.Errorf("malformed hash: %w", err)
	}
	candidateHash := argon2.IDKey([]byte(candidate), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	return subtle.ConstantTimeCompare(hash, candidateHash) == 1, nil
}
