// Package auth implements the credential codec and the session token manager.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"

	"github.com/cadastrahub/registry-api/internal/core/domain"
)

// MaxPasswordBytes is the longest plaintext bcrypt can digest without truncation.
const MaxPasswordBytes = 72

const (
	AlgoBcrypt   = "bcrypt"
	AlgoArgon2id = "argon2id"
)

// Argon2id parameters (tuned for server-side hashing).
const (
	argonTime    uint32 = 3
	argonMemory  uint32 = 64 * 1024
	argonThreads uint8  = 1
	argonKeyLen  uint32 = 32
	argonSaltLen        = 16
)

const argonPrefix = "$argon2id$"

var errMalformedDigest = errors.New("malformed password digest")

// PasswordHasher hashes new passwords with the configured algorithm and
// verifies digests produced by any supported algorithm.
type PasswordHasher struct {
	algo string
	cost int
}

// NewPasswordHasher returns a hasher. Unknown algorithms fall back to bcrypt and
// the cost is clamped to the range bcrypt accepts.
func NewPasswordHasher(algo string, bcryptCost int) *PasswordHasher {
	if algo != AlgoArgon2id {
		algo = AlgoBcrypt
	}
	switch {
	case bcryptCost == 0:
		bcryptCost = 12
	case bcryptCost < bcrypt.MinCost:
		bcryptCost = bcrypt.MinCost
	case bcryptCost > bcrypt.MaxCost:
		bcryptCost = bcrypt.MaxCost
	}
	return &PasswordHasher{algo: algo, cost: bcryptCost}
}

// Hash returns a salted digest of plaintext.
func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", domain.NewValidationError("password", "is required")
	}
	if len(plaintext) > MaxPasswordBytes {
		return "", domain.NewValidationError("password", fmt.Sprintf("must be at most %d bytes", MaxPasswordBytes))
	}

	if h.algo == AlgoArgon2id {
		return hashArgon2id(plaintext)
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches digest. The algorithm is taken
// from the digest itself.
func (h *PasswordHasher) Verify(plaintext, digest string) bool {
	if len(plaintext) > MaxPasswordBytes {
		return false
	}
	if strings.HasPrefix(digest, argonPrefix) {
		ok, err := verifyArgon2id(plaintext, digest)
		return err == nil && ok
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

func hashArgon2id(plaintext string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("argon2id salt: %w", err)
	}
	key := argon2.IDKey([]byte(plaintext), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// verifyArgon2id parses a PHC string of the form
// $argon2id$v=19$m=65536,t=3,p=1$<salt>$<key>.
func verifyArgon2id(plaintext, digest string) (bool, error) {
	parts := strings.Split(digest, "$")
	if len(parts) != 6 {
		return false, errMalformedDigest
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false, errMalformedDigest
	}

	var memory, iterations uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &threads); err != nil {
		return false, errMalformedDigest
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, errMalformedDigest
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(expected) == 0 {
		return false, errMalformedDigest
	}

	got := argon2.IDKey([]byte(plaintext), salt, iterations, memory, threads, uint32(len(expected)))
	return subtle.ConstantTimeCompare(got, expected) == 1, nil
}
