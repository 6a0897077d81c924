package auth

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/cadastrahub/registry-api/internal/core/domain"
)

func TestPasswordHasher_Bcrypt_RoundTrip(t *testing.T) {
	h := NewPasswordHasher(AlgoBcrypt, bcrypt.MinCost)

	digest, err := h.Hash("secret1")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if digest == "secret1" {
		t.Fatalf("digest equals plaintext")
	}
	if !h.Verify("secret1", digest) {
		t.Fatalf("expected digest to verify")
	}
	if h.Verify("secret2", digest) {
		t.Fatalf("wrong password verified")
	}
}

func TestPasswordHasher_SaltsEveryDigest(t *testing.T) {
	h := NewPasswordHasher(AlgoBcrypt, bcrypt.MinCost)

	a, _ := h.Hash("same")
	b, _ := h.Hash("same")
	if a == b {
		t.Fatalf("expected different digests for the same plaintext")
	}
}

func TestPasswordHasher_Argon2id_RoundTrip(t *testing.T) {
	h := NewPasswordHasher(AlgoArgon2id, 0)

	digest, err := h.Hash("secret1")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if !strings.HasPrefix(digest, "$argon2id$v=19$m=65536,t=3,p=1$") {
		t.Fatalf("unexpected digest format: %s", digest)
	}
	if !h.Verify("secret1", digest) {
		t.Fatalf("expected digest to verify")
	}
	if h.Verify("secret2", digest) {
		t.Fatalf("wrong password verified")
	}
}

func TestPasswordHasher_VerifiesEitherAlgorithm(t *testing.T) {
	bc := NewPasswordHasher(AlgoBcrypt, bcrypt.MinCost)
	ar := NewPasswordHasher(AlgoArgon2id, 0)

	bcDigest, _ := bc.Hash("pw")
	arDigest, _ := ar.Hash("pw")

	if !ar.Verify("pw", bcDigest) {
		t.Fatalf("argon2id hasher must still verify bcrypt digests")
	}
	if !bc.Verify("pw", arDigest) {
		t.Fatalf("bcrypt hasher must still verify argon2id digests")
	}
}

func TestPasswordHasher_RejectsLongAndEmpty(t *testing.T) {
	h := NewPasswordHasher(AlgoBcrypt, bcrypt.MinCost)

	var verr *domain.ValidationError
	if _, err := h.Hash(strings.Repeat("a", MaxPasswordBytes+1)); !errors.As(err, &verr) || verr.Field != "password" {
		t.Fatalf("expected password ValidationError, got %v", err)
	}
	if _, err := h.Hash(""); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if _, err := h.Hash(strings.Repeat("a", MaxPasswordBytes)); err != nil {
		t.Fatalf("72 bytes must be accepted: %v", err)
	}
}

func TestPasswordHasher_MalformedDigest(t *testing.T) {
	h := NewPasswordHasher(AlgoBcrypt, bcrypt.MinCost)

	for _, digest := range []string{"", "plain", "$argon2id$v=19$garbage", "$argon2id$v=18$m=1,t=1,p=1$AAAA$AAAA"} {
		if h.Verify("pw", digest) {
			t.Fatalf("digest %q must not verify", digest)
		}
	}
}

func TestNewPasswordHasher_ClampsCost(t *testing.T) {
	if h := NewPasswordHasher(AlgoBcrypt, 1); h.cost != bcrypt.MinCost {
		t.Fatalf("expected cost clamped to %d, got %d", bcrypt.MinCost, h.cost)
	}
	if h := NewPasswordHasher(AlgoBcrypt, 99); h.cost != bcrypt.MaxCost {
		t.Fatalf("expected cost clamped to %d, got %d", bcrypt.MaxCost, h.cost)
	}
	if h := NewPasswordHasher("md5", 0); h.algo != AlgoBcrypt || h.cost != 12 {
		t.Fatalf("unexpected defaults: %+v", h)
	}
}
