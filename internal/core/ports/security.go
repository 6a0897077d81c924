package ports

import (
	"context"
	"time"

	"github.com/cadastrahub/registry-api/internal/core/domain"
)

// PasswordHasher produces and checks one-way password digests.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// TokenManager issues and verifies signed session tokens.
// Verify returns domain.ErrUnauthenticated for every kind of failure.
type TokenManager interface {
	Issue(principal domain.Principal) (token string, expiresAt time.Time, err error)
	Verify(token string) (domain.Principal, error)
}

// RoleResolver returns the role an account holds right now, ignoring whatever
// a token claims. It returns domain.ErrAccountNotFound when the account is gone.
type RoleResolver interface {
	ResolveEffectiveRole(ctx context.Context, accountID int64) (domain.Role, error)
}

// RoleInvalidator drops any cached role of an account after it changes.
type RoleInvalidator interface {
	Invalidate(ctx context.Context, accountID int64)
}
