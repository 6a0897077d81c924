package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cadastrahub/registry-api/internal/core/domain"
)

// MinSecretBytes is the shortest HS256 signing secret accepted at startup.
const MinSecretBytes = 32

// Claims is the payload of a session token.
type Claims struct {
	jwt.RegisteredClaims
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

// TokenManager signs and verifies HS256 session tokens. The secret is fixed at
// construction.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	logger zerolog.Logger
	now    func() time.Time
}

func NewTokenManager(secret, issuer string, ttl time.Duration, logger zerolog.Logger) (*TokenManager, error) {
	if len(secret) < MinSecretBytes {
		return nil, fmt.Errorf("jwt secret must be at least %d bytes", MinSecretBytes)
	}
	if ttl <= 0 {
		return nil, errors.New("token ttl must be positive")
	}
	return &TokenManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Issue signs a new token for principal. Every token gets its own jti.
func (m *TokenManager) Issue(principal domain.Principal) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.ttl)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    m.issuer,
			Subject:   strconv.FormatInt(principal.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Email: principal.Email,
		Role:  principal.Role,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify returns the principal carried by token, or domain.ErrUnauthenticated.
// The underlying reason is only logged.
func (m *TokenManager) Verify(token string) (domain.Principal, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		m.logger.Debug().Str("reason", rejectReason(err)).Msg("session token rejected")
		return domain.Principal{}, domain.ErrUnauthenticated
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		m.logger.Debug().Str("reason", "subject").Msg("session token rejected")
		return domain.Principal{}, domain.ErrUnauthenticated
	}

	return domain.Principal{ID: id, Email: claims.Email, Role: claims.Role}, nil
}

func rejectReason(err error) string {
	switch {
	case err == nil:
		return "invalid"
	case errors.Is(err, jwt.ErrTokenExpired):
		return "expired"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "signature"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "malformed"
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return "issuer"
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return "missing claim"
	default:
		return err.Error()
	}
}
