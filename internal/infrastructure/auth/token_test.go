package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/cadastrahub/registry-api/internal/core/domain"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestManager(t *testing.T) *TokenManager {
	t.Helper()
	m, err := NewTokenManager(testSecret, "cadastrahub", 4*time.Hour, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}
	return m
}

func TestTokenManager_IssueVerify(t *testing.T) {
	m := newTestManager(t)
	p := domain.Principal{ID: 42, Email: "a@x.com", Role: domain.RoleUser}

	token, exp, err := m.Issue(p)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if time.Until(exp) <= 3*time.Hour {
		t.Fatalf("unexpected expiry: %v", exp)
	}

	got, err := m.Verify(token)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if got != p {
		t.Fatalf("expected %+v, got %+v", p, got)
	}
}

func TestTokenManager_TwoIssuancesAreIndependent(t *testing.T) {
	m := newTestManager(t)
	p := domain.Principal{ID: 1, Email: "a@x.com", Role: domain.RoleUser}

	first, _, _ := m.Issue(p)
	second, _, _ := m.Issue(p)
	if first == second {
		t.Fatalf("expected distinct tokens")
	}
	if _, err := m.Verify(first); err != nil {
		t.Fatalf("first token: %v", err)
	}
	if _, err := m.Verify(second); err != nil {
		t.Fatalf("second token: %v", err)
	}
}

func TestTokenManager_Expired(t *testing.T) {
	m := newTestManager(t)
	m.now = func() time.Time { return time.Now().Add(-5 * time.Hour) }
	token, _, err := m.Issue(domain.Principal{ID: 1, Role: domain.RoleUser})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	m.now = time.Now
	if _, err := m.Verify(token); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestTokenManager_RejectsTampering(t *testing.T) {
	m := newTestManager(t)
	token, _, _ := m.Issue(domain.Principal{ID: 1, Role: domain.RoleUser})

	other, _ := NewTokenManager(strings.Repeat("z", 32), "cadastrahub", time.Hour, zerolog.Nop())
	forged, _, _ := other.Issue(domain.Principal{ID: 1, Role: domain.RoleAdmin})

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "1", Issuer: "cadastrahub"},
	})
	noExpSigned, _ := noExp.SignedString([]byte(testSecret))

	badSubject := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "abc",
			Issuer:    "cadastrahub",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	badSubjectSigned, _ := badSubject.SignedString([]byte(testSecret))

	hs512 := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			Issuer:    "cadastrahub",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	hs512Signed, _ := hs512.SignedString([]byte(testSecret))

	cases := map[string]string{
		"garbage":        "not-a-token",
		"truncated":      token[:len(token)-4],
		"foreign secret": forged,
		"no expiry":      noExpSigned,
		"bad subject":    badSubjectSigned,
		"wrong alg":      hs512Signed,
		"empty":          "",
	}
	for name, tok := range cases {
		if _, err := m.Verify(tok); !errors.Is(err, domain.ErrUnauthenticated) {
			t.Fatalf("%s: expected ErrUnauthenticated, got %v", name, err)
		}
	}
}

func TestNewTokenManager_RejectsShortSecret(t *testing.T) {
	if _, err := NewTokenManager("short", "", time.Hour, zerolog.Nop()); err == nil {
		t.Fatalf("expected error for short secret")
	}
}
