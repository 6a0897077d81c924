package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/cadastrahub/registry-api/internal/api/handler"
	"github.com/cadastrahub/registry-api/internal/core/domain"
	"github.com/cadastrahub/registry-api/internal/core/ports"
	"github.com/cadastrahub/registry-api/internal/infrastructure/auth"
)

// --- stubs ---

type stubAuth struct{ ports.AuthService }

type stubAccounts struct {
	ports.AccountService
	listCalls int
}

func (s *stubAccounts) List(ctx context.Context, in ports.ListAccountsInput) (*ports.AccountPage, error) {
	s.listCalls++
	return &ports.AccountPage{Items: []*domain.Account{{ID: 1, Email: "a@example.com"}}, Total: 1, Page: 1, Limit: 20, TotalPages: 1}, nil
}

func (s *stubAccounts) GetProfile(ctx context.Context, p domain.Principal) (*domain.Account, error) {
	return &domain.Account{ID: p.ID, Email: p.Email, Role: domain.RoleUser}, nil
}

type stubLots struct {
	ports.LotService
	owner domain.Principal
}

func (s *stubLots) ListMine(ctx context.Context, owner domain.Principal) ([]*domain.MaterialLot, error) {
	s.owner = owner
	return nil, nil
}

func (s *stubLots) ListAll(ctx context.Context, in ports.ListLotsInput) ([]*domain.MaterialLot, error) {
	return []*domain.MaterialLot{{ID: 5, Type: domain.MaterialZinc, AccountID: 2}}, nil
}

func (s *stubLots) GetMine(ctx context.Context, owner domain.Principal, id int64) (*domain.MaterialLot, error) {
	return nil, domain.ErrLotNotFound
}

type roleTable map[int64]domain.Role

func (r roleTable) ResolveEffectiveRole(ctx context.Context, id int64) (domain.Role, error) {
	role, ok := r[id]
	if !ok {
		return "", domain.ErrAccountNotFound
	}
	return role, nil
}

// --- helpers ---

const routerSecret = "router-test-secret-0123456789abcdef"

type fixture struct {
	tokens   *auth.TokenManager
	accounts *stubAccounts
	lots     *stubLots
	deps     Dependencies
	e        *echo.Echo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	tokens, err := auth.NewTokenManager(routerSecret, "cadastrahub", time.Hour, zerolog.Nop())
	if err != nil {
		t.Fatalf("token manager: %v", err)
	}
	f := &fixture{tokens: tokens, accounts: &stubAccounts{}, lots: &stubLots{}}
	reg := prometheus.NewRegistry()
	f.deps = Dependencies{
		Auth:             stubAuth{},
		Accounts:         f.accounts,
		Lots:             f.lots,
		Tokens:           tokens,
		Roles:            roleTable{1: domain.RoleUser, 2: domain.RoleAdmin},
		BootstrapEnabled: true,
		Health:           map[string]handler.PingFunc{},
		Logger:           zerolog.Nop(),
		Registerer:       reg,
		Gatherer:         reg,
	}
	return f
}

func (f *fixture) token(t *testing.T, id int64, role domain.Role) string {
	t.Helper()
	tok, _, err := f.tokens.Issue(domain.Principal{ID: id, Email: "u@example.com", Role: role})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return tok
}

// do builds the router on first use, so tests may adjust deps beforehand.
// The router registers its HTTP metrics, so it is built once per registry.
func (f *fixture) do(method, path, token, body string) *httptest.ResponseRecorder {
	if f.e == nil {
		f.e = NewRouter(f.deps)
	}
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	return body
}

// --- tests ---

func TestRouter_UserGate(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/products", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
	if errorBody(t, rec).Error != "authentication required" {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}

	rec = f.do(http.MethodGet, "/products", f.token(t, 1, domain.RoleUser), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if f.lots.owner.ID != 1 {
		t.Fatalf("owner taken from token expected 1, got %d", f.lots.owner.ID)
	}
}

func TestRouter_ForeignLotIsNotFound(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/products/99", f.token(t, 1, domain.RoleUser), "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestRouter_AdminGateIgnoresClaimedRole(t *testing.T) {
	f := newFixture(t)

	// Account 1 is USER in the store even though the token says ADMIN.
	rec := f.do(http.MethodGet, "/admin/users", f.token(t, 1, domain.RoleAdmin), "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for stale admin claim, got %d", rec.Code)
	}
	if f.accounts.listCalls != 0 {
		t.Fatalf("handler must not run")
	}

	// Account 2 was promoted after its token was issued.
	rec = f.do(http.MethodGet, "/admin/users", f.token(t, 2, domain.RoleUser), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for resolved admin, got %d: %s", rec.Code, rec.Body.String())
	}
	if f.accounts.listCalls != 1 {
		t.Fatalf("expected list to run once, ran %d", f.accounts.listCalls)
	}
}

func TestRouter_AdminGateDeletedAccount(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/admin/products", f.token(t, 42, domain.RoleAdmin), "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRouter_ProductsAllRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	if rec := f.do(http.MethodGet, "/products/all", f.token(t, 1, domain.RoleUser), ""); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for user, got %d", rec.Code)
	}
	if rec := f.do(http.MethodGet, "/products/all", f.token(t, 2, domain.RoleAdmin), ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", rec.Code)
	}
}

func TestRouter_BootstrapDisabled(t *testing.T) {
	f := newFixture(t)
	f.deps.BootstrapEnabled = false
	rec := f.do(http.MethodPost, "/admin/register", "", `{"name":"root"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestRouter_BootstrapTokenRequired(t *testing.T) {
	f := newFixture(t)
	f.deps.BootstrapToken = "let-me-in"
	rec := f.do(http.MethodPost, "/admin/register", "", `{"name":"root"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRouter_Health(t *testing.T) {
	f := newFixture(t)
	f.deps.Health = map[string]handler.PingFunc{
		"postgres": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("dial tcp: refused") },
	}

	if rec := f.do(http.MethodGet, "/health", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("liveness expected 200, got %d", rec.Code)
	}

	rec := f.do(http.MethodGet, "/health/ready", "", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("readiness expected 503, got %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body["status"] != "degraded" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestRouter_Metrics(t *testing.T) {
	f := newFixture(t)
	_ = f.do(http.MethodGet, "/health", "", "")
	rec := f.do(http.MethodGet, "/metrics", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
