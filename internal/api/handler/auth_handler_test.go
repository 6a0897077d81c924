package handler

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

	"github.com/cadastrahub/registry-api/internal/core/domain"
	"github.com/cadastrahub/registry-api/internal/core/ports"
)

type stubAuthService struct {
	registerFn      func(ctx context.Context, in ports.RegisterInput, meta ports.RequestMeta) (*ports.RegisterResult, error)
	registerAdminFn func(ctx context.Context, in ports.RegisterInput, meta ports.RequestMeta) (*domain.Account, error)
	loginFn         func(ctx context.Context, email, password string, meta ports.RequestMeta) (*ports.LoginResult, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput, meta ports.RequestMeta) (*ports.RegisterResult, error) {
	return s.registerFn(ctx, in, meta)
}

func (s *stubAuthService) RegisterAdmin(ctx context.Context, in ports.RegisterInput, meta ports.RequestMeta) (*domain.Account, error) {
	return s.registerAdminFn(ctx, in, meta)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string, meta ports.RequestMeta) (*ports.LoginResult, error) {
	return s.loginFn(ctx, email, password, meta)
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func TestAuthHandler_Register_Success(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput, meta ports.RequestMeta) (*ports.RegisterResult, error) {
			if in.Name != "Alice" || in.TaxID != "12345678901" || in.Category != "supplier" {
				t.Fatalf("unexpected input: %+v", in)
			}
			if len(in.Lots) != 2 || in.Lots[0].Type != "ALUMINUM" || in.Lots[0].QuantityTons == nil {
				t.Fatalf("unexpected lots: %+v", in.Lots)
			}
			subtype := "CABLE"
			return &ports.RegisterResult{
				Account: &domain.Account{ID: 7, Name: in.Name, Email: in.Email, TaxID: in.TaxID, Role: domain.RoleUser, Category: domain.CategorySupplier},
				Lots: []domain.LotResult{
					{Index: 0, Lot: &domain.MaterialLot{ID: 1, Type: domain.MaterialAluminum, Subtype: &subtype, AccountID: 7}},
					{Index: 1, Err: domain.NewValidationError("type", "is not a known material")},
				},
			}, nil
		},
	}
	handler := NewAuthHandler(stub)

	body := `{"name":"Alice","email":"alice@example.com","password":"pw","cpfCnpj":"12345678901",
		"category":"supplier","role":"ADMIN",
		"lots":[{"type":"ALUMINUM","subtype":"CABLE","quantityTons":"2.5"},{"type":"GOLD","quantityTons":1}]}`
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/register", body), rec)

	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	user, ok := resp["user"].(map[string]any)
	if !ok {
		t.Fatalf("expected user in response")
	}
	if user["role"] != "USER" || user["cpfCnpj"] != "12345678901" {
		t.Fatalf("unexpected user payload: %+v", user)
	}
	if _, leaked := user["password"]; leaked {
		t.Fatalf("password must not be rendered")
	}
	lots, ok := resp["lots"].([]any)
	if !ok || len(lots) != 2 {
		t.Fatalf("expected two lot results, got %+v", resp["lots"])
	}
	failed := lots[1].(map[string]any)
	if failed["field"] != "type" || failed["lot"] != nil {
		t.Fatalf("unexpected failed item: %+v", failed)
	}
}

func TestAuthHandler_Register_ErrorsArePropagated(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput, meta ports.RequestMeta) (*ports.RegisterResult, error) {
			return nil, domain.NewConflictError("email")
		},
	}
	handler := NewAuthHandler(stub)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/register", `{"name":"bob"}`), rec)

	err := handler.Register(c)
	var ce *domain.ConflictError
	if !errors.As(err, &ce) || ce.Field != "email" {
		t.Fatalf("expected email conflict, got %v", err)
	}
}

func TestAuthHandler_Register_MalformedBody(t *testing.T) {
	e := newEcho()
	handler := NewAuthHandler(&stubAuthService{})

	c := e.NewContext(jsonRequest(http.MethodPost, "/register", `{"name":`), httptest.NewRecorder())

	if err := handler.Register(c); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAuthHandler_Register_TooManyLots(t *testing.T) {
	e := newEcho()
	handler := NewAuthHandler(&stubAuthService{})

	lots := strings.TrimSuffix(strings.Repeat(`{"type":"LEAD","quantityTons":1},`, 501), ",")
	body := `{"name":"ana","email":"ana@x.com","password":"secret12","cpfCnpj":"11111111111","lots":[` + lots + `]}`
	c := e.NewContext(jsonRequest(http.MethodPost, "/register", body), httptest.NewRecorder())

	err := handler.Register(c)
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Field != "lots" {
		t.Fatalf("expected validation error on lots, got %v", err)
	}
}

func TestAuthHandler_RegisterAdmin(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerAdminFn: func(ctx context.Context, in ports.RegisterInput, meta ports.RequestMeta) (*domain.Account, error) {
			return &domain.Account{ID: 1, Email: in.Email, Role: domain.RoleAdmin}, nil
		},
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/admin/register", `{"email":"root@example.com"}`), rec)

	if err := NewAuthHandler(stub).RegisterAdmin(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated || !strings.Contains(rec.Body.String(), `"role":"ADMIN"`) {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := newEcho()
	expires := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string, meta ports.RequestMeta) (*ports.LoginResult, error) {
			if email != "alice@example.com" || password != "pw" {
				t.Fatalf("unexpected credentials %s %s", email, password)
			}
			return &ports.LoginResult{Token: "tok", ExpiresAt: expires, Account: &domain.Account{ID: 7, Email: email}}, nil
		},
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/login", `{"email":"alice@example.com","password":"pw"}`), rec)

	if err := NewAuthHandler(stub).Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Token != "tok" || !resp.ExpiresAt.Equal(expires) || resp.User.ID != 7 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string, meta ports.RequestMeta) (*ports.LoginResult, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	c := e.NewContext(jsonRequest(http.MethodPost, "/login", `{"email":"x@y.z","password":"bad"}`), httptest.NewRecorder())

	if err := NewAuthHandler(stub).Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}
