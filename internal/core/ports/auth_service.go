package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cadastrahub/registry-api/internal/core/domain"
)

// LotInput is the DTO for one material lot coming from the transport layer.
type LotInput struct {
	Type         string
	Subtype      *string
	QuantityTons *decimal.Decimal
}

// RegisterInput carries everything a new account submits. A role is
// deliberately absent: the workflow decides it.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	TaxID    string
	Phone    string
	Address  string
	Category string
	Lots     []LotInput
}

// RegisterResult is returned by Register.
type RegisterResult struct {
	Account *domain.Account
	// Lots holds one entry per submitted lot, in submission order.
	Lots []domain.LotResult
}

// LoginResult is returned by a successful Login.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Account   *domain.Account
}

// RequestMeta describes the caller for audit purposes.
type RequestMeta struct {
	RemoteIP string
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput, meta RequestMeta) (*RegisterResult, error)
	RegisterAdmin(ctx context.Context, input RegisterInput, meta RequestMeta) (*domain.Account, error)
	Login(ctx context.Context, email, password string, meta RequestMeta) (*LoginResult, error)
}
