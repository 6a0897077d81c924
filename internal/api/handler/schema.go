package handler

import (
	"time"

	"github.com/shopspring/decimal"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// --- Request types ---

type lotRequest struct {
	Type         string           `json:"type"`
	Subtype      *string          `json:"subtype"`
	QuantityTons *decimal.Decimal `json:"quantityTons"`
}

// registerRequest has no role field: a role sent by the client is ignored.
type registerRequest struct {
	Name     string       `json:"name"`
	Email    string       `json:"email"`
	Password string       `json:"password"`
	CpfCnpj  string       `json:"cpfCnpj"`
	Phone    string       `json:"phone"`
	Address  string       `json:"address"`
	Category string       `json:"category"`
	Lots     []lotRequest `json:"lots" validate:"max=500"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type profileRequest struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

type adminUpdateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
	CpfCnpj  *string `json:"cpfCnpj"`
	Category *string `json:"category"`
	Role     *string `json:"role"`
}

type batchLotsRequest struct {
	Lots []lotRequest `json:"lots" validate:"required,min=1,max=500"`
}

type adminCreateLotRequest struct {
	AccountID    int64            `json:"accountId" validate:"required,gt=0"`
	Type         string           `json:"type"`
	Subtype      *string          `json:"subtype"`
	QuantityTons *decimal.Decimal `json:"quantityTons"`
}

type listUsersQuery struct {
	Page     int    `query:"page"     json:"page"     validate:"omitempty,min=1"`
	Limit    int    `query:"limit"    json:"limit"    validate:"omitempty,min=1"`
	Search   string `query:"search"   json:"search"   validate:"omitempty,max=100"`
	Category string `query:"category" json:"category" validate:"omitempty,oneof=customer supplier"`
	Role     string `query:"role"     json:"role"     validate:"omitempty,oneof=USER ADMIN"`
}

type listLotsQuery struct {
	Type      string `query:"type"      json:"type"`
	Subtype   string `query:"subtype"   json:"subtype"`
	AccountID int64  `query:"accountId" json:"accountId" validate:"omitempty,gt=0"`
}

// --- Response types ---
// These are intentionally separate from domain types so the JSON contract
// is not coupled to internal changes.

type userResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CpfCnpj   string    `json:"cpfCnpj"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	Category  string    `json:"category"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type lotResponse struct {
	ID           int64           `json:"id"`
	Type         string          `json:"type"`
	Subtype      *string         `json:"subtype"`
	QuantityTons decimal.Decimal `json:"quantityTons"`
	AccountID    int64           `json:"accountId"`
	CreatedAt    time.Time       `json:"createdAt"`
}

type lotResultResponse struct {
	Index int          `json:"index"`
	Lot   *lotResponse `json:"lot,omitempty"`
	Error string       `json:"error,omitempty"`
	Field string       `json:"field,omitempty"`
}

type userEnvelope struct {
	User userResponse `json:"user"`
}

type registerResponse struct {
	User userResponse        `json:"user"`
	Lots []lotResultResponse `json:"lots,omitempty"`
}

type loginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      userResponse `json:"user"`
}

type lotListResponse struct {
	Data []lotResponse `json:"data"`
}

type batchLotsResponse struct {
	Results []lotResultResponse `json:"results"`
	Created int                 `json:"created"`
	Failed  int                 `json:"failed"`
}

type pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

type userPageResponse struct {
	Data       []userResponse `json:"data"`
	Pagination pagination     `json:"pagination"`
}
