package ports

import (
	"context"

	"github.com/cadastrahub/registry-api/internal/core/domain"
)

// ProfileInput holds the fields an owner may change on their own account.
// Nil pointers leave the stored value untouched.
type ProfileInput struct {
	Name    *string
	Email   *string
	Phone   *string
	Address *string
}

// AccountUpdateInput holds the fields an administrator may change.
// The password is not among them.
type AccountUpdateInput struct {
	ProfileInput
	TaxID    *string
	Category *string
	Role     *string
}

// ListAccountsInput carries the parameters of the admin listing.
type ListAccountsInput struct {
	Page     int // 1-based
	Limit    int // capped at 100 by the service
	Search   string
	Category string
	Role     string
}

// AccountPage is returned by List.
type AccountPage struct {
	Items      []*domain.Account
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// AccountService covers self-service profile management and account administration.
type AccountService interface {
	GetProfile(ctx context.Context, principal domain.Principal) (*domain.Account, error)
	UpdateProfile(ctx context.Context, principal domain.Principal, input ProfileInput) (*domain.Account, error)

	List(ctx context.Context, input ListAccountsInput) (*AccountPage, error)
	Get(ctx context.Context, id int64) (*domain.Account, error)
	Update(ctx context.Context, actor domain.Principal, id int64, input AccountUpdateInput) (*domain.Account, error)
	Delete(ctx context.Context, actor domain.Principal, id int64) error
}
