package ports

import (
	"context"

	"github.com/cadastrahub/registry-api/internal/core/domain"
)

// AccountFilter carries the query parameters for a page of accounts.
type AccountFilter struct {
	Offset   int
	Limit    int
	Search   string          // optional: partial match on name, email or tax id
	Category domain.Category // optional
	Role     domain.Role     // optional
}

// AccountRepository defines persistence operations for accounts.
// Lookups return domain.ErrAccountNotFound when no row matches. Writes that
// collide with a unique constraint return a *domain.ConflictError.
type AccountRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	FindByTaxID(ctx context.Context, taxID string) (*domain.Account, error)
	FindByPhone(ctx context.Context, phone string) (*domain.Account, error)
	Insert(ctx context.Context, account *domain.Account) (*domain.Account, error)
	Update(ctx context.Context, account *domain.Account) (*domain.Account, error)
	// Delete removes the account and, through the foreign key, every lot it owns.
	Delete(ctx context.Context, id int64) error
	ListPage(ctx context.Context, filter AccountFilter) ([]*domain.Account, int64, error)
}
