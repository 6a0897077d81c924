package ports

import (
	"context"

	"github.com/cadastrahub/registry-api/internal/core/domain"
)

// LotFilter narrows a lot listing. Zero values mean "no filter".
type LotFilter struct {
	AccountID int64
	Type      domain.MaterialType
	Subtype   string
}

// LotRepository defines persistence operations for material lots.
// The *Owned variants add an account_id predicate so a lot of another
// account is indistinguishable from a missing one.
type LotRepository interface {
	Insert(ctx context.Context, lot *domain.MaterialLot) (*domain.MaterialLot, error)
	FindByID(ctx context.Context, id int64) (*domain.MaterialLot, error)
	FindOwned(ctx context.Context, id, accountID int64) (*domain.MaterialLot, error)
	List(ctx context.Context, filter LotFilter) ([]*domain.MaterialLot, error)
	Update(ctx context.Context, lot *domain.MaterialLot) (*domain.MaterialLot, error)
	Delete(ctx context.Context, id int64) error
	DeleteOwned(ctx context.Context, id, accountID int64) error
}
