package ports

import (
	"context"

	"github.com/cadastrahub/registry-api/internal/core/domain"
)

// ListLotsInput carries the admin search filters. Empty strings and zero mean
// "no filter".
type ListLotsInput struct {
	Type      string
	Subtype   string
	AccountID int64
}

// LotService applies the ownership rules to material lots. Methods taking a
// principal as owner never accept an account id from the caller.
type LotService interface {
	ListMine(ctx context.Context, owner domain.Principal) ([]*domain.MaterialLot, error)
	GetMine(ctx context.Context, owner domain.Principal, id int64) (*domain.MaterialLot, error)
	Create(ctx context.Context, owner domain.Principal, input LotInput) (*domain.MaterialLot, error)
	CreateBatch(ctx context.Context, owner domain.Principal, inputs []LotInput) ([]domain.LotResult, error)
	DeleteMine(ctx context.Context, owner domain.Principal, id int64) error

	ListAll(ctx context.Context, input ListLotsInput) ([]*domain.MaterialLot, error)
	ListByAccount(ctx context.Context, accountID int64) ([]*domain.MaterialLot, error)
	Get(ctx context.Context, id int64) (*domain.MaterialLot, error)
	CreateFor(ctx context.Context, actor domain.Principal, accountID int64, input LotInput) (*domain.MaterialLot, error)
	Update(ctx context.Context, actor domain.Principal, id int64, input LotInput) (*domain.MaterialLot, error)
	Delete(ctx context.Context, actor domain.Principal, id int64) error
}
