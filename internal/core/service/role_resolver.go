package service

import (
	"context"

	"github.com/cadastrahub/registry-api/internal/core/domain"
	"github.com/cadastrahub/registry-api/internal/core/ports"
)

// RepositoryRoleResolver reads the current role straight from the account
// store on every call.
type RepositoryRoleResolver struct {
	accounts ports.AccountRepository
}

func NewRepositoryRoleResolver(accounts ports.AccountRepository) *RepositoryRoleResolver {
	return &RepositoryRoleResolver{accounts: accounts}
}

func (r *RepositoryRoleResolver) ResolveEffectiveRole(ctx context.Context, accountID int64) (domain.Role, error) {
	account, err := r.accounts.FindByID(ctx, accountID)
	if err != nil {
		return "", err
	}
	return account.Role, nil
}
