package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/cadastrahub/registry-api/internal/core/domain"
	"github.com/cadastrahub/registry-api/internal/core/ports"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// AccountService implements profile self-service and account administration.
type AccountService struct {
	accounts ports.AccountRepository
	roles    ports.RoleInvalidator
	audit    ports.AuditRecorder
	log      zerolog.Logger
}

// NewAccountService returns an AccountService. roles may be nil when no role
// cache is in use.
func NewAccountService(
	accounts ports.AccountRepository,
	roles ports.RoleInvalidator,
	audit ports.AuditRecorder,
	log zerolog.Logger,
) *AccountService {
	return &AccountService{
		accounts: accounts,
		roles:    roles,
		audit:    recorderOrNop(audit),
		log:      log,
	}
}

func (s *AccountService) GetProfile(ctx context.Context, principal domain.Principal) (*domain.Account, error) {
	return s.Get(ctx, principal.ID)
}

// UpdateProfile changes name, email, phone and address of the principal's
// own account. Role, tax id and category are left as stored.
func (s *AccountService) UpdateProfile(ctx context.Context, principal domain.Principal, in ports.ProfileInput) (*domain.Account, error) {
	return s.update(ctx, principal, principal.ID, ports.AccountUpdateInput{ProfileInput: in})
}

// List returns one page of accounts. Page is 1-based; limit defaults to 20 and
// is capped at 100.
func (s *AccountService) List(ctx context.Context, in ports.ListAccountsInput) (*ports.AccountPage, error) {
	page := in.Page
	if page < 1 {
		page = 1
	}
	limit := in.Limit
	switch {
	case limit <= 0:
		limit = defaultPageLimit
	case limit > maxPageLimit:
		limit = maxPageLimit
	}

	filter := ports.AccountFilter{
		Offset: (page - 1) * limit,
		Limit:  limit,
		Search: trim(in.Search),
	}
	if in.Category != "" {
		c := domain.Category(in.Category)
		if !c.Valid() {
			return nil, domain.NewValidationError("category", "must be customer or supplier")
		}
		filter.Category = c
	}
	if in.Role != "" {
		r := domain.Role(in.Role)
		if !r.Valid() {
			return nil, domain.NewValidationError("role", "must be USER or ADMIN")
		}
		filter.Role = r
	}

	items, total, err := s.accounts.ListPage(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	redacted := make([]*domain.Account, len(items))
	for i, a := range items {
		redacted[i] = a.Redacted()
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &ports.AccountPage{
		Items:      redacted,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

func (s *AccountService) Get(ctx context.Context, id int64) (*domain.Account, error) {
	account, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return account.Redacted(), nil
}

// Update applies an administrator's changes. Any field but the password may
// change, including the role.
func (s *AccountService) Update(ctx context.Context, actor domain.Principal, id int64, in ports.AccountUpdateInput) (*domain.Account, error) {
	return s.update(ctx, actor, id, in)
}

// Delete removes an account and, through the store, all of its lots.
func (s *AccountService) Delete(ctx context.Context, actor domain.Principal, id int64) error {
	wctx, cancel := detach(ctx, defaultWriteTimeout)
	defer cancel()

	if err := s.accounts.Delete(wctx, id); err != nil {
		return err
	}
	s.invalidate(wctx, id)
	s.audit.Record(ctx, auditEvent(domain.AuditAccountDeleted, id, actor.ID, "", "", ""))
	s.log.Info().Int64("account_id", id).Int64("actor_id", actor.ID).Msg("account deleted")
	return nil
}

func (s *AccountService) update(ctx context.Context, actor domain.Principal, id int64, in ports.AccountUpdateInput) (*domain.Account, error) {
	wctx, cancel := detach(ctx, defaultWriteTimeout)
	defer cancel()

	current, err := s.accounts.FindByID(wctx, id)
	if err != nil {
		return nil, err
	}
	next := *current

	if err := applyUpdate(&next, in); err != nil {
		return nil, err
	}

	email, taxID, phone := "", "", ""
	if next.Email != current.Email {
		email = next.Email
	}
	if next.TaxID != current.TaxID {
		taxID = next.TaxID
	}
	if next.Phone != current.Phone {
		phone = next.Phone
	}
	if err := ensureUnique(wctx, s.accounts, id, email, taxID, phone); err != nil {
		return nil, err
	}

	updated, err := s.accounts.Update(wctx, &next)
	if err != nil {
		return nil, err
	}

	if updated.Role != current.Role {
		s.invalidate(wctx, id)
		s.log.Warn().Int64("account_id", id).Int64("actor_id", actor.ID).
			Str("from", string(current.Role)).Str("to", string(updated.Role)).Msg("account role changed")
	}
	s.audit.Record(ctx, auditEvent(domain.AuditAccountUpdated, id, actor.ID, updated.Email, "", ""))
	return updated.Redacted(), nil
}

// applyUpdate validates and copies every non-nil field of in onto a.
func applyUpdate(a *domain.Account, in ports.AccountUpdateInput) error {
	if in.Name != nil {
		name := trim(*in.Name)
		if name == "" {
			return domain.NewValidationError("name", "is required")
		}
		a.Name = name
	}
	if in.Email != nil {
		email := domain.NormalizeEmail(*in.Email)
		if err := checkEmail(email); err != nil {
			return err
		}
		a.Email = email
	}
	if in.Phone != nil {
		phone := domain.NormalizePhone(*in.Phone)
		if err := checkPhone(phone); err != nil {
			return err
		}
		a.Phone = phone
	}
	if in.Address != nil {
		a.Address = trim(*in.Address)
	}
	if in.TaxID != nil {
		taxID := domain.NormalizeTaxID(*in.TaxID)
		if err := checkTaxID(taxID); err != nil {
			return err
		}
		a.TaxID = taxID
	}
	if in.Category != nil {
		c := domain.Category(trim(*in.Category))
		if !c.Valid() {
			return domain.NewValidationError("category", "must be customer or supplier")
		}
		a.Category = c
	}
	if in.Role != nil {
		r := domain.Role(trim(*in.Role))
		if !r.Valid() {
			return domain.NewValidationError("role", "must be USER or ADMIN")
		}
		a.Role = r
	}
	return nil
}

func (s *AccountService) invalidate(ctx context.Context, id int64) {
	if s.roles != nil {
		s.roles.Invalidate(ctx, id)
	}
}
