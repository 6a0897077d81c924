package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/cadastrahub/registry-api/internal/core/domain"
	"github.com/cadastrahub/registry-api/internal/core/ports"
)

// LotService enforces the ownership rules over material lots.
type LotService struct {
	lots     ports.LotRepository
	accounts ports.AccountRepository
	audit    ports.AuditRecorder
	log      zerolog.Logger
}

func NewLotService(lots ports.LotRepository, accounts ports.AccountRepository, audit ports.AuditRecorder, log zerolog.Logger) *LotService {
	return &LotService{
		lots:     lots,
		accounts: accounts,
		audit:    recorderOrNop(audit),
		log:      log,
	}
}

// --- Owner-scoped operations ---

func (s *LotService) ListMine(ctx context.Context, owner domain.Principal) ([]*domain.MaterialLot, error) {
	lots, err := s.lots.List(ctx, ports.LotFilter{AccountID: owner.ID})
	if err != nil {
		return nil, fmt.Errorf("list lots: %w", err)
	}
	return lots, nil
}

// GetMine returns domain.ErrLotNotFound for lots of other accounts.
func (s *LotService) GetMine(ctx context.Context, owner domain.Principal, id int64) (*domain.MaterialLot, error) {
	return s.lots.FindOwned(ctx, id, owner.ID)
}

func (s *LotService) Create(ctx context.Context, owner domain.Principal, in ports.LotInput) (*domain.MaterialLot, error) {
	return s.insert(ctx, owner.ID, owner.ID, in)
}

// CreateBatch inserts each lot independently and reports one result per
// input, in order. A failing item does not stop the others.
func (s *LotService) CreateBatch(ctx context.Context, owner domain.Principal, inputs []ports.LotInput) ([]domain.LotResult, error) {
	if len(inputs) == 0 {
		return nil, domain.NewValidationError("lots", "must contain at least one lot")
	}

	results := make([]domain.LotResult, len(inputs))
	for i, in := range inputs {
		lot, err := s.insert(ctx, owner.ID, owner.ID, in)
		results[i] = domain.LotResult{Index: i, Lot: lot, Err: err}
		if err != nil {
			s.log.Debug().Err(err).Int("index", i).Int64("account_id", owner.ID).Msg("batch lot rejected")
		}
	}
	return results, nil
}

func (s *LotService) DeleteMine(ctx context.Context, owner domain.Principal, id int64) error {
	wctx, cancel := detach(ctx, defaultWriteTimeout)
	defer cancel()

	if err := s.lots.DeleteOwned(wctx, id, owner.ID); err != nil {
		return err
	}
	s.audit.Record(ctx, auditEvent(domain.AuditLotDeleted, owner.ID, owner.ID, owner.Email, "", lotDetail(id)))
	return nil
}

// --- Administrator operations ---

func (s *LotService) ListAll(ctx context.Context, in ports.ListLotsInput) ([]*domain.MaterialLot, error) {
	filter := ports.LotFilter{AccountID: in.AccountID, Subtype: trim(in.Subtype)}
	if in.Type != "" {
		t := domain.MaterialType(trim(in.Type))
		if !t.Valid() {
			return nil, domain.NewValidationError("type", "is not a known material")
		}
		filter.Type = t
	}

	lots, err := s.lots.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list lots: %w", err)
	}
	return lots, nil
}

// ListByAccount returns domain.ErrAccountNotFound for unknown accounts rather
// than an empty list.
func (s *LotService) ListByAccount(ctx context.Context, accountID int64) ([]*domain.MaterialLot, error) {
	if _, err := s.accounts.FindByID(ctx, accountID); err != nil {
		return nil, err
	}
	return s.ListAll(ctx, ports.ListLotsInput{AccountID: accountID})
}

func (s *LotService) Get(ctx context.Context, id int64) (*domain.MaterialLot, error) {
	return s.lots.FindByID(ctx, id)
}

func (s *LotService) CreateFor(ctx context.Context, actor domain.Principal, accountID int64, in ports.LotInput) (*domain.MaterialLot, error) {
	if accountID <= 0 {
		return nil, domain.NewValidationError("accountId", "is required")
	}
	return s.insert(ctx, actor.ID, accountID, in)
}

// Update corrects type, subtype and quantity in place. The owner is kept.
func (s *LotService) Update(ctx context.Context, actor domain.Principal, id int64, in ports.LotInput) (*domain.MaterialLot, error) {
	wctx, cancel := detach(ctx, defaultWriteTimeout)
	defer cancel()

	current, err := s.lots.FindByID(wctx, id)
	if err != nil {
		return nil, err
	}
	next, err := buildLot(in, current.AccountID)
	if err != nil {
		return nil, err
	}
	next.ID = current.ID

	updated, err := s.lots.Update(wctx, next)
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, auditEvent(domain.AuditLotUpdated, updated.AccountID, actor.ID, "", "", lotDetail(id)))
	return updated, nil
}

func (s *LotService) Delete(ctx context.Context, actor domain.Principal, id int64) error {
	wctx, cancel := detach(ctx, defaultWriteTimeout)
	defer cancel()

	current, err := s.lots.FindByID(wctx, id)
	if err != nil {
		return err
	}
	if err := s.lots.Delete(wctx, id); err != nil {
		return err
	}
	s.audit.Record(ctx, auditEvent(domain.AuditLotDeleted, current.AccountID, actor.ID, "", "", lotDetail(id)))
	return nil
}

func (s *LotService) insert(ctx context.Context, actorID, accountID int64, in ports.LotInput) (*domain.MaterialLot, error) {
	lot, err := buildLot(in, accountID)
	if err != nil {
		return nil, err
	}

	wctx, cancel := detach(ctx, defaultWriteTimeout)
	defer cancel()

	created, err := s.lots.Insert(wctx, lot)
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, auditEvent(domain.AuditLotCreated, accountID, actorID, "", "", lotDetail(created.ID)))
	return created, nil
}

func lotDetail(id int64) string {
	return fmt.Sprintf("lot %d", id)
}
