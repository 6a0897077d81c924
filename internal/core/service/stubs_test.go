package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cadastrahub/registry-api/internal/core/domain"
	"github.com/cadastrahub/registry-api/internal/core/ports"
)

// --- Account repository stub ---

// stubAccountRepo enforces the same unique constraints as the real table so
// late conflicts can be exercised.
type stubAccountRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*domain.Account
	lots   *stubLotRepo // cascade target, optional

	findErr  error
	findHook func() // runs before every Find*, used to simulate races
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{rows: make(map[int64]*domain.Account)}
}

func cloneAccount(a *domain.Account) *domain.Account {
	if a == nil {
		return nil
	}
	clone := *a
	return &clone
}

func (r *stubAccountRepo) find(match func(*domain.Account) bool) (*domain.Account, error) {
	if r.findHook != nil {
		r.findHook()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, a := range r.rows {
		if match(a) {
			return cloneAccount(a), nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAccountRepo) FindByID(_ context.Context, id int64) (*domain.Account, error) {
	return r.find(func(a *domain.Account) bool { return a.ID == id })
}

func (r *stubAccountRepo) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	return r.find(func(a *domain.Account) bool { return a.Email == email })
}

func (r *stubAccountRepo) FindByTaxID(_ context.Context, taxID string) (*domain.Account, error) {
	return r.find(func(a *domain.Account) bool { return a.TaxID == taxID })
}

func (r *stubAccountRepo) FindByPhone(_ context.Context, phone string) (*domain.Account, error) {
	return r.find(func(a *domain.Account) bool { return a.Phone != "" && a.Phone == phone })
}

func (r *stubAccountRepo) conflict(a *domain.Account) error {
	for _, other := range r.rows {
		if other.ID == a.ID {
			continue
		}
		switch {
		case other.Email == a.Email:
			return domain.NewConflictError("email")
		case other.TaxID == a.TaxID:
			return domain.NewConflictError("cpfCnpj")
		case a.Phone != "" && other.Phone == a.Phone:
			return domain.NewConflictError("phone")
		}
	}
	return nil
}

func (r *stubAccountRepo) Insert(_ context.Context, a *domain.Account) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.conflict(a); err != nil {
		return nil, err
	}
	r.nextID++
	stored := cloneAccount(a)
	stored.ID = r.nextID
	stored.CreatedAt = time.Now().UTC()
	stored.UpdatedAt = stored.CreatedAt
	r.rows[stored.ID] = stored
	return cloneAccount(stored), nil
}

func (r *stubAccountRepo) Update(_ context.Context, a *domain.Account) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[a.ID]; !ok {
		return nil, domain.ErrAccountNotFound
	}
	if err := r.conflict(a); err != nil {
		return nil, err
	}
	stored := cloneAccount(a)
	stored.UpdatedAt = time.Now().UTC()
	r.rows[a.ID] = stored
	return cloneAccount(stored), nil
}

func (r *stubAccountRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return domain.ErrAccountNotFound
	}
	delete(r.rows, id)
	if r.lots != nil {
		r.lots.cascade(id)
	}
	return nil
}

func (r *stubAccountRepo) ListPage(_ context.Context, f ports.AccountFilter) ([]*domain.Account, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*domain.Account
	for _, a := range r.rows {
		if f.Search != "" && !strings.Contains(a.Name, f.Search) && !strings.Contains(a.Email, f.Search) {
			continue
		}
		if f.Category != "" && a.Category != f.Category {
			continue
		}
		if f.Role != "" && a.Role != f.Role {
			continue
		}
		all = append(all, cloneAccount(a))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := int64(len(all))
	if f.Offset >= len(all) {
		return []*domain.Account{}, total, nil
	}
	end := f.Offset + f.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[f.Offset:end], total, nil
}

// --- Lot repository stub ---

type stubLotRepo struct {
	mu       sync.Mutex
	nextID   int64
	rows     map[int64]*domain.MaterialLot
	accounts *stubAccountRepo // FK target, optional
}

func newStubLotRepo() *stubLotRepo {
	return &stubLotRepo{rows: make(map[int64]*domain.MaterialLot)}
}

func cloneLot(l *domain.MaterialLot) *domain.MaterialLot {
	clone := *l
	return &clone
}

func (r *stubLotRepo) cascade(accountID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, l := range r.rows {
		if l.AccountID == accountID {
			delete(r.rows, id)
		}
	}
}

func (r *stubLotRepo) Insert(ctx context.Context, l *domain.MaterialLot) (*domain.MaterialLot, error) {
	if r.accounts != nil {
		if _, err := r.accounts.FindByID(ctx, l.AccountID); err != nil {
			return nil, domain.ErrAccountNotFound
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	stored := cloneLot(l)
	stored.ID = r.nextID
	stored.CreatedAt = time.Now().UTC()
	r.rows[stored.ID] = stored
	return cloneLot(stored), nil
}

func (r *stubLotRepo) FindByID(_ context.Context, id int64) (*domain.MaterialLot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.rows[id]; ok {
		return cloneLot(l), nil
	}
	return nil, domain.ErrLotNotFound
}

func (r *stubLotRepo) FindOwned(_ context.Context, id, accountID int64) (*domain.MaterialLot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.rows[id]; ok && l.AccountID == accountID {
		return cloneLot(l), nil
	}
	return nil, domain.ErrLotNotFound
}

func (r *stubLotRepo) List(_ context.Context, f ports.LotFilter) ([]*domain.MaterialLot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.MaterialLot{}
	for _, l := range r.rows {
		if f.AccountID != 0 && l.AccountID != f.AccountID {
			continue
		}
		if f.Type != "" && l.Type != f.Type {
			continue
		}
		if f.Subtype != "" && (l.Subtype == nil || *l.Subtype != f.Subtype) {
			continue
		}
		out = append(out, cloneLot(l))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *stubLotRepo) Update(_ context.Context, l *domain.MaterialLot) (*domain.MaterialLot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.rows[l.ID]
	if !ok {
		return nil, domain.ErrLotNotFound
	}
	cur.Type, cur.Subtype, cur.QuantityTons = l.Type, l.Subtype, l.QuantityTons
	return cloneLot(cur), nil
}

func (r *stubLotRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return domain.ErrLotNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *stubLotRepo) DeleteOwned(_ context.Context, id, accountID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.rows[id]; !ok || l.AccountID != accountID {
		return domain.ErrLotNotFound
	}
	delete(r.rows, id)
	return nil
}

// --- Collaborator stubs ---

// countingHasher is a fast reversible stand-in that counts verifications.
type countingHasher struct {
	mu       sync.Mutex
	verifies int
}

func (h *countingHasher) Hash(plaintext string) (string, error) { return "h:" + plaintext, nil }

func (h *countingHasher) Verify(plaintext, digest string) bool {
	h.mu.Lock()
	h.verifies++
	h.mu.Unlock()
	return digest == "h:"+plaintext
}

type recordingAudit struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

func (a *recordingAudit) Record(_ context.Context, e domain.AuditEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e)
}

func (a *recordingAudit) kinds() []domain.AuditKind {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.AuditKind, len(a.events))
	for i, e := range a.events {
		out[i] = e.Kind
	}
	return out
}

type recordingInvalidator struct {
	ids []int64
}

func (r *recordingInvalidator) Invalidate(_ context.Context, id int64) { r.ids = append(r.ids, id) }
