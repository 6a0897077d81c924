package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/cadastrahub/registry-api/internal/core/domain"
	"github.com/cadastrahub/registry-api/internal/core/ports"
)

// quantity_tons is read back as text and parsed with shopspring/decimal so no
// precision is lost through float conversion.
const lotColumns = `id, type, subtype, quantity_tons::text, account_id, created_at`

// errQuantityOverflow backs up domain validation when a quantity does not
// fit quantity_tons.
var errQuantityOverflow = domain.NewValidationError("quantityTons", "does not fit NUMERIC(14,3)")

// LotRepository implements ports.LotRepository using PostgreSQL.
type LotRepository struct{ db *DB }

// NewLotRepository constructs a material-lot repository.
func NewLotRepository(db *DB) *LotRepository { return &LotRepository{db: db} }

// Insert stores a lot. A missing owner yields domain.ErrAccountNotFound.
func (r *LotRepository) Insert(ctx context.Context, l *domain.MaterialLot) (*domain.MaterialLot, error) {
	const q = `
INSERT INTO material_lots (type, subtype, quantity_tons, account_id)
VALUES ($1, $2, $3::numeric, $4)
RETURNING ` + lotColumns

	row := r.db.Pool.QueryRow(ctx, q, string(l.Type), l.Subtype, l.QuantityTons.String(), l.AccountID)
	created, err := scanLot(row)
	if err != nil {
		if foreignKeyViolation(err) {
			return nil, domain.ErrAccountNotFound
		}
		if numericOverflow(err) {
			return nil, errQuantityOverflow
		}
		return nil, fmt.Errorf("insert lot: %w", err)
	}
	return created, nil
}

func (r *LotRepository) FindByID(ctx context.Context, id int64) (*domain.MaterialLot, error) {
	return r.findOne(ctx, `SELECT `+lotColumns+` FROM material_lots WHERE id=$1`, id)
}

// FindOwned returns the lot only when it belongs to accountID.
func (r *LotRepository) FindOwned(ctx context.Context, id, accountID int64) (*domain.MaterialLot, error) {
	return r.findOne(ctx, `SELECT `+lotColumns+` FROM material_lots WHERE id=$1 AND account_id=$2`, id, accountID)
}

// List returns lots matching the filter, newest first.
func (r *LotRepository) List(ctx context.Context, f ports.LotFilter) ([]*domain.MaterialLot, error) {
	var (
		conds []string
		args  []any
	)
	if f.AccountID != 0 {
		args = append(args, f.AccountID)
		conds = append(conds, fmt.Sprintf("account_id=$%d", len(args)))
	}
	if f.Type != "" {
		args = append(args, string(f.Type))
		conds = append(conds, fmt.Sprintf("type=$%d", len(args)))
	}
	if f.Subtype != "" {
		args = append(args, f.Subtype)
		conds = append(conds, fmt.Sprintf("subtype=$%d", len(args)))
	}
	q := `SELECT ` + lotColumns + ` FROM material_lots`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY created_at DESC, id DESC"

	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list lots: %w", err)
	}
	defer rows.Close()

	lots := make([]*domain.MaterialLot, 0)
	for rows.Next() {
		l, err := scanLot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lot: %w", err)
		}
		lots = append(lots, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list lots: %w", err)
	}
	return lots, nil
}

// Update rewrites type, subtype and quantity. Ownership never changes.
func (r *LotRepository) Update(ctx context.Context, l *domain.MaterialLot) (*domain.MaterialLot, error) {
	const q = `
UPDATE material_lots
SET type=$2, subtype=$3, quantity_tons=$4::numeric
WHERE id=$1
RETURNING ` + lotColumns

	updated, err := scanLot(r.db.Pool.QueryRow(ctx, q, l.ID, string(l.Type), l.Subtype, l.QuantityTons.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLotNotFound
		}
		if numericOverflow(err) {
			return nil, errQuantityOverflow
		}
		return nil, fmt.Errorf("update lot: %w", err)
	}
	return updated, nil
}

func (r *LotRepository) Delete(ctx context.Context, id int64) error {
	return r.deleteWhere(ctx, `DELETE FROM material_lots WHERE id=$1`, id)
}

// DeleteOwned deletes the lot only when it belongs to accountID.
func (r *LotRepository) DeleteOwned(ctx context.Context, id, accountID int64) error {
	return r.deleteWhere(ctx, `DELETE FROM material_lots WHERE id=$1 AND account_id=$2`, id, accountID)
}

func (r *LotRepository) deleteWhere(ctx context.Context, q string, args ...any) error {
	tag, err := r.db.Pool.Exec(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("delete lot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLotNotFound
	}
	return nil
}

func (r *LotRepository) findOne(ctx context.Context, q string, args ...any) (*domain.MaterialLot, error) {
	l, err := scanLot(r.db.Pool.QueryRow(ctx, q, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLotNotFound
		}
		return nil, fmt.Errorf("find lot: %w", err)
	}
	return l, nil
}

func scanLot(row pgx.Row) (*domain.MaterialLot, error) {
	var (
		l        domain.MaterialLot
		typ      string
		quantity string
	)
	if err := row.Scan(&l.ID, &typ, &l.Subtype, &quantity, &l.AccountID, &l.CreatedAt); err != nil {
		return nil, err
	}
	q, err := decimal.NewFromString(quantity)
	if err != nil {
		return nil, fmt.Errorf("parse quantity %q: %w", quantity, err)
	}
	l.Type = domain.MaterialType(typ)
	l.QuantityTons = q
	return &l, nil
}
