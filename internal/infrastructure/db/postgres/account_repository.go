package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/cadastrahub/registry-api/internal/core/domain"
	"github.com/cadastrahub/registry-api/internal/core/ports"
)

const accountColumns = `id, name, email, password_hash, tax_id, phone, address, category, role, created_at, updated_at`

// conflictFields maps unique constraint names to the request field they guard.
var conflictFields = map[string]string{
	"accounts_email_key":  "email",
	"accounts_tax_id_key": "cpfCnpj",
	"accounts_phone_key":  "phone",
}

// AccountRepository implements ports.AccountRepository using PostgreSQL.
type AccountRepository struct{ db *DB }

// NewAccountRepository constructs an account repository.
func NewAccountRepository(db *DB) *AccountRepository { return &AccountRepository{db: db} }

func (r *AccountRepository) FindByID(ctx context.Context, id int64) (*domain.Account, error) {
	return r.findOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id=$1`, id)
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email=$1`, email)
}

func (r *AccountRepository) FindByTaxID(ctx context.Context, taxID string) (*domain.Account, error) {
	return r.findOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE tax_id=$1`, taxID)
}

func (r *AccountRepository) FindByPhone(ctx context.Context, phone string) (*domain.Account, error) {
	return r.findOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE phone=$1`, phone)
}

// Insert stores a new account and returns it with the generated id and timestamps.
func (r *AccountRepository) Insert(ctx context.Context, a *domain.Account) (*domain.Account, error) {
	const q = `
INSERT INTO accounts (name, email, password_hash, tax_id, phone, address, category, role)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + accountColumns

	row := r.db.Pool.QueryRow(ctx, q,
		a.Name, a.Email, a.PasswordHash, a.TaxID, nullable(a.Phone), a.Address, string(a.Category), string(a.Role))
	created, err := scanAccount(row)
	if err != nil {
		return nil, translateAccountError("insert account", err)
	}
	return created, nil
}

// Update overwrites every mutable column. The password hash is not touched.
func (r *AccountRepository) Update(ctx context.Context, a *domain.Account) (*domain.Account, error) {
	const q = `
UPDATE accounts
SET name=$2, email=$3, tax_id=$4, phone=$5, address=$6, category=$7, role=$8, updated_at=now()
WHERE id=$1
RETURNING ` + accountColumns

	row := r.db.Pool.QueryRow(ctx, q,
		a.ID, a.Name, a.Email, a.TaxID, nullable(a.Phone), a.Address, string(a.Category), string(a.Role))
	updated, err := scanAccount(row)
	if err != nil {
		return nil, translateAccountError("update account", err)
	}
	return updated, nil
}

func (r *AccountRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM accounts WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// likeEscaper makes user input match literally inside an ILIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ListPage returns one page of accounts ordered by id and the total number of
// accounts matching the filter.
func (r *AccountRepository) ListPage(ctx context.Context, f ports.AccountFilter) ([]*domain.Account, int64, error) {
	var (
		conds []string
		args  []any
	)
	if f.Search != "" {
		args = append(args, "%"+likeEscaper.Replace(f.Search)+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			`(name ILIKE $%d ESCAPE '\' OR email ILIKE $%d ESCAPE '\' OR tax_id ILIKE $%d ESCAPE '\')`, n, n, n))
	}
	if f.Category != "" {
		args = append(args, string(f.Category))
		conds = append(conds, fmt.Sprintf("category=$%d", len(args)))
	}
	if f.Role != "" {
		args = append(args, string(f.Role))
		conds = append(conds, fmt.Sprintf("role=$%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	if err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM accounts`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count accounts: %w", err)
	}

	pageArgs := append(args, f.Limit, f.Offset)
	q := fmt.Sprintf(`SELECT %s FROM accounts%s ORDER BY id LIMIT $%d OFFSET $%d`,
		accountColumns, where, len(args)+1, len(args)+2)
	rows, err := r.db.Pool.Query(ctx, q, pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	items := make([]*domain.Account, 0, f.Limit)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan account: %w", err)
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list accounts: %w", err)
	}
	return items, total, nil
}

func (r *AccountRepository) findOne(ctx context.Context, q string, arg any) (*domain.Account, error) {
	a, err := scanAccount(r.db.Pool.QueryRow(ctx, q, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return a, nil
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		a        domain.Account
		phone    *string
		category string
		role     string
	)
	if err := row.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.TaxID, &phone, &a.Address,
		&category, &role, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	if phone != nil {
		a.Phone = *phone
	}
	a.Category = domain.Category(category)
	a.Role = domain.Role(role)
	return &a, nil
}

func translateAccountError(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrAccountNotFound
	}
	if constraint, ok := uniqueViolation(err); ok {
		field, known := conflictFields[constraint]
		if !known {
			field = "account"
		}
		return domain.NewConflictError(field)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// nullable maps the empty string to SQL NULL so optional unique columns do
// not collide on "".
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
