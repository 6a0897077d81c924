package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/cadastrahub/registry-api/internal/core/domain"
	"github.com/cadastrahub/registry-api/internal/core/ports"
)

const (
	maxPasswordBytes    = 72
	defaultWriteTimeout = 10 * time.Second
)

var validate = validator.New()

// accountFields is the normalized form of the identifying fields of an account.
type accountFields struct {
	Name     string
	Email    string
	Password string
	TaxID    string
	Phone    string
	Address  string
	Category domain.Category
}

// normalizeRegistration validates a registration in a fixed order and
// returns the first failure: presence, tax id, phone, email shape, password.
func normalizeRegistration(in ports.RegisterInput) (accountFields, error) {
	f := accountFields{
		Name:     trim(in.Name),
		Email:    domain.NormalizeEmail(in.Email),
		Password: in.Password,
		TaxID:    domain.NormalizeTaxID(in.TaxID),
		Phone:    domain.NormalizePhone(in.Phone),
		Address:  trim(in.Address),
		Category: domain.Category(trim(in.Category)),
	}

	required := []struct{ field, value string }{
		{"name", f.Name},
		{"email", f.Email},
		{"password", f.Password},
		{"cpfCnpj", f.TaxID},
		{"category", string(f.Category)},
	}
	for _, r := range required {
		if validate.Var(r.value, "required") != nil {
			return f, domain.NewValidationError(r.field, "is required")
		}
	}
	if !f.Category.Valid() {
		return f, domain.NewValidationError("category", "must be customer or supplier")
	}

	if err := checkTaxID(f.TaxID); err != nil {
		return f, err
	}
	if err := checkPhone(f.Phone); err != nil {
		return f, err
	}
	if err := checkEmail(f.Email); err != nil {
		return f, err
	}
	if len(f.Password) > maxPasswordBytes {
		return f, domain.NewValidationError("password", fmt.Sprintf("must be at most %d bytes", maxPasswordBytes))
	}
	return f, nil
}

func checkTaxID(taxID string) error {
	if !domain.IsDigits(taxID) ||
		(len(taxID) != domain.TaxIDIndividualLen && len(taxID) != domain.TaxIDOrganizationLen) {
		return domain.NewValidationError("cpfCnpj", "must have 11 or 14 digits")
	}
	return nil
}

// checkPhone accepts an empty phone; the field is optional.
func checkPhone(phone string) error {
	if phone == "" {
		return nil
	}
	if !domain.IsDigits(phone) || len(phone) != domain.PhoneLen {
		return domain.NewValidationError("phone", "must have exactly 11 digits")
	}
	return nil
}

func checkEmail(email string) error {
	if validate.Var(email, "required,email") != nil {
		return domain.NewValidationError("email", "must be a valid email address")
	}
	return nil
}

// ensureUnique runs the uniqueness pre-checks in field order. Accounts whose
// id equals self are ignored so an update may keep its own values.
func ensureUnique(ctx context.Context, repo ports.AccountRepository, self int64, email, taxID, phone string) error {
	checks := []struct {
		field string
		value string
		find  func(context.Context, string) (*domain.Account, error)
	}{
		{"email", email, repo.FindByEmail},
		{"cpfCnpj", taxID, repo.FindByTaxID},
		{"phone", phone, repo.FindByPhone},
	}
	for _, c := range checks {
		if c.value == "" {
			continue
		}
		existing, err := c.find(ctx, c.value)
		switch {
		case err == nil:
			if existing.ID != self {
				return domain.NewConflictError(c.field)
			}
		case isNotFound(err):
		default:
			return fmt.Errorf("uniqueness check %s: %w", c.field, err)
		}
	}
	return nil
}

// buildLot validates a lot DTO against the material invariants.
func buildLot(in ports.LotInput, accountID int64) (*domain.MaterialLot, error) {
	if in.QuantityTons == nil {
		return nil, domain.NewValidationError("quantityTons", "is required")
	}
	lot := &domain.MaterialLot{
		Type:         domain.MaterialType(trim(in.Type)),
		Subtype:      in.Subtype,
		QuantityTons: *in.QuantityTons,
		AccountID:    accountID,
	}
	if err := lot.Validate(); err != nil {
		return nil, err
	}
	return lot, nil
}

// detach keeps a write running after the client goes away, bounded by its own
// timeout.
func detach(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = defaultWriteTimeout
	}
	return context.WithTimeout(context.WithoutCancel(ctx), timeout)
}
