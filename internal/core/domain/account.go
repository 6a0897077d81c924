package domain

import (
	"strings"
	"time"
)

// Role is the privilege tier of an account.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Category classifies a counterparty.
type Category string

const (
	CategoryCustomer Category = "customer"
	CategorySupplier Category = "supplier"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	return c == CategoryCustomer || c == CategorySupplier
}

// Tax id lengths: CPF for individuals, CNPJ for organizations.
const (
	TaxIDIndividualLen   = 11
	TaxIDOrganizationLen = 14
	PhoneLen             = 11
)

// Account models one registered party.
type Account struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	TaxID        string    `json:"cpfCnpj"`
	Phone        string    `json:"phone,omitempty"`
	Address      string    `json:"address,omitempty"`
	Category     Category  `json:"category"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Redacted returns a copy of the account without credential material.
func (a *Account) Redacted() *Account {
	if a == nil {
		return nil
	}
	clone := *a
	clone.PasswordHash = ""
	return &clone
}

// IsAdmin reports whether the account holds the ADMIN role.
func (a *Account) IsAdmin() bool {
	return a != nil && a.Role == RoleAdmin
}

// NormalizeEmail lower-cases and trims an email so that uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeTaxID strips the punctuation commonly used when formatting CPF/CNPJ numbers.
func NormalizeTaxID(taxID string) string {
	return stripChars(taxID, ".-/ ")
}

// NormalizePhone strips formatting characters from a phone number.
func NormalizePhone(phone string) string {
	return stripChars(phone, "()-+ ")
}

// IsDigits reports whether s is non-empty and made only of ASCII digits.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func stripChars(s, cutset string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(cutset, r) {
			return -1
		}
		return r
	}, s)
}
