package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaterialType is the closed set of recyclable materials a lot can report.
type MaterialType string

const (
	MaterialAluminum  MaterialType = "ALUMINUM"
	MaterialCopper    MaterialType = "COPPER"
	MaterialLead      MaterialType = "LEAD"
	MaterialMagnesium MaterialType = "MAGNESIUM"
	MaterialNickel    MaterialType = "NICKEL"
	MaterialStainless MaterialType = "STAINLESS"
	MaterialBrass     MaterialType = "BRASS"
	MaterialBronze    MaterialType = "BRONZE"
	MaterialZinc      MaterialType = "ZINC"
)

var materialTypes = map[MaterialType]struct{}{
	MaterialAluminum:  {},
	MaterialCopper:    {},
	MaterialLead:      {},
	MaterialMagnesium: {},
	MaterialNickel:    {},
	MaterialStainless: {},
	MaterialBrass:     {},
	MaterialBronze:    {},
	MaterialZinc:      {},
}

// subtypes lists the allowed subtypes per material. Materials absent from the
// map take no subtype at all.
var subtypes = map[MaterialType]map[string]struct{}{
	MaterialAluminum: set(
		"P1020", "CABLE", "CLEAN_PROFILE", "MIXED_SOFT_STAMPING", "CLEAN_PAN", "WHEEL",
		"LOOSE_PRESSED_SHEET", "PISTON", "CLEAN_MIXED_BLOCK", "LOOSE_CAN", "PRESSED_CAN",
		"SAE_305", "SAE_306", "SAE_309_323", "DEOX", "ZAMAC", "BILLET", "NEW_PROFILE",
		"LAMINATES", "SHEET_6MM", "DISC",
	),
	MaterialCopper: set("COPPER_1A", "MIXED_COPPER", "RADIATOR", "AL_CU"),
}

func set(values ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(values))
	for _, v := range values {
		m[v] = struct{}{}
	}
	return m
}

// Valid reports whether t belongs to the material enumeration.
func (t MaterialType) Valid() bool {
	_, ok := materialTypes[t]
	return ok
}

// RequiresSubtype reports whether lots of this material must carry a subtype.
func (t MaterialType) RequiresSubtype() bool {
	_, ok := subtypes[t]
	return ok
}

// AllowsSubtype reports whether s is a known subtype of t.
func (t MaterialType) AllowsSubtype(s string) bool {
	_, ok := subtypes[t][s]
	return ok
}

// Bounds of the quantity_tons column.
const quantityScale = 3

var maxQuantityTons = decimal.New(1, 11)

// MaterialLot is one reported quantity of a material owned by an account.
type MaterialLot struct {
	ID           int64           `json:"id"`
	Type         MaterialType    `json:"type"`
	Subtype      *string         `json:"subtype"`
	QuantityTons decimal.Decimal `json:"quantityTons"`
	AccountID    int64           `json:"accountId"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// Validate checks the lot invariants: known type, subtype present exactly when
// the type requires one and drawn from that type's list, and a non-negative
// quantity that fits NUMERIC(14,3).
func (l *MaterialLot) Validate() error {
	if l.Type == "" {
		return NewValidationError("type", "is required")
	}
	if !l.Type.Valid() {
		return NewValidationError("type", "is not a known material")
	}

	if l.Type.RequiresSubtype() {
		if l.Subtype == nil || *l.Subtype == "" {
			return NewValidationError("subtype", "is required for "+string(l.Type))
		}
		if !l.Type.AllowsSubtype(*l.Subtype) {
			return NewValidationError("subtype", "is not valid for "+string(l.Type))
		}
	} else if l.Subtype != nil {
		return NewValidationError("subtype", "must be null for "+string(l.Type))
	}

	if l.QuantityTons.IsNegative() {
		return NewValidationError("quantityTons", "must be greater than or equal to 0")
	}
	if l.QuantityTons.GreaterThanOrEqual(maxQuantityTons) {
		return NewValidationError("quantityTons", "must be less than 100000000000")
	}
	if !l.QuantityTons.Equal(l.QuantityTons.Truncate(quantityScale)) {
		return NewValidationError("quantityTons", "must have at most 3 decimal places")
	}
	return nil
}

// LotResult reports the outcome of one entry of a batch insert.
type LotResult struct {
	Index int          `json:"index"`
	Lot   *MaterialLot `json:"lot,omitempty"`
	Err   error        `json:"-"`
}

// OK reports whether the entry was stored.
func (r LotResult) OK() bool { return r.Err == nil }
