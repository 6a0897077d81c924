package handler

import (
	"errors"
	"net/http"

	"github.com/cadastrahub/registry-api/internal/core/domain"
	"github.com/cadastrahub/registry-api/internal/core/ports"
)

func toUserResponse(a *domain.Account) userResponse {
	return userResponse{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		CpfCnpj:   a.TaxID,
		Phone:     a.Phone,
		Address:   a.Address,
		Category:  string(a.Category),
		Role:      string(a.Role),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func toLotResponse(l *domain.MaterialLot) lotResponse {
	return lotResponse{
		ID:           l.ID,
		Type:         string(l.Type),
		Subtype:      l.Subtype,
		QuantityTons: l.QuantityTons,
		AccountID:    l.AccountID,
		CreatedAt:    l.CreatedAt,
	}
}

func toLotList(lots []*domain.MaterialLot) lotListResponse {
	out := make([]lotResponse, 0, len(lots))
	for _, l := range lots {
		out = append(out, toLotResponse(l))
	}
	return lotListResponse{Data: out}
}

func toLotInput(r lotRequest) ports.LotInput {
	return ports.LotInput{Type: r.Type, Subtype: r.Subtype, QuantityTons: r.QuantityTons}
}

func toLotInputs(rs []lotRequest) []ports.LotInput {
	out := make([]ports.LotInput, len(rs))
	for i, r := range rs {
		out[i] = toLotInput(r)
	}
	return out
}

// toLotResults renders per-item outcomes. Only client-facing causes are
// exposed; anything else is reported as a generic failure.
func toLotResults(results []domain.LotResult) (out []lotResultResponse, failed int) {
	out = make([]lotResultResponse, 0, len(results))
	for _, r := range results {
		item := lotResultResponse{Index: r.Index}
		if r.OK() {
			lot := toLotResponse(r.Lot)
			item.Lot = &lot
		} else {
			failed++
			item.Error, item.Field = lotFailure(r.Err)
		}
		out = append(out, item)
	}
	return out, failed
}

func lotFailure(err error) (msg, field string) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return ve.Error(), ve.Field
	case errors.Is(err, domain.ErrAccountNotFound):
		return "account not found", ""
	default:
		return "could not store lot", ""
	}
}

// batchStatus is 201 when every item was stored and 207 otherwise.
func batchStatus(failed int) int {
	if failed == 0 {
		return http.StatusCreated
	}
	return http.StatusMultiStatus
}

func toProfileInput(r profileRequest) ports.ProfileInput {
	return ports.ProfileInput{Name: r.Name, Email: r.Email, Phone: r.Phone, Address: r.Address}
}

func toAccountUpdateInput(r adminUpdateUserRequest) ports.AccountUpdateInput {
	return ports.AccountUpdateInput{
		ProfileInput: ports.ProfileInput{Name: r.Name, Email: r.Email, Phone: r.Phone, Address: r.Address},
		TaxID:        r.CpfCnpj,
		Category:     r.Category,
		Role:         r.Role,
	}
}

func toUserPage(p *ports.AccountPage) userPageResponse {
	data := make([]userResponse, 0, len(p.Items))
	for _, a := range p.Items {
		data = append(data, toUserResponse(a))
	}
	return userPageResponse{
		Data: data,
		Pagination: pagination{
			Page:       p.Page,
			Limit:      p.Limit,
			Total:      p.Total,
			TotalPages: p.TotalPages,
		},
	}
}

// outcome classifies an error for the attempt counters.
func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrValidation):
		return "invalid"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "unauthorized"
	default:
		return "error"
	}
}
