package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cadastrahub/registry-api/internal/core/ports"
)

// ProfileHandler serves the caller's own account.
type ProfileHandler struct {
	accounts ports.AccountService
}

func NewProfileHandler(accounts ports.AccountService) *ProfileHandler {
	return &ProfileHandler{accounts: accounts}
}

// Get returns the caller's account.
//
// @Summary      Get own profile
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  userEnvelope
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /profile [get]
func (h *ProfileHandler) Get(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	account, err := h.accounts.GetProfile(c.Request().Context(), principal)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userEnvelope{User: toUserResponse(account)})
}

// Update changes name, email, phone or address of the caller's account.
// The role cannot be changed here.
//
// @Summary      Update own profile
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      profileRequest  true  "Fields to change"
// @Success      200   {object}  userEnvelope
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /profile [put]
func (h *ProfileHandler) Update(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req profileRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	account, err := h.accounts.UpdateProfile(c.Request().Context(), principal, toProfileInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userEnvelope{User: toUserResponse(account)})
}
