package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cadastrahub/registry-api/internal/core/ports"
)

// AdminUserHandler serves account administration. Every route sits behind
// the admin gate.
type AdminUserHandler struct {
	accounts ports.AccountService
	lots     ports.LotService
}

func NewAdminUserHandler(accounts ports.AccountService, lots ports.LotService) *AdminUserHandler {
	return &AdminUserHandler{accounts: accounts, lots: lots}
}

// List returns a page of accounts.
//
// @Summary      List accounts
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        page      query     int     false  "Page number, 1-based"
// @Param        limit     query     int     false  "Page size, default 20, max 100"
// @Param        search    query     string  false  "Matches name, email or cpfCnpj"
// @Param        category  query     string  false  "customer or supplier"
// @Param        role      query     string  false  "USER or ADMIN"
// @Success      200       {object}  userPageResponse
// @Failure      400       {object}  errorResponse
// @Failure      401       {object}  errorResponse
// @Failure      403       {object}  errorResponse
// @Router       /admin/users [get]
func (h *AdminUserHandler) List(c echo.Context) error {
	var q listUsersQuery
	if err := bind(c, &q); err != nil {
		return err
	}

	page, err := h.accounts.List(c.Request().Context(), ports.ListAccountsInput{
		Page:     q.Page,
		Limit:    q.Limit,
		Search:   q.Search,
		Category: q.Category,
		Role:     q.Role,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserPage(page))
}

// Get returns one account.
//
// @Summary      Get account
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Account id"
// @Success      200  {object}  userEnvelope
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /admin/users/{id} [get]
func (h *AdminUserHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	account, err := h.accounts.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userEnvelope{User: toUserResponse(account)})
}

// Update changes any field of an account except its password.
//
// @Summary      Update account
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                     true  "Account id"
// @Param        body  body      adminUpdateUserRequest  true  "Fields to change"
// @Success      200   {object}  userEnvelope
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /admin/users/{id} [put]
func (h *AdminUserHandler) Update(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req adminUpdateUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	account, err := h.accounts.Update(c.Request().Context(), actor, id, toAccountUpdateInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userEnvelope{User: toUserResponse(account)})
}

// Delete removes an account and, by cascade, its lots.
//
// @Summary      Delete account
// @Tags         admin
// @Security     BearerAuth
// @Param        id   path  int  true  "Account id"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /admin/users/{id} [delete]
func (h *AdminUserHandler) Delete(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.accounts.Delete(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ListLots returns the lots owned by one account.
//
// @Summary      List an account's lots
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Account id"
// @Success      200  {object}  lotListResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /admin/users/{id}/products [get]
func (h *AdminUserHandler) ListLots(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	lots, err := h.lots.ListByAccount(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toLotList(lots))
}
