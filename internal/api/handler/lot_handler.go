package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cadastrahub/registry-api/internal/api/metrics"
	"github.com/cadastrahub/registry-api/internal/core/ports"
)

// LotHandler serves material lots. The owner routes take the owner from
// the principal; the admin routes may target any account.
type LotHandler struct {
	lots ports.LotService
}

func NewLotHandler(lots ports.LotService) *LotHandler {
	return &LotHandler{lots: lots}
}

// ListMine returns the caller's lots, newest first.
//
// @Summary      List own lots
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  lotListResponse
// @Failure      401  {object}  errorResponse
// @Router       /products [get]
func (h *LotHandler) ListMine(c echo.Context) error {
	owner, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	lots, err := h.lots.ListMine(c.Request().Context(), owner)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toLotList(lots))
}

// GetMine returns one of the caller's lots. Lots of other accounts are
// reported as not found.
//
// @Summary      Get own lot
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Lot id"
// @Success      200  {object}  lotResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /products/{id} [get]
func (h *LotHandler) GetMine(c echo.Context) error {
	owner, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	lot, err := h.lots.GetMine(c.Request().Context(), owner, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toLotResponse(lot))
}

// Create stores one lot for the caller.
//
// @Summary      Create lot
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      lotRequest  true  "Lot"
// @Success      201   {object}  lotResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /products [post]
func (h *LotHandler) Create(c echo.Context) error {
	owner, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req lotRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	lot, err := h.lots.Create(c.Request().Context(), owner, toLotInput(req))
	if err != nil {
		return err
	}
	metrics.LotsCreatedTotal.WithLabelValues(string(lot.Type)).Inc()
	return c.JSON(http.StatusCreated, toLotResponse(lot))
}

// CreateBatch stores several lots for the caller. Items are independent:
// the response reports each one.
//
// @Summary      Create lots in batch
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      batchLotsRequest  true  "Lots"
// @Success      201   {object}  batchLotsResponse  "every item stored"
// @Success      207   {object}  batchLotsResponse  "some items rejected"
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /products/batch [post]
func (h *LotHandler) CreateBatch(c echo.Context) error {
	owner, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req batchLotsRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	results, err := h.lots.CreateBatch(c.Request().Context(), owner, toLotInputs(req.Lots))
	if err != nil {
		return err
	}

	countCreated(results)
	items, failed := toLotResults(results)
	return c.JSON(batchStatus(failed), batchLotsResponse{
		Results: items,
		Created: len(items) - failed,
		Failed:  failed,
	})
}

// DeleteMine removes one of the caller's lots.
//
// @Summary      Delete own lot
// @Tags         products
// @Security     BearerAuth
// @Param        id   path  int  true  "Lot id"
// @Success      204
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /products/{id} [delete]
func (h *LotHandler) DeleteMine(c echo.Context) error {
	owner, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.lots.DeleteMine(c.Request().Context(), owner, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ListAll returns lots across accounts, optionally filtered.
//
// @Summary      Search lots
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        type       query     string  false  "Material type"
// @Param        subtype    query     string  false  "Material subtype"
// @Param        accountId  query     int     false  "Owner account id"
// @Success      200        {object}  lotListResponse
// @Failure      400        {object}  errorResponse
// @Failure      403        {object}  errorResponse
// @Router       /admin/products [get]
// @Router       /products/all [get]
func (h *LotHandler) ListAll(c echo.Context) error {
	var q listLotsQuery
	if err := bind(c, &q); err != nil {
		return err
	}

	lots, err := h.lots.ListAll(c.Request().Context(), ports.ListLotsInput{
		Type:      q.Type,
		Subtype:   q.Subtype,
		AccountID: q.AccountID,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toLotList(lots))
}

// Get returns any lot.
//
// @Summary      Get lot
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Lot id"
// @Success      200  {object}  lotResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /admin/products/{id} [get]
func (h *LotHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	lot, err := h.lots.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toLotResponse(lot))
}

// CreateFor stores a lot for the account named in the body.
//
// @Summary      Create lot for an account
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      adminCreateLotRequest  true  "Lot with owner"
// @Success      201   {object}  lotResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /admin/products [post]
func (h *LotHandler) CreateFor(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req adminCreateLotRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	lot, err := h.lots.CreateFor(c.Request().Context(), actor, req.AccountID, ports.LotInput{
		Type:         req.Type,
		Subtype:      req.Subtype,
		QuantityTons: req.QuantityTons,
	})
	if err != nil {
		return err
	}
	metrics.LotsCreatedTotal.WithLabelValues(string(lot.Type)).Inc()
	return c.JSON(http.StatusCreated, toLotResponse(lot))
}

// Update replaces type, subtype and quantity of a lot. The owner is kept.
//
// @Summary      Update lot
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int         true  "Lot id"
// @Param        body  body      lotRequest  true  "New lot values"
// @Success      200   {object}  lotResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /admin/products/{id} [put]
func (h *LotHandler) Update(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req lotRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	lot, err := h.lots.Update(c.Request().Context(), actor, id, toLotInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toLotResponse(lot))
}

// Delete removes any lot.
//
// @Summary      Delete lot
// @Tags         admin
// @Security     BearerAuth
// @Param        id   path  int  true  "Lot id"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /admin/products/{id} [delete]
func (h *LotHandler) Delete(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.lots.Delete(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
