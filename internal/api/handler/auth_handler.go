package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cadastrahub/registry-api/internal/api/metrics"
	"github.com/cadastrahub/registry-api/internal/core/domain"
	"github.com/cadastrahub/registry-api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (r registerRequest) toInput() ports.RegisterInput {
	return ports.RegisterInput{
		Name:     r.Name,
		Email:    r.Email,
		Password: r.Password,
		TaxID:    r.CpfCnpj,
		Phone:    r.Phone,
		Address:  r.Address,
		Category: r.Category,
		Lots:     toLotInputs(r.Lots),
	}
}

// Register creates a new account with role USER and its optional initial lots.
//
// @Summary      Register an account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Account details and optional initial lots"
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bind(c, &req); err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("register", "invalid").Inc()
		return err
	}

	res, err := h.authService.Register(c.Request().Context(), req.toInput(), requestMeta(c))
	metrics.AuthAttemptsTotal.WithLabelValues("register", outcome(err)).Inc()
	if err != nil {
		return err
	}

	countCreated(res.Lots)
	resp := registerResponse{User: toUserResponse(res.Account)}
	if len(res.Lots) > 0 {
		resp.Lots, _ = toLotResults(res.Lots)
	}
	return c.JSON(http.StatusCreated, resp)
}

// RegisterAdmin creates an ADMIN account. Lots are not accepted here.
//
// @Summary      Bootstrap an administrator
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        X-Bootstrap-Token  header    string           false  "Bootstrap secret, when configured"
// @Param        body               body      registerRequest  true   "Administrator details"
// @Success      201                {object}  userEnvelope
// @Failure      400                {object}  errorResponse
// @Failure      403                {object}  errorResponse
// @Failure      404                {object}  errorResponse
// @Failure      409                {object}  errorResponse
// @Router       /admin/register [post]
func (h *AuthHandler) RegisterAdmin(c echo.Context) error {
	var req registerRequest
	if err := bind(c, &req); err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("register_admin", "invalid").Inc()
		return err
	}

	account, err := h.authService.RegisterAdmin(c.Request().Context(), req.toInput(), requestMeta(c))
	metrics.AuthAttemptsTotal.WithLabelValues("register_admin", outcome(err)).Inc()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, userEnvelope{User: toUserResponse(account)})
}

// Login authenticates an account and returns a session token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      401   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("login", "unauthorized").Inc()
		return domain.ErrInvalidCredentials
	}

	res, err := h.authService.Login(c.Request().Context(), req.Email, req.Password, requestMeta(c))
	metrics.AuthAttemptsTotal.WithLabelValues("login", outcome(err)).Inc()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, loginResponse{
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
		User:      toUserResponse(res.Account),
	})
}

func countCreated(results []domain.LotResult) {
	for _, r := range results {
		if r.OK() {
			metrics.LotsCreatedTotal.WithLabelValues(string(r.Lot.Type)).Inc()
		}
	}
}
