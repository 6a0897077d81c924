package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/cadastrahub/registry-api/internal/api/metrics"
	"github.com/cadastrahub/registry-api/internal/core/domain"
)

// BootstrapTokenHeader carries the shared secret for POST /admin/register.
const BootstrapTokenHeader = "X-Bootstrap-Token"

// Bootstrap guards the unauthenticated administrator-creation endpoint.
// When disabled the route answers 404. When a token is configured the
// request must present it in BootstrapTokenHeader. Every use is logged.
func Bootstrap(enabled bool, token string, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !enabled {
				metrics.AuthorizationDenialsTotal.WithLabelValues("bootstrap", "disabled").Inc()
				return echo.NewHTTPError(http.StatusNotFound, "not found")
			}

			if token != "" {
				presented := c.Request().Header.Get(BootstrapTokenHeader)
				if subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
					metrics.AuthorizationDenialsTotal.WithLabelValues("bootstrap", "bootstrap").Inc()
					log.Warn().Str("remote_ip", c.RealIP()).Msg("admin bootstrap rejected: bad token")
					return domain.ErrForbidden
				}
			}

			log.Warn().Str("remote_ip", c.RealIP()).Bool("token_guarded", token != "").
				Msg("admin bootstrap endpoint used")
			return next(c)
		}
	}
}
