package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/cadastrahub/registry-api/internal/api/metrics"
	"github.com/cadastrahub/registry-api/internal/core/domain"
	"github.com/cadastrahub/registry-api/internal/core/ports"
)

// Auth is the user gate: it verifies the bearer token and stores the
// principal on the context. Every failure is domain.ErrUnauthenticated.
func Auth(tokens ports.TokenManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				metrics.AuthorizationDenialsTotal.WithLabelValues("user", "missing_token").Inc()
				return domain.ErrUnauthenticated
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				metrics.AuthorizationDenialsTotal.WithLabelValues("user", "invalid_token").Inc()
				return domain.ErrUnauthenticated
			}

			principal, err := tokens.Verify(strings.TrimSpace(parts[1]))
			if err != nil {
				metrics.AuthorizationDenialsTotal.WithLabelValues("user", "invalid_token").Inc()
				return domain.ErrUnauthenticated
			}

			SetPrincipal(c, principal)
			return next(c)
		}
	}
}
