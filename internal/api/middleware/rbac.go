package middleware

import (
	"errors"
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/cadastrahub/registry-api/internal/api/metrics"
	"github.com/cadastrahub/registry-api/internal/core/domain"
	"github.com/cadastrahub/registry-api/internal/core/ports"
)

// RBAC enforces role-based access control. It must run after Auth. The role
// is resolved through resolver on every request; the token's role claim is
// never trusted. The resolved role replaces the one on the principal.
func RBAC(resolver ports.RoleResolver, log zerolog.Logger, allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, ok := PrincipalFrom(c)
			if !ok {
				return domain.ErrUnauthenticated
			}

			role, err := resolver.ResolveEffectiveRole(c.Request().Context(), principal.ID)
			switch {
			case errors.Is(err, domain.ErrAccountNotFound):
				metrics.AuthorizationDenialsTotal.WithLabelValues("admin", "role").Inc()
				return domain.ErrForbidden
			case err != nil:
				return fmt.Errorf("resolve role: %w", err)
			}

			if _, ok := allowed[role]; !ok {
				metrics.AuthorizationDenialsTotal.WithLabelValues("admin", "role").Inc()
				if principal.Role != role {
					log.Info().Int64("account_id", principal.ID).
						Str("claimed", string(principal.Role)).Str("resolved", string(role)).
						Msg("stale role claim rejected")
				}
				return domain.ErrForbidden
			}

			principal.Role = role
			SetPrincipal(c, principal)
			return next(c)
		}
	}
}
