package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/cadastrahub/registry-api/internal/api/middleware"
	"github.com/cadastrahub/registry-api/internal/core/domain"
	"github.com/cadastrahub/registry-api/internal/core/ports"
)

// ctxPrincipal returns the principal injected by the Auth middleware. Its
// absence means the route was mounted without a gate, which is treated as
// unauthenticated rather than as an anonymous caller.
func ctxPrincipal(c echo.Context) (domain.Principal, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return domain.Principal{}, domain.ErrUnauthenticated
	}
	return p, nil
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError(name, "must be a positive integer")
	}
	return id, nil
}

func requestMeta(c echo.Context) ports.RequestMeta {
	return ports.RequestMeta{RemoteIP: c.RealIP()}
}

// bind decodes path, query and body parameters and runs struct validation.
// Decoding failures are reported as a validation error on the request.
func bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return domain.NewValidationError("request", "could not be decoded")
	}
	if c.Echo().Validator == nil {
		return nil
	}
	return c.Validate(dst)
}
