package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/reel2bits/accounts-api/internal/core/domain"
	"github.com/reel2bits/accounts-api/internal/pkg/metrics"
)

// RequireScope enforces that the token injected by Bearer grants every listed
// scope. Must be chained after Bearer. A missing scope yields
// domain.ErrInsufficientScope, which the error handler answers with a bare 403.
func RequireScope(scopes ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := TokenFromContext(c)
			if !ok {
				return c.NoContent(http.StatusUnauthorized)
			}
			for _, s := range scopes {
				if !token.HasScope(s) {
					metrics.BearerRejectedTotal.WithLabelValues("scope").Inc()
					return domain.ErrInsufficientScope
				}
			}
			return next(c)
		}
	}
}
