package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/reel2bits/accounts-api/internal/api/middleware"
	"github.com/reel2bits/accounts-api/internal/core/domain"
)

// ctxToken extracts the token injected by the Bearer middleware. A missing
// user binding means the token is still an application token and cannot act
// as an account.
func ctxToken(c echo.Context) (*domain.OAuth2Token, bool) {
	token, ok := middleware.TokenFromContext(c)
	if !ok || token.UserID == "" {
		return nil, false
	}
	return token, true
}
