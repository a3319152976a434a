package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/reel2bits/accounts-api/internal/core/domain"
	"github.com/reel2bits/accounts-api/internal/core/ports"
	"github.com/reel2bits/accounts-api/internal/pkg/metrics"
)

// tokenKey is the echo context key holding the authenticated *domain.OAuth2Token.
const tokenKey = "oauth_token"

var (
	ErrNoAuthorization        = errors.New("no authorization header")
	ErrMalformedAuthorization = errors.New("malformed authorization header")
)

// ParseAuthorization splits an Authorization header value into its scheme and
// credentials. The header must hold exactly two space separated parts.
func ParseAuthorization(header string) (scheme, credentials string, err error) {
	if header == "" {
		return "", "", ErrNoAuthorization
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 {
		return "", "", ErrMalformedAuthorization
	}
	return parts[0], parts[1], nil
}

// Bearer authenticates the request against the token store and injects the
// token into context. Unknown, revoked and expired tokens get a bare 401.
func Bearer(tokens ports.TokenStore, log zerolog.Logger) echo.MiddlewareFunc {
	return bearer(tokens, log, time.Now)
}

func bearer(tokens ports.TokenStore, log zerolog.Logger, now func() time.Time) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			scheme, access, err := ParseAuthorization(c.Request().Header.Get(echo.HeaderAuthorization))
			switch {
			case errors.Is(err, ErrNoAuthorization):
				return reject(c, "missing")
			case err != nil, !strings.EqualFold(scheme, "bearer"):
				return reject(c, "malformed")
			}

			token, err := tokens.FindByAccessToken(c.Request().Context(), access)
			if err != nil {
				if errors.Is(err, domain.ErrTokenNotFound) {
					return reject(c, "unknown")
				}
				return err
			}
			if token.Revoked {
				return reject(c, "revoked")
			}
			if token.Expired(now()) {
				return reject(c, "expired")
			}

			log.Debug().Str("client_id", token.ClientID).Str("user_id", token.UserID).Msg("bearer accepted")
			c.Set(tokenKey, token)
			return next(c)
		}
	}
}

func reject(c echo.Context, reason string) error {
	metrics.BearerRejectedTotal.WithLabelValues(reason).Inc()
	return c.NoContent(http.StatusUnauthorized)
}

// TokenFromContext returns the token injected by Bearer.
func TokenFromContext(c echo.Context) (*domain.OAuth2Token, bool) {
	token, ok := c.Get(tokenKey).(*domain.OAuth2Token)
	return token, ok && token != nil
}
