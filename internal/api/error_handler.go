package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/reel2bits/accounts-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Renders validation and conflict errors as 400 {"error": "<field map JSON>"}.
//   - Answers authentication failures with a bare 400 and scope failures with a bare 403.
//   - Logs unexpected errors internally without leaking details to the client.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if msg == "" {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

// resolveError returns the status code and message for err. An empty message
// means the response carries no body.
func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	var (
		ve *domain.ValidationError
		ce *domain.ConflictError
		ae *domain.AuthError
		se *domain.ServerError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Fields.String()
	case errors.As(err, &ce):
		return http.StatusBadRequest, ce.Fields.String()
	case errors.As(err, &ae):
		log.Info().Str("reason", ae.Reason).Str("path", c.Path()).Msg("authentication rejected")
		return http.StatusBadRequest, ""
	case errors.Is(err, domain.ErrInsufficientScope):
		return http.StatusForbidden, ""
	case errors.As(err, &se):
		log.Error().
			Err(se.Err).
			Str("reason", se.Reason).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("server error")
		return http.StatusInternalServerError, "server error"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "server error"
}
