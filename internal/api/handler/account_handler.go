package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/reel2bits/accounts-api/internal/api/middleware"
	"github.com/reel2bits/accounts-api/internal/core/domain"
	"github.com/reel2bits/accounts-api/internal/core/ports"
	"github.com/reel2bits/accounts-api/internal/pkg/metrics"
)

const maxBodyBytes = 64 << 10

var errUnreadableBody = errors.New("body is not a non-empty json object")

type AccountHandler struct {
	registration ports.RegistrationService
	accounts     ports.AccountService
	confirmation ports.ConfirmationService
	log          zerolog.Logger
}

func NewAccountHandler(
	registration ports.RegistrationService,
	accounts ports.AccountService,
	confirmation ports.ConfirmationService,
	log zerolog.Logger,
) *AccountHandler {
	return &AccountHandler{
		registration: registration,
		accounts:     accounts,
		confirmation: confirmation,
		log:          log,
	}
}

// Register creates a local account and returns its first access token.
//
// @Summary      Register an account
// @Description  Creates a user and its actor, then exchanges the application bearer for a user token.
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      ports.RegisterInput  true  "Registration fields"
// @Success      200   {object}  tokenResponse
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/accounts [post]
func (h *AccountHandler) Register(c echo.Context) error {
	start := time.Now()

	var in ports.RegisterInput
	if err := decodeObject(c, &in); err != nil {
		h.observe("invalid", start)
		if errors.Is(err, errUnreadableBody) {
			return c.NoContent(http.StatusBadRequest)
		}
		return err
	}

	_, bearer, err := middleware.ParseAuthorization(c.Request().Header.Get(echo.HeaderAuthorization))
	switch {
	case errors.Is(err, middleware.ErrNoAuthorization):
		h.log.Info().Msg("registration without Authorization bearer")
	case err != nil:
		in.BearerMalformed = true
	default:
		in.Bearer = bearer
	}

	token, err := h.registration.Register(c.Request().Context(), in)
	if err != nil {
		h.observe(registrationResult(err), start)
		return err
	}

	h.observe("created", start)
	metrics.TokensIssuedTotal.WithLabelValues(domain.GrantClientCredentials).Inc()
	return c.JSON(http.StatusOK, toTokenResponse(token))
}

// VerifyCredentials returns the account owning the bearer token.
//
// @Summary      Verify account credentials
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.AccountView
// @Failure      401
// @Failure      403
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/accounts/verify_credentials [get]
func (h *AccountHandler) VerifyCredentials(c echo.Context) error {
	token, ok := ctxToken(c)
	if !ok {
		return c.NoContent(http.StatusUnauthorized)
	}

	view, err := h.accounts.VerifyCredentials(c.Request().Context(), token)
	if err != nil {
		var ae *domain.AuthError
		if errors.As(err, &ae) || errors.Is(err, domain.ErrUserNotFound) {
			return c.NoContent(http.StatusUnauthorized)
		}
		return err
	}
	return c.JSON(http.StatusOK, view)
}

// Confirm completes email confirmation with the emailed token.
//
// @Summary      Confirm an account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        body  body      confirmRequest  true  "Confirmation token"
// @Success      200   {object}  confirmResponse
// @Failure      400   {object}  map[string]string
// @Router       /api/v1/accounts/confirm [post]
func (h *AccountHandler) Confirm(c echo.Context) error {
	var req confirmRequest
	if err := c.Bind(&req); err != nil {
		return c.NoContent(http.StatusBadRequest)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.confirmation.Confirm(c.Request().Context(), req.Token)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toConfirmResponse(user))
}

func (h *AccountHandler) observe(result string, start time.Time) {
	metrics.RegistrationsTotal.WithLabelValues(result).Inc()
	metrics.RegistrationDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
}

// decodeObject decodes a non-empty JSON object body into dst. A missing or
// unparseable body yields errUnreadableBody; a field of the wrong JSON type
// yields a ValidationError keyed by that field.
func decodeObject(c echo.Context, dst any) error {
	var raw map[string]json.RawMessage
	body := c.Request().Body
	if body == nil {
		return errUnreadableBody
	}
	data, err := io.ReadAll(io.LimitReader(body, maxBodyBytes))
	if err != nil || len(data) == 0 {
		return errUnreadableBody
	}
	if err := json.Unmarshal(data, &raw); err != nil || len(raw) == 0 {
		return errUnreadableBody
	}
	if err := json.Unmarshal(data, dst); err != nil {
		var te *json.UnmarshalTypeError
		if errors.As(err, &te) && te.Field != "" {
			return domain.NewValidationError("invalid field type", te.Field, "has an invalid type")
		}
		return errUnreadableBody
	}
	return nil
}

func registrationResult(err error) string {
	var (
		ve *domain.ValidationError
		ce *domain.ConflictError
		ae *domain.AuthError
	)
	switch {
	case errors.As(err, &ve):
		return "invalid"
	case errors.As(err, &ce):
		return "conflict"
	case errors.As(err, &ae):
		return "unauthorized"
	}
	return "error"
}
