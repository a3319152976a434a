package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/reel2bits/accounts-api/internal/core/domain"
	"github.com/reel2bits/accounts-api/internal/pkg/validation"
)

// echoValidator wraps go-playground/validator so Echo can call c.Validate(req).
type echoValidator struct {
	v *validator.Validate
}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
// Field names in errors follow the json tags of the request struct.
func NewValidator() *echoValidator {
	return &echoValidator{v: validation.New()}
}

// Validate satisfies the echo.Validator interface. Failures are reported as a
// domain.ValidationError keyed by field.
func (ev *echoValidator) Validate(i any) error {
	err := ev.v.Struct(i)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	fields := domain.FieldErrors{}
	for _, fe := range ve {
		fields.Add(fe.Field(), fieldError(fe))
	}
	return &domain.ValidationError{Reason: "invalid request", Fields: fields}
}

// fieldError converts a single ValidationError into a human-readable message.
func fieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is missing"
	default:
		return "failed validation (" + fe.Tag() + ")"
	}
}
