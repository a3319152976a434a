package ports

import "context"

// RegisterInput carries the registration fields. Pointer fields distinguish
// an absent field from an empty one; required fields are declared with tags.
type RegisterInput struct {
	Username  *string `json:"username"  validate:"required"`
	Email     *string `json:"email"     validate:"required"`
	Fullname  *string `json:"fullname"  validate:"required"`
	Password  *string `json:"password"  validate:"required"`
	Confirm   *string `json:"confirm"   validate:"required"`
	Agreement *bool   `json:"agreement" validate:"required"`
	Bio       *string `json:"bio"`

	// Bearer is the bootstrap access token from the Authorization header.
	Bearer string `json:"-"`
	// BearerMalformed is set when an Authorization header was sent but could
	// not be split into scheme and token.
	BearerMalformed bool `json:"-"`
}

// RegistrationService creates accounts and returns their first access token.
type RegistrationService interface {
	Register(ctx context.Context, in RegisterInput) (*IssuedToken, error)
}

// PasswordHasher hashes plaintext passwords for storage.
type PasswordHasher interface {
	Hash(password string) (string, error)
}
