package service

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/reel2bits/accounts-api/internal/core/domain"
	"github.com/reel2bits/accounts-api/internal/core/ports"
	"github.com/reel2bits/accounts-api/internal/pkg/validation"
)

// handlePattern is the legal character policy for handles.
var handlePattern = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

const (
	msgTaken         = "has already been taken"
	msgIllegalHandle = "should contains only letters and numbers"
	msgMismatch      = "passwords doesn't match"
	msgAgreement     = "you need to accept the terms and conditions"
	msgBearerFormat  = "API Bearer Authorization format issue"

	// handleField is the error key used for handle problems; it names the
	// federated identifier the handle becomes.
	handleField = "ap_id"
)

// RegistrationDeps groups the collaborators of RegistrationService.
type RegistrationDeps struct {
	Credentials ports.CredentialStore
	Roles       ports.RoleStore
	Accounts    ports.AccountStore
	Tokens      ports.TokenExchanger
	Confirmer   ports.Confirmer
	Hasher      ports.PasswordHasher
	Actors      *ActorFactory
}

// RegistrationService validates registration input, creates the user and its
// actor, and exchanges the bootstrap bearer for a user token.
type RegistrationService struct {
	deps     RegistrationDeps
	validate *validator.Validate
	log      zerolog.Logger
	now      func() time.Time
}

func NewRegistrationService(deps RegistrationDeps, log zerolog.Logger) *RegistrationService {
	return &RegistrationService{
		deps:     deps,
		validate: validation.New(),
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Register runs the registration workflow. Presence errors are accumulated and
// returned together; every later check returns on first failure. Nothing is
// written unless all checks pass and the bearer resolves to a client.
func (s *RegistrationService) Register(ctx context.Context, in ports.RegisterInput) (*ports.IssuedToken, error) {
	if errs := s.missingFields(in); len(errs) > 0 {
		return nil, &domain.ValidationError{Reason: "missing fields", Fields: errs}
	}

	username, email := *in.Username, *in.Email

	if *in.Password != *in.Confirm {
		return nil, domain.NewValidationError("confirm mismatch", "confirm", msgMismatch)
	}
	if !*in.Agreement {
		return nil, domain.NewValidationError("agreement required", "agreement", msgAgreement)
	}

	if err := s.ensureAvailable(ctx, username, email); err != nil {
		return nil, err
	}

	if !handlePattern.MatchString(username) {
		return nil, domain.NewValidationError("illegal handle", handleField, msgIllegalHandle)
	}

	role, err := s.deps.Roles.FindRoleByName(ctx, domain.RoleUser)
	if err != nil {
		if errors.Is(err, domain.ErrRoleNotFound) {
			s.log.Error().Str("role", domain.RoleUser).Msg("default role is not provisioned")
			return nil, &domain.ServerError{Reason: "default role missing", Err: err}
		}
		return nil, &domain.ServerError{Reason: "lookup role", Err: err}
	}

	// Resolve the bearer before writing so a bad bearer leaves no account behind.
	client, err := s.deps.Tokens.ResolveClient(ctx, in.Bearer)
	if err != nil {
		return nil, err
	}

	hash, err := s.deps.Hasher.Hash(*in.Password)
	if err != nil {
		return nil, &domain.ServerError{Reason: "hash password", Err: err}
	}

	now := s.now()
	user := &domain.User{
		Name:         username,
		Email:        email,
		DisplayName:  *in.Fullname,
		PasswordHash: hash,
		Roles:        []string{role.Name},
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	actor := s.deps.Actors.NewActor(user, now)
	if in.Bio != nil {
		actor.Summary = *in.Bio
	}

	created, _, err := s.deps.Accounts.CreateWithActor(ctx, user, actor)
	if err != nil {
		return nil, s.translateCreateError(username, err)
	}

	s.log.Info().Str("user_id", created.ID).Str("username", created.Name).Msg("account created")

	if s.deps.Confirmer.RequiresConfirmation(created) {
		if err := s.deps.Confirmer.SendConfirmation(ctx, created); err != nil {
			s.log.Warn().Err(err).Str("user_id", created.ID).Msg("confirmation dispatch failed")
		}
	}

	return s.deps.Tokens.Issue(ctx, client, created)
}

// missingFields collects one message per absent required field, plus a
// malformed Authorization header if one was sent.
func (s *RegistrationService) missingFields(in ports.RegisterInput) domain.FieldErrors {
	errs := domain.FieldErrors{}
	if in.BearerMalformed {
		errs.Add("bearer", msgBearerFormat)
	}

	err := s.validate.Struct(in)
	if err == nil {
		return errs
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		errs.Add("input", err.Error())
		return errs
	}
	for _, fe := range ve {
		errs.Add(fe.Field(), missingMessage(fe.Field()))
	}
	return errs
}

func missingMessage(field string) string {
	if field == "confirm" {
		return "password confirm is missing"
	}
	return field + " is missing"
}

// ensureAvailable is the fast path uniqueness check. The store's unique
// indexes remain the arbiter; see translateCreateError.
func (s *RegistrationService) ensureAvailable(ctx context.Context, username, email string) error {
	if _, err := s.deps.Credentials.FindByName(ctx, username); err == nil {
		return domain.NewConflictError("handle taken", handleField, msgTaken)
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return &domain.ServerError{Reason: "lookup user by name", Err: err}
	}

	if _, err := s.deps.Credentials.FindByEmail(ctx, email); err == nil {
		return domain.NewConflictError("email taken", "email", msgTaken)
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return &domain.ServerError{Reason: "lookup user by email", Err: err}
	}
	return nil
}

func (s *RegistrationService) translateCreateError(username string, err error) error {
	switch {
	case errors.Is(err, domain.ErrDuplicateName):
		s.log.Info().Str("username", username).Msg("lost registration race on handle")
		return domain.NewConflictError("handle taken", handleField, msgTaken)
	case errors.Is(err, domain.ErrDuplicateEmail):
		s.log.Info().Str("username", username).Msg("lost registration race on email")
		return domain.NewConflictError("email taken", "email", msgTaken)
	}
	return &domain.ServerError{Reason: "create account", Err: err}
}
