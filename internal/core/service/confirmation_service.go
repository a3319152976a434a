package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/reel2bits/accounts-api/internal/core/domain"
	"github.com/reel2bits/accounts-api/internal/core/ports"
)

const defaultConfirmationTTL = 24 * time.Hour

// ConfirmationService delivers confirmation instructions and completes
// confirmation when the emailed token comes back.
type ConfirmationService struct {
	credentials ports.CredentialStore
	tokens      ports.ConfirmationTokens
	mailer      ports.Mailer
	instanceURL string
	ttl         time.Duration
	log         zerolog.Logger
	now         func() time.Time
}

func NewConfirmationService(
	credentials ports.CredentialStore,
	tokens ports.ConfirmationTokens,
	mailer ports.Mailer,
	instanceURL string,
	ttl time.Duration,
	log zerolog.Logger,
) *ConfirmationService {
	if ttl <= 0 {
		ttl = defaultConfirmationTTL
	}
	return &ConfirmationService{
		credentials: credentials,
		tokens:      tokens,
		mailer:      mailer,
		instanceURL: strings.TrimRight(instanceURL, "/"),
		ttl:         ttl,
		log:         log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Deliver issues a confirmation token for user and mails the link.
func (s *ConfirmationService) Deliver(ctx context.Context, user domain.User) error {
	token, err := s.tokens.Issue(ctx, user.ID, s.ttl)
	if err != nil {
		return fmt.Errorf("issue confirmation token: %w", err)
	}
	link := s.instanceURL + "/confirm?token=" + url.QueryEscape(token)
	if err := s.mailer.SendConfirmation(ctx, user, link); err != nil {
		return fmt.Errorf("send confirmation: %w", err)
	}
	return nil
}

// Confirm consumes token and marks its user confirmed.
func (s *ConfirmationService) Confirm(ctx context.Context, token string) (*domain.User, error) {
	userID, err := s.tokens.Consume(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrConfirmationNotFound) {
			return nil, domain.NewValidationError("invalid confirmation token", "token", "is invalid or expired")
		}
		return nil, &domain.ServerError{Reason: "consume confirmation token", Err: err}
	}

	user, err := s.credentials.FindByID(ctx, userID)
	if err != nil {
		return nil, &domain.ServerError{Reason: "lookup confirmed user", Err: err}
	}
	if user.Confirmed() {
		return user, nil
	}

	at := s.now()
	if err := s.credentials.MarkConfirmed(ctx, userID, at); err != nil {
		return nil, &domain.ServerError{Reason: "mark user confirmed", Err: err}
	}
	user.ConfirmedAt = &at

	s.log.Info().Str("user_id", userID).Msg("account confirmed")
	return user, nil
}

// Confirmer applies the confirmation policy and hands users to a queue so
// delivery never runs inside the registration request.
type Confirmer struct {
	required bool
	queue    ports.ConfirmationQueue
}

func NewConfirmer(required bool, queue ports.ConfirmationQueue) *Confirmer {
	return &Confirmer{required: required, queue: queue}
}

func (c *Confirmer) RequiresConfirmation(user *domain.User) bool {
	return c.required && !user.Confirmed()
}

func (c *Confirmer) SendConfirmation(_ context.Context, user *domain.User) error {
	return c.queue.Enqueue(*user)
}
