package ports

import (
	"context"
	"time"

	"github.com/reel2bits/accounts-api/internal/core/domain"
)

// Confirmer decides whether a new user must confirm their email and triggers
// delivery. SendConfirmation must not block on delivery.
type Confirmer interface {
	RequiresConfirmation(user *domain.User) bool
	SendConfirmation(ctx context.Context, user *domain.User) error
}

// ConfirmationSender delivers confirmation instructions to one user.
type ConfirmationSender interface {
	Deliver(ctx context.Context, user domain.User) error
}

// ConfirmationQueue accepts users whose instructions should be delivered
// asynchronously.
type ConfirmationQueue interface {
	Enqueue(user domain.User) error
}

// ConfirmationTokens stores single use confirmation tokens.
type ConfirmationTokens interface {
	Issue(ctx context.Context, userID string, ttl time.Duration) (string, error)
	Consume(ctx context.Context, token string) (string, error)
}

// Mailer sends confirmation instructions.
type Mailer interface {
	SendConfirmation(ctx context.Context, user domain.User, link string) error
}

// ConfirmationService completes email confirmation.
type ConfirmationService interface {
	Confirm(ctx context.Context, token string) (*domain.User, error)
}
