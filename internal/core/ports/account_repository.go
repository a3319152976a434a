package ports

import (
	"context"
	"time"

	"github.com/reel2bits/accounts-api/internal/core/domain"
)

// CredentialStore looks up local users by their unique identifiers.
type CredentialStore interface {
	FindByName(ctx context.Context, name string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	MarkConfirmed(ctx context.Context, userID string, at time.Time) error
}

// RoleStore resolves pre-provisioned roles.
type RoleStore interface {
	FindRoleByName(ctx context.Context, name string) (*domain.Role, error)
}

// AccountStore persists a user together with its actor.
type AccountStore interface {
	// CreateWithActor inserts user and actor as one atomic unit. A uniqueness
	// violation on name or email is reported as domain.ErrDuplicateName or
	// domain.ErrDuplicateEmail and leaves nothing behind.
	CreateWithActor(ctx context.Context, user *domain.User, actor *domain.Actor) (*domain.User, *domain.Actor, error)
	FindActorByUserID(ctx context.Context, userID string) (*domain.Actor, error)
	FindActorByID(ctx context.Context, id string) (*domain.Actor, error)
}

// AccountStats counts the social relations of an actor.
type AccountStats interface {
	Counts(ctx context.Context, actorID string) (domain.AccountCounts, error)
}
