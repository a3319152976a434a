package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/reel2bits/accounts-api/internal/core/domain"
	"github.com/reel2bits/accounts-api/internal/core/ports"
)

// AccountService loads accounts and renders them through AccountProjection.
type AccountService struct {
	credentials ports.CredentialStore
	accounts    ports.AccountStore
	stats       ports.AccountStats
	projection  *AccountProjection
	log         zerolog.Logger
}

func NewAccountService(
	credentials ports.CredentialStore,
	accounts ports.AccountStore,
	stats ports.AccountStats,
	projection *AccountProjection,
	log zerolog.Logger,
) *AccountService {
	return &AccountService{
		credentials: credentials,
		accounts:    accounts,
		stats:       stats,
		projection:  projection,
		log:         log,
	}
}

// VerifyCredentials renders the owner view of the user that owns token.
func (s *AccountService) VerifyCredentials(ctx context.Context, token *domain.OAuth2Token) (*domain.AccountView, error) {
	if token.UserID == "" {
		return nil, &domain.AuthError{Reason: "token is not bound to a user"}
	}

	user, err := s.credentials.FindByID(ctx, token.UserID)
	if err != nil {
		return nil, fmt.Errorf("verify credentials: %w", err)
	}

	in, err := s.load(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("verify credentials: %w", err)
	}

	if in.Actor.MovedToID != "" {
		moved, err := s.loadMoved(ctx, in.Actor.MovedToID)
		if err != nil {
			s.log.Warn().Err(err).Str("actor_id", in.Actor.MovedToID).Msg("moved-to account unavailable")
		} else {
			in.MovedTo = moved
		}
	}

	view := s.projection.ProjectOwn(in)
	return &view, nil
}

func (s *AccountService) load(ctx context.Context, user *domain.User) (ProjectionInput, error) {
	actor, err := s.accounts.FindActorByUserID(ctx, user.ID)
	if err != nil {
		return ProjectionInput{}, err
	}
	counts, err := s.stats.Counts(ctx, actor.ID)
	if err != nil {
		return ProjectionInput{}, err
	}
	return ProjectionInput{User: user, Actor: actor, Counts: counts}, nil
}

func (s *AccountService) loadMoved(ctx context.Context, actorID string) (*ProjectionInput, error) {
	actor, err := s.accounts.FindActorByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	user, err := s.credentials.FindByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("moved-to actor %s has no local user: %w", actorID, err)
		}
		return nil, err
	}
	counts, err := s.stats.Counts(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return &ProjectionInput{User: user, Actor: actor, Counts: counts}, nil
}
