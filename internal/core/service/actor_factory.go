package service

import (
	"strings"
	"time"

	"github.com/reel2bits/accounts-api/internal/core/domain"
)

// ActorFactory builds the actor record for a new local user.
type ActorFactory struct {
	instanceURL string
}

func NewActorFactory(instanceURL string) *ActorFactory {
	return &ActorFactory{instanceURL: strings.TrimRight(instanceURL, "/")}
}

// NewActor returns an unsaved actor for user. UserID is filled in by the
// store once the user id is known.
func (f *ActorFactory) NewActor(user *domain.User, now time.Time) *domain.Actor {
	base := f.instanceURL + "/user/" + user.Name
	return &domain.Actor{
		UserID:            user.ID,
		PreferredUsername: user.Name,
		Name:              user.DisplayName,
		URL:               base,
		InboxURL:          base + "/inbox",
		OutboxURL:         base + "/outbox",
		FollowersURL:      base + "/followers",
		FollowingURL:      base + "/followings",
		CreatedAt:         now,
	}
}
