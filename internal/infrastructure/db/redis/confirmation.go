package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/reel2bits/accounts-api/internal/core/domain"
	"github.com/reel2bits/accounts-api/internal/core/ports"
)

var _ ports.ConfirmationTokens = (*ConfirmationStore)(nil)

// ConfirmationStore keeps single use confirmation tokens in Redis.
// Key format: confirm:<token>, value is the user id.
type ConfirmationStore struct {
	client *redis.Client
}

func NewConfirmationStore(client *redis.Client) *ConfirmationStore {
	return &ConfirmationStore{client: client}
}

// Issue creates a fresh token for userID that expires after ttl.
func (s *ConfirmationStore) Issue(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	ok, err := s.client.SetNX(ctx, s.key(token), userID, ttl).Result()
	if err != nil {
		return "", fmt.Errorf("store confirmation token: %w", err)
	}
	if !ok {
		return "", errors.New("confirmation token collision")
	}
	return token, nil
}

// Consume returns the user id bound to token and deletes it atomically, so a
// token confirms at most once.
func (s *ConfirmationStore) Consume(ctx context.Context, token string) (string, error) {
	userID, err := s.client.GetDel(ctx, s.key(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", domain.ErrConfirmationNotFound
		}
		return "", fmt.Errorf("consume confirmation token: %w", err)
	}
	return userID, nil
}

func (s *ConfirmationStore) key(token string) string {
	return "confirm:" + token
}
