package ports

import (
	"context"

	"github.com/reel2bits/accounts-api/internal/core/domain"
)

// TokenStore persists issued OAuth2 tokens.
type TokenStore interface {
	FindByAccessToken(ctx context.Context, accessToken string) (*domain.OAuth2Token, error)
	Insert(ctx context.Context, token *domain.OAuth2Token) (*domain.OAuth2Token, error)
}

// ClientStore resolves registered OAuth2 applications.
type ClientStore interface {
	FindByClientID(ctx context.Context, clientID string) (*domain.OAuth2Client, error)
}
