package ports

import (
	"context"
	"time"

	"github.com/reel2bits/accounts-api/internal/core/domain"
)

// MintedToken is what the issuer hands back for a grant.
type MintedToken struct {
	TokenType   string
	AccessToken string
	Scope       string
	ExpiresIn   int64
}

// TokenIssuer mints access tokens. A nil expiresIn applies the issuer default.
type TokenIssuer interface {
	Mint(clientID, grantType string, user *domain.User, scope string, expiresIn *time.Duration) (MintedToken, error)
}

// IssuedToken is a persisted, user bound token returned to the caller.
type IssuedToken struct {
	AccessToken string
	TokenType   string
	Scope       string
	ExpiresIn   int64
	CreatedAt   time.Time
	UserID      string
	ClientID    string
}

// TokenExchanger swaps a client level bootstrap bearer for a user token.
type TokenExchanger interface {
	// ResolveClient maps a bootstrap bearer to the client that owns it.
	ResolveClient(ctx context.Context, bearer string) (*domain.OAuth2Client, error)
	// Issue mints and persists a token for user on behalf of client.
	Issue(ctx context.Context, client *domain.OAuth2Client, user *domain.User) (*IssuedToken, error)
	// Exchange is ResolveClient followed by Issue.
	Exchange(ctx context.Context, bearer string, user *domain.User) (*IssuedToken, error)
}
