package ports

import (
	"context"

	"github.com/reel2bits/accounts-api/internal/core/domain"
)

// AccountService renders accounts for authenticated callers.
type AccountService interface {
	// VerifyCredentials returns the account of the user that owns token.
	VerifyCredentials(ctx context.Context, token *domain.OAuth2Token) (*domain.AccountView, error)
}
