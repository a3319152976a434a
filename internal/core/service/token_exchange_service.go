package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/reel2bits/accounts-api/internal/core/domain"
	"github.com/reel2bits/accounts-api/internal/core/ports"
)

// TokenExchangeService maps a bootstrap bearer to its client and mints a
// user scoped token bound to that client.
type TokenExchangeService struct {
	tokens  ports.TokenStore
	clients ports.ClientStore
	issuer  ports.TokenIssuer
	log     zerolog.Logger
	now     func() time.Time
}

func NewTokenExchangeService(tokens ports.TokenStore, clients ports.ClientStore, issuer ports.TokenIssuer, log zerolog.Logger) *TokenExchangeService {
	return &TokenExchangeService{
		tokens:  tokens,
		clients: clients,
		issuer:  issuer,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// ResolveClient looks the bearer up by exact access token match and returns
// the client owning it. An absent bearer and an unknown bearer yield the same
// error; only the log line differs.
func (s *TokenExchangeService) ResolveClient(ctx context.Context, bearer string) (*domain.OAuth2Client, error) {
	if bearer == "" {
		s.log.Info().Msg("token exchange: no bearer supplied")
		return nil, &domain.AuthError{Reason: "invalid bearer"}
	}

	bt, err := s.tokens.FindByAccessToken(ctx, bearer)
	if err != nil {
		if errors.Is(err, domain.ErrTokenNotFound) {
			s.log.Warn().Msg("token exchange: bearer not found")
			return nil, &domain.AuthError{Reason: "invalid bearer"}
		}
		return nil, &domain.ServerError{Reason: "lookup bearer", Err: err}
	}

	client, err := s.clients.FindByClientID(ctx, bt.ClientID)
	if err != nil {
		if errors.Is(err, domain.ErrClientNotFound) {
			s.log.Warn().Str("client_id", bt.ClientID).Msg("token exchange: bearer references unknown client")
			return nil, &domain.AuthError{Reason: "unknown client"}
		}
		return nil, &domain.ServerError{Reason: "lookup client", Err: err}
	}
	return client, nil
}

// Issue mints a client_credentials token for user inheriting the client's
// scope and persists it. The bootstrap flow never issues a refresh token.
func (s *TokenExchangeService) Issue(ctx context.Context, client *domain.OAuth2Client, user *domain.User) (*ports.IssuedToken, error) {
	minted, err := s.issuer.Mint(client.ClientID, domain.GrantClientCredentials, user, client.Scope, nil)
	if err != nil {
		return nil, &domain.ServerError{Reason: "mint token", Err: err}
	}

	record := &domain.OAuth2Token{
		UserID:       user.ID,
		ClientID:     client.ClientID,
		TokenType:    minted.TokenType,
		AccessToken:  minted.AccessToken,
		RefreshToken: nil,
		Scope:        minted.Scope,
		Revoked:      false,
		IssuedAt:     s.now(),
		ExpiresIn:    minted.ExpiresIn,
	}

	saved, err := s.tokens.Insert(ctx, record)
	if err != nil {
		return nil, &domain.ServerError{Reason: "persist token", Err: err}
	}

	s.log.Info().Str("user_id", user.ID).Str("client_id", client.ClientID).Msg("user token issued")

	return &ports.IssuedToken{
		AccessToken: minted.AccessToken,
		TokenType:   minted.TokenType,
		Scope:       minted.Scope,
		ExpiresIn:   minted.ExpiresIn,
		CreatedAt:   saved.IssuedAt,
		UserID:      user.ID,
		ClientID:    client.ClientID,
	}, nil
}

func (s *TokenExchangeService) Exchange(ctx context.Context, bearer string, user *domain.User) (*ports.IssuedToken, error) {
	client, err := s.ResolveClient(ctx, bearer)
	if err != nil {
		return nil, err
	}
	return s.Issue(ctx, client, user)
}
