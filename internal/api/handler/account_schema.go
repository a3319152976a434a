package handler

import (
	"github.com/reel2bits/accounts-api/internal/core/domain"
	"github.com/reel2bits/accounts-api/internal/core/ports"
)

// tokenResponse is returned by a successful registration.
type tokenResponse struct {
	AccessToken string `json:"access_token" example:"eyJhbGciOiJIUzI1NiIs..."`
	TokenType   string `json:"token_type"   example:"Bearer"`
	Scope       string `json:"scope"        example:"read write follow"`
	ExpiresIn   int64  `json:"expires_in"   example:"864000"`
	CreatedAt   int64  `json:"created_at"   example:"1714564800"`
}

func toTokenResponse(t *ports.IssuedToken) tokenResponse {
	return tokenResponse{
		AccessToken: t.AccessToken,
		TokenType:   t.TokenType,
		Scope:       t.Scope,
		ExpiresIn:   t.ExpiresIn,
		CreatedAt:   t.CreatedAt.Unix(),
	}
}

type confirmRequest struct {
	Token string `json:"token" validate:"required"`
}

type confirmResponse struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	ConfirmedAt string `json:"confirmed_at"`
}

func toConfirmResponse(u *domain.User) confirmResponse {
	resp := confirmResponse{ID: u.ID, Username: u.Name}
	if u.ConfirmedAt != nil {
		resp.ConfirmedAt = u.ConfirmedAt.UTC().Format("2006-01-02T15:04:05.000Z")
	}
	return resp
}
