package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/reel2bits/accounts-api/internal/core/domain"
	"github.com/reel2bits/accounts-api/internal/core/ports"
)

// DefaultTokenTTL is applied when neither the caller nor the configuration
// sets an expiry.
const DefaultTokenTTL = 240 * time.Hour

// JWTIssuer mints HS256 signed access tokens.
type JWTIssuer struct {
	secret     []byte
	issuer     string
	defaultTTL time.Duration
	now        func() time.Time
}

func NewJWTIssuer(secret, issuer string, defaultTTL time.Duration) *JWTIssuer {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTokenTTL
	}
	return &JWTIssuer{
		secret:     []byte(secret),
		issuer:     issuer,
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
}

// Mint signs a token for user. A nil expiresIn uses the issuer default; a
// zero value yields a token without expiry.
func (i *JWTIssuer) Mint(clientID, grantType string, user *domain.User, scope string, expiresIn *time.Duration) (ports.MintedToken, error) {
	if len(i.secret) == 0 {
		return ports.MintedToken{}, errors.New("token issuer: signing secret is empty")
	}
	if user == nil {
		return ports.MintedToken{}, errors.New("token issuer: user is required")
	}

	ttl := i.defaultTTL
	if expiresIn != nil {
		ttl = *expiresIn
	}

	now := i.now()
	claims := jwt.MapClaims{
		"sub":        user.ID,
		"username":   user.Name,
		"client_id":  clientID,
		"scope":      scope,
		"grant_type": grantType,
		"jti":        uuid.NewString(),
		"iat":        now.Unix(),
	}
	if i.issuer != "" {
		claims["iss"] = i.issuer
	}
	if ttl > 0 {
		claims["exp"] = now.Add(ttl).Unix()
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return ports.MintedToken{}, err
	}

	return ports.MintedToken{
		TokenType:   domain.TokenTypeBearer,
		AccessToken: signed,
		Scope:       scope,
		ExpiresIn:   int64(ttl / time.Second),
	}, nil
}
