package domain

import (
	"strings"
	"time"
)

const (
	GrantClientCredentials = "client_credentials"
	TokenTypeBearer        = "Bearer"
	ScopeRead              = "read"
)

// OAuth2Client is an application registered out of band.
type OAuth2Client struct {
	ID           string    `json:"id"`
	ClientID     string    `json:"client_id"`
	ClientName   string    `json:"client_name"`
	RedirectURIs []string  `json:"redirect_uris,omitempty"`
	Scope        string    `json:"scope"`
	Website      string    `json:"website,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// OAuth2Token is a single issued token. AccessToken values are unique and
// opaque. Revoked is the only field that changes after issuance.
type OAuth2Token struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id,omitempty"`
	ClientID     string    `json:"client_id"`
	TokenType    string    `json:"token_type"`
	AccessToken  string    `json:"access_token"`
	RefreshToken *string   `json:"refresh_token"`
	Scope        string    `json:"scope"`
	Revoked      bool      `json:"revoked"`
	IssuedAt     time.Time `json:"issued_at"`
	ExpiresIn    int64     `json:"expires_in"`
}

// Expired reports whether the token is past its expiry at now. A zero
// ExpiresIn never expires.
func (t *OAuth2Token) Expired(now time.Time) bool {
	if t.ExpiresIn <= 0 {
		return false
	}
	return now.After(t.IssuedAt.Add(time.Duration(t.ExpiresIn) * time.Second))
}

// HasScope reports whether the space separated scope string contains want.
func (t *OAuth2Token) HasScope(want string) bool {
	return ScopeContains(t.Scope, want)
}

// ScopeContains reports whether a space separated scope string grants want.
func ScopeContains(scope, want string) bool {
	for _, s := range strings.Fields(scope) {
		if s == want {
			return true
		}
	}
	return false
}
