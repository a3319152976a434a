package domain

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Role is a named permission group. Roles are provisioned out of band and
// attached to users by name.
type Role struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// User is the local account record. Name and Email are unique and immutable
// once created; they are the identifiers used for login lookup.
type User struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email,omitempty"`
	DisplayName  string     `json:"display_name"`
	PasswordHash string     `json:"-"`
	Roles        []string   `json:"roles"`
	Active       bool       `json:"active"`
	Locale       string     `json:"locale,omitempty"`
	ConfirmedAt  *time.Time `json:"confirmed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// HasRole reports whether the user carries the named role.
func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r == name {
			return true
		}
	}
	return false
}

// Confirmed reports whether the user has completed email confirmation.
func (u *User) Confirmed() bool {
	return u.ConfirmedAt != nil && !u.ConfirmedAt.IsZero()
}
