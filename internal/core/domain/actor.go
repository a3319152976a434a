package domain

import "time"

// ProfileField is a custom name/value pair shown on a profile.
type ProfileField struct {
	Name       string     `json:"name" bson:"name"`
	Value      string     `json:"value" bson:"value"`
	VerifiedAt *time.Time `json:"verified_at,omitempty" bson:"verified_at,omitempty"`
}

// Emoji is a custom emoji referenced from a profile.
type Emoji struct {
	Shortcode       string `json:"shortcode" bson:"shortcode"`
	StaticURL       string `json:"static_url" bson:"static_url"`
	URL             string `json:"url" bson:"url"`
	VisibleInPicker bool   `json:"visible_in_picker" bson:"visible_in_picker"`
}

// Actor is the federated identity of a User. Every user owns exactly one
// actor, created in the same transaction; UserID is the back-reference.
type Actor struct {
	ID                string         `json:"id"`
	UserID            string         `json:"user_id"`
	PreferredUsername string         `json:"preferred_username"`
	Name              string         `json:"name"`
	Summary           string         `json:"summary"`
	URL               string         `json:"url"`
	InboxURL          string         `json:"inbox_url"`
	OutboxURL         string         `json:"outbox_url"`
	FollowersURL      string         `json:"followers_url"`
	FollowingURL      string         `json:"following_url"`
	AvatarURL         string         `json:"avatar_url,omitempty"`
	HeaderURL         string         `json:"header_url,omitempty"`
	Locked            bool           `json:"locked"`
	Bot               bool           `json:"bot"`
	MovedToID         string         `json:"moved_to_id,omitempty"`
	Fields            []ProfileField `json:"fields,omitempty"`
	Emojis            []Emoji        `json:"emojis,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
}
