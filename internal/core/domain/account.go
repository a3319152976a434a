package domain

// AccountCounts carries the social counters shown on an account.
type AccountCounts struct {
	Followers int64
	Following int64
	Statuses  int64
}

// AccountSource holds the editable profile source attached to the owner's
// own account view.
type AccountSource struct {
	Privacy   *string        `json:"privacy"`
	Sensitive *bool          `json:"sensitive"`
	Language  *string        `json:"language"`
	Note      string         `json:"note"`
	Fields    []ProfileField `json:"fields"`
}

// AccountPleroma carries the pleroma extension block.
type AccountPleroma struct {
	IsAdmin bool `json:"is_admin"`
}

// AccountView is the external account representation.
type AccountView struct {
	ID             string          `json:"id"`
	Username       string          `json:"username"`
	Acct           string          `json:"acct"`
	DisplayName    string          `json:"display_name"`
	Locked         bool            `json:"locked"`
	CreatedAt      int64           `json:"created_at"`
	FollowersCount int64           `json:"followers_count"`
	FollowingCount int64           `json:"following_count"`
	StatusesCount  int64           `json:"statuses_count"`
	Note           string          `json:"note"`
	URL            string          `json:"url"`
	Avatar         string          `json:"avatar"`
	AvatarStatic   string          `json:"avatar_static"`
	Header         string          `json:"header"`
	HeaderStatic   string          `json:"header_static"`
	Emojis         []Emoji         `json:"emojis"`
	Moved          *AccountView    `json:"moved"`
	Fields         []ProfileField  `json:"fields"`
	Bot            bool            `json:"bot"`
	Source         *AccountSource  `json:"source,omitempty"`
	Pleroma        *AccountPleroma `json:"pleroma,omitempty"`
}
