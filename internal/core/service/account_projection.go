package service

import (
	"github.com/reel2bits/accounts-api/internal/core/domain"
)

// ProjectionInput is one persisted user with its actor and counters. MovedTo
// is the already loaded account the actor moved to, if any.
type ProjectionInput struct {
	User    *domain.User
	Actor   *domain.Actor
	Counts  domain.AccountCounts
	MovedTo *ProjectionInput
}

// AccountProjection renders users into the external account representation.
// It performs no I/O and no validation.
type AccountProjection struct {
	defaultAvatar string
	defaultHeader string
}

func NewAccountProjection(defaultAvatar, defaultHeader string) *AccountProjection {
	return &AccountProjection{defaultAvatar: defaultAvatar, defaultHeader: defaultHeader}
}

// Project renders the public view of in.
func (p *AccountProjection) Project(in ProjectionInput) domain.AccountView {
	u, a := in.User, in.Actor

	avatar := a.AvatarURL
	if avatar == "" {
		avatar = p.defaultAvatar
	}
	header := a.HeaderURL
	if header == "" {
		header = p.defaultHeader
	}

	view := domain.AccountView{
		ID:             u.ID,
		Username:       u.Name,
		Acct:           u.Name,
		DisplayName:    u.DisplayName,
		Locked:         a.Locked,
		CreatedAt:      u.CreatedAt.Unix(),
		FollowersCount: in.Counts.Followers,
		FollowingCount: in.Counts.Following,
		StatusesCount:  in.Counts.Statuses,
		Note:           a.Summary,
		URL:            a.URL,
		Avatar:         avatar,
		AvatarStatic:   avatar,
		Header:         header,
		HeaderStatic:   header,
		Emojis:         nonNilEmojis(a.Emojis),
		Fields:         nonNilFields(a.Fields),
		Bot:            a.Bot,
	}
	if in.MovedTo != nil {
		moved := p.Project(*in.MovedTo)
		view.Moved = &moved
	}
	return view
}

// ProjectOwn renders the view shown to the account's owner, which adds the
// profile source and the pleroma extension.
func (p *AccountProjection) ProjectOwn(in ProjectionInput) domain.AccountView {
	view := p.Project(in)
	var language *string
	if in.User.Locale != "" {
		lang := in.User.Locale
		language = &lang
	}
	view.Source = &domain.AccountSource{
		Language: language,
		Note:     in.Actor.Summary,
		Fields:   nonNilFields(in.Actor.Fields),
	}
	view.Pleroma = &domain.AccountPleroma{IsAdmin: in.User.HasRole(domain.RoleAdmin)}
	return view
}

func nonNilEmojis(e []domain.Emoji) []domain.Emoji {
	if e == nil {
		return []domain.Emoji{}
	}
	return e
}

func nonNilFields(f []domain.ProfileField) []domain.ProfileField {
	if f == nil {
		return []domain.ProfileField{}
	}
	return f
}
