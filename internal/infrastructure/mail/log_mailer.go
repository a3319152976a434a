// Package mail holds Mailer implementations.
package mail

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/reel2bits/accounts-api/internal/core/domain"
	"github.com/reel2bits/accounts-api/internal/core/ports"
)

var _ ports.Mailer = (*LogMailer)(nil)

// LogMailer writes confirmation links to the log instead of sending mail. It
// is the development mailer and the fallback when no SMTP relay is configured.
type LogMailer struct {
	log zerolog.Logger
}

func NewLogMailer(log zerolog.Logger) *LogMailer {
	return &LogMailer{log: log.With().Str("component", "mailer").Logger()}
}

func (m *LogMailer) SendConfirmation(ctx context.Context, user domain.User, link string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.log.Info().
		Str("user_id", user.ID).
		Str("email", user.Email).
		Str("link", link).
		Msg("confirmation instructions")
	return nil
}
