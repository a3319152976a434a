package mail

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/reel2bits/accounts-api/internal/core/domain"
)

func TestLogMailer_WritesLink(t *testing.T) {
	var buf bytes.Buffer
	m := NewLogMailer(zerolog.New(&buf))

	user := domain.User{ID: "u1", Email: "alice@example.com"}
	if err := m.SendConfirmation(context.Background(), user, "https://reel2bits.test/confirm?token=abc"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{`"user_id":"u1"`, `"email":"alice@example.com"`, "token=abc", `"component":"mailer"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("log output %q missing %q", out, want)
		}
	}
}

func TestLogMailer_CancelledContext(t *testing.T) {
	m := NewLogMailer(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := m.SendConfirmation(ctx, domain.User{ID: "u1"}, "link"); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
