package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/reel2bits/accounts-api/internal/core/domain"
	"github.com/reel2bits/accounts-api/internal/core/ports"
)

const bootstrapBearer = "app-token"

type registrationFixture struct {
	store     *memAccountStore
	tokens    *stubTokenStore
	clients   *stubClientStore
	issuer    *stubIssuer
	confirmer *stubConfirmer
	svc       *RegistrationService
}

func newRegistrationFixture() *registrationFixture {
	f := &registrationFixture{
		store: newMemAccountStore(),
		tokens: newStubTokenStore(&domain.OAuth2Token{
			ClientID:    "client-1",
			AccessToken: bootstrapBearer,
			Scope:       "read write",
		}),
		clients: &stubClientStore{clients: map[string]*domain.OAuth2Client{
			"client-1": {ID: "c1", ClientID: "client-1", Scope: "read write follow"},
		}},
		issuer:    &stubIssuer{},
		confirmer: &stubConfirmer{},
	}
	exchange := NewTokenExchangeService(f.tokens, f.clients, f.issuer, zerolog.Nop())
	f.svc = NewRegistrationService(RegistrationDeps{
		Credentials: f.store,
		Roles:       f.store,
		Accounts:    f.store,
		Tokens:      exchange,
		Confirmer:   f.confirmer,
		Hasher:      stubHasher{},
		Actors:      NewActorFactory("https://reel2bits.test"),
	}, zerolog.Nop())
	return f
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func validInput(username, email string) ports.RegisterInput {
	return ports.RegisterInput{
		Username:  strPtr(username),
		Email:     strPtr(email),
		Fullname:  strPtr("Alice A"),
		Password:  strPtr("p"),
		Confirm:   strPtr("p"),
		Agreement: boolPtr(true),
		Bearer:    bootstrapBearer,
	}
}

func assertNoWrites(t *testing.T, f *registrationFixture) {
	t.Helper()
	if n := f.store.userCount(); n != 0 {
		t.Fatalf("expected no users persisted, got %d", n)
	}
	if n := f.tokens.insertCount(); n != 0 {
		t.Fatalf("expected no tokens persisted, got %d", n)
	}
}

func TestRegistrationService_Register_Success(t *testing.T) {
	f := newRegistrationFixture()
	in := validInput("alice", "a@example.com")
	in.Bio = strPtr("hello there")

	tok, err := f.svc.Register(context.Background(), in)
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if tok.AccessToken == "" {
		t.Fatalf("expected access token")
	}
	if tok.Scope != "read write follow" {
		t.Fatalf("expected client scope to be inherited, got %q", tok.Scope)
	}

	user, err := f.store.FindByName(context.Background(), "alice")
	if err != nil {
		t.Fatalf("user not persisted: %v", err)
	}
	if tok.UserID != user.ID {
		t.Fatalf("token bound to %q, want %q", tok.UserID, user.ID)
	}
	if user.PasswordHash != "hashed:p" {
		t.Fatalf("expected hashed password, got %q", user.PasswordHash)
	}
	if !user.HasRole(domain.RoleUser) {
		t.Fatalf("expected user role, got %v", user.Roles)
	}
	if user.DisplayName != "Alice A" || user.Email != "a@example.com" {
		t.Fatalf("unexpected user: %+v", user)
	}

	actor, err := f.store.FindActorByUserID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("actor not persisted: %v", err)
	}
	if actor.Summary != "hello there" {
		t.Fatalf("expected bio copied to actor summary, got %q", actor.Summary)
	}
	if actor.URL != "https://reel2bits.test/user/alice" {
		t.Fatalf("unexpected actor url %q", actor.URL)
	}

	if len(f.tokens.inserted) != 1 {
		t.Fatalf("expected one token persisted, got %d", len(f.tokens.inserted))
	}
	rec := f.tokens.inserted[0]
	if rec.UserID != user.ID || rec.ClientID != "client-1" || rec.RefreshToken != nil || rec.Revoked {
		t.Fatalf("unexpected token record: %+v", rec)
	}
	if len(f.issuer.calls) != 1 || f.issuer.calls[0].grantType != domain.GrantClientCredentials || f.issuer.calls[0].expiresIn != nil {
		t.Fatalf("unexpected mint calls: %+v", f.issuer.calls)
	}
}

func TestRegistrationService_Register_MissingFieldsAccumulate(t *testing.T) {
	f := newRegistrationFixture()

	_, err := f.svc.Register(context.Background(), ports.RegisterInput{
		Username:        strPtr("alice"),
		Password:        strPtr("p"),
		BearerMalformed: true,
	})

	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, field := range []string{"email", "fullname", "confirm", "agreement", "bearer"} {
		if len(ve.Fields[field]) == 0 {
			t.Errorf("expected error for %q, got %v", field, ve.Fields)
		}
	}
	if _, ok := ve.Fields["username"]; ok {
		t.Errorf("username was supplied and must not be reported")
	}
	if got := ve.Fields["confirm"][0]; got != "password confirm is missing" {
		t.Errorf("unexpected confirm message %q", got)
	}
	assertNoWrites(t, f)
}

func TestRegistrationService_Register_EmptyStringIsPresent(t *testing.T) {
	f := newRegistrationFixture()
	in := validInput("bob", "b@example.com")
	in.Password = strPtr("")
	in.Confirm = strPtr("")

	if _, err := f.svc.Register(context.Background(), in); err != nil {
		t.Fatalf("present but empty password should pass presence check: %v", err)
	}
}

func TestRegistrationService_Register_ConfirmMismatch(t *testing.T) {
	f := newRegistrationFixture()
	in := validInput("alice", "a@example.com")
	in.Confirm = strPtr("q")

	_, err := f.svc.Register(context.Background(), in)

	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Reason != "confirm mismatch" {
		t.Fatalf("expected confirm mismatch, got %v", err)
	}
	if ve.Fields["confirm"][0] != "passwords doesn't match" {
		t.Fatalf("unexpected field errors: %v", ve.Fields)
	}
	assertNoWrites(t, f)
}

func TestRegistrationService_Register_AgreementRequired(t *testing.T) {
	f := newRegistrationFixture()
	in := validInput("alice", "a@example.com")
	in.Agreement = boolPtr(false)

	_, err := f.svc.Register(context.Background(), in)

	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Reason != "agreement required" {
		t.Fatalf("expected agreement required, got %v", err)
	}
	assertNoWrites(t, f)
}

func TestRegistrationService_Register_HandleTaken(t *testing.T) {
	f := newRegistrationFixture()
	if _, err := f.svc.Register(context.Background(), validInput("alice", "a@example.com")); err != nil {
		t.Fatalf("first register failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		_, err := f.svc.Register(context.Background(), validInput("alice", "other@example.com"))

		var ce *domain.ConflictError
		if !errors.As(err, &ce) || ce.Reason != "handle taken" {
			t.Fatalf("attempt %d: expected handle taken, got %v", i, err)
		}
		if ce.Fields["ap_id"][0] != "has already been taken" {
			t.Fatalf("unexpected fields: %v", ce.Fields)
		}
	}

	if n := f.store.userCount(); n != 1 {
		t.Fatalf("expected exactly one user, got %d", n)
	}
	if n := f.tokens.insertCount(); n != 1 {
		t.Fatalf("expected exactly one token, got %d", n)
	}
}

func TestRegistrationService_Register_EmailTaken(t *testing.T) {
	f := newRegistrationFixture()
	if _, err := f.svc.Register(context.Background(), validInput("alice", "a@example.com")); err != nil {
		t.Fatalf("first register failed: %v", err)
	}

	_, err := f.svc.Register(context.Background(), validInput("alice2", "a@example.com"))

	var ce *domain.ConflictError
	if !errors.As(err, &ce) || ce.Reason != "email taken" {
		t.Fatalf("expected email taken, got %v", err)
	}
	if _, ok := ce.Fields["email"]; !ok {
		t.Fatalf("expected email field error, got %v", ce.Fields)
	}
}

func TestRegistrationService_Register_HandleFormat(t *testing.T) {
	illegal := []string{"al ice", "alice!", "al-ice", "al_ice", "élodie", "alice\n", "a.b"}
	for _, handle := range illegal {
		f := newRegistrationFixture()
		_, err := f.svc.Register(context.Background(), validInput(handle, "x@example.com"))

		var ve *domain.ValidationError
		if !errors.As(err, &ve) || ve.Reason != "illegal handle" {
			t.Errorf("%q: expected illegal handle, got %v", handle, err)
			continue
		}
		if ve.Fields["ap_id"][0] != "should contains only letters and numbers" {
			t.Errorf("%q: unexpected fields %v", handle, ve.Fields)
		}
		assertNoWrites(t, f)
	}

	legal := []string{"alice", "Alice", "A1", "0", "ZZtop2000"}
	for _, handle := range legal {
		f := newRegistrationFixture()
		if _, err := f.svc.Register(context.Background(), validInput(handle, "x@example.com")); err != nil {
			t.Errorf("%q: expected success, got %v", handle, err)
		}
	}
}

func TestRegistrationService_Register_EmptyHandleRejected(t *testing.T) {
	f := newRegistrationFixture()
	_, err := f.svc.Register(context.Background(), validInput("", "x@example.com"))

	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Reason != "illegal handle" {
		t.Fatalf("expected illegal handle, got %v", err)
	}
}

func TestRegistrationService_Register_MissingRoleIsServerError(t *testing.T) {
	f := newRegistrationFixture()
	delete(f.store.roles, domain.RoleUser)

	_, err := f.svc.Register(context.Background(), validInput("alice", "a@example.com"))

	var se *domain.ServerError
	if !errors.As(err, &se) {
		t.Fatalf("expected ServerError, got %v", err)
	}
	if !errors.Is(err, domain.ErrRoleNotFound) {
		t.Fatalf("expected cause ErrRoleNotFound, got %v", err)
	}
	assertNoWrites(t, f)
}

func TestRegistrationService_Register_UnknownBearerWritesNothing(t *testing.T) {
	for _, bearer := range []string{"", "nope"} {
		f := newRegistrationFixture()
		in := validInput("alice", "a@example.com")
		in.Bearer = bearer

		_, err := f.svc.Register(context.Background(), in)

		var ae *domain.AuthError
		if !errors.As(err, &ae) || ae.Reason != "invalid bearer" {
			t.Fatalf("bearer %q: expected invalid bearer, got %v", bearer, err)
		}
		assertNoWrites(t, f)
	}
}

func TestRegistrationService_Register_DanglingBearerClient(t *testing.T) {
	f := newRegistrationFixture()
	delete(f.clients.clients, "client-1")

	_, err := f.svc.Register(context.Background(), validInput("alice", "a@example.com"))

	var ae *domain.AuthError
	if !errors.As(err, &ae) || ae.Reason != "unknown client" {
		t.Fatalf("expected unknown client, got %v", err)
	}
	assertNoWrites(t, f)
}

func TestRegistrationService_Register_StoreLookupFailure(t *testing.T) {
	f := newRegistrationFixture()
	f.store.lookupErr = errStoreDown

	_, err := f.svc.Register(context.Background(), validInput("alice", "a@example.com"))

	var se *domain.ServerError
	if !errors.As(err, &se) || !errors.Is(err, errStoreDown) {
		t.Fatalf("expected ServerError wrapping store failure, got %v", err)
	}
}

func TestRegistrationService_Register_CreateFailureSkipsToken(t *testing.T) {
	f := newRegistrationFixture()
	f.store.createErr = errStoreDown

	_, err := f.svc.Register(context.Background(), validInput("alice", "a@example.com"))

	var se *domain.ServerError
	if !errors.As(err, &se) {
		t.Fatalf("expected ServerError, got %v", err)
	}
	if len(f.issuer.calls) != 0 || f.tokens.insertCount() != 0 {
		t.Fatalf("token exchange must not run after failed commit")
	}
}

func TestRegistrationService_Register_ConfirmationFailureIgnored(t *testing.T) {
	f := newRegistrationFixture()
	f.confirmer.required = true
	f.confirmer.sendErr = errors.New("queue full")

	tok, err := f.svc.Register(context.Background(), validInput("alice", "a@example.com"))
	if err != nil {
		t.Fatalf("confirmation failure must not fail registration: %v", err)
	}
	if len(f.confirmer.sent) != 1 || f.confirmer.sent[0] != tok.UserID {
		t.Fatalf("expected confirmation triggered for new user, got %v", f.confirmer.sent)
	}
}

func TestRegistrationService_Register_NoConfirmationWhenNotRequired(t *testing.T) {
	f := newRegistrationFixture()

	if _, err := f.svc.Register(context.Background(), validInput("alice", "a@example.com")); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if len(f.confirmer.sent) != 0 {
		t.Fatalf("expected no confirmation, got %v", f.confirmer.sent)
	}
}

func TestRegistrationService_Register_ConcurrentSameHandle(t *testing.T) {
	f := newRegistrationFixture()
	f.store.barrier = &sync.WaitGroup{}
	f.store.barrier.Add(2)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			email := []string{"one@example.com", "two@example.com"}[i]
			_, errs[i] = f.svc.Register(context.Background(), validInput("racer", email))
		}(i)
	}
	wg.Wait()

	successes, conflicts := 0, 0
	for _, err := range errs {
		var ce *domain.ConflictError
		switch {
		case err == nil:
			successes++
		case errors.As(err, &ce) && ce.Reason == "handle taken":
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 || conflicts != 1 {
		t.Fatalf("expected one success and one conflict, got %d/%d", successes, conflicts)
	}
	if n := f.store.userCount(); n != 1 {
		t.Fatalf("expected one user, got %d", n)
	}
	if n := f.tokens.insertCount(); n != 1 {
		t.Fatalf("expected one token, got %d", n)
	}
}

func TestRegistrationService_Register_StoreEmailRaceTranslated(t *testing.T) {
	f := newRegistrationFixture()
	f.store.createErr = domain.ErrDuplicateEmail

	_, err := f.svc.Register(context.Background(), validInput("alice", "a@example.com"))

	var ce *domain.ConflictError
	if !errors.As(err, &ce) || ce.Reason != "email taken" {
		t.Fatalf("expected email taken, got %v", err)
	}
	if !strings.Contains(ce.Fields.String(), "has already been taken") {
		t.Fatalf("unexpected fields: %s", ce.Fields)
	}
}
