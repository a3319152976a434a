package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/reel2bits/accounts-api/internal/core/domain"
	"github.com/reel2bits/accounts-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory account store: credentials, roles, actors.
// Name and email uniqueness is enforced on insert, like the real indexes.
// ---------------------------------------------------------------------------

type memAccountStore struct {
	mu        sync.Mutex
	users     map[string]*domain.User // by id
	actors    map[string]*domain.Actor
	roles     map[string]*domain.Role
	seq       int
	writes    int
	createErr error
	lookupErr error
	// barrier, when set, holds every CreateWithActor call until all
	// participants have arrived, so concurrent callers all pass the pre-check.
	barrier *sync.WaitGroup
}

func newMemAccountStore() *memAccountStore {
	return &memAccountStore{
		users:  make(map[string]*domain.User),
		actors: make(map[string]*domain.Actor),
		roles:  map[string]*domain.Role{domain.RoleUser: {ID: "r1", Name: domain.RoleUser}},
	}
}

func (s *memAccountStore) FindByName(_ context.Context, name string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	for _, u := range s.users {
		if u.Name == name {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (s *memAccountStore) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	for _, u := range s.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (s *memAccountStore) FindByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (s *memAccountStore) MarkConfirmed(_ context.Context, userID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.ConfirmedAt = &at
	s.writes++
	return nil
}

func (s *memAccountStore) FindRoleByName(_ context.Context, name string) (*domain.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.roles[name]
	if !ok {
		return nil, domain.ErrRoleNotFound
	}
	return r, nil
}

func (s *memAccountStore) CreateWithActor(_ context.Context, user *domain.User, actor *domain.Actor) (*domain.User, *domain.Actor, error) {
	if s.barrier != nil {
		s.barrier.Done()
		s.barrier.Wait()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return nil, nil, s.createErr
	}
	for _, u := range s.users {
		if u.Name == user.Name {
			return nil, nil, domain.ErrDuplicateName
		}
		if u.Email == user.Email {
			return nil, nil, domain.ErrDuplicateEmail
		}
	}

	s.seq++
	u := *user
	u.ID = fmt.Sprintf("u%d", s.seq)
	a := *actor
	a.ID = fmt.Sprintf("a%d", s.seq)
	a.UserID = u.ID
	s.users[u.ID] = &u
	s.actors[a.ID] = &a
	s.writes += 2

	cu, ca := u, a
	return &cu, &ca, nil
}

func (s *memAccountStore) FindActorByUserID(_ context.Context, userID string) (*domain.Actor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.actors {
		if a.UserID == userID {
			clone := *a
			return &clone, nil
		}
	}
	return nil, domain.ErrActorNotFound
}

func (s *memAccountStore) FindActorByID(_ context.Context, id string) (*domain.Actor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.actors[id]
	if !ok {
		return nil, domain.ErrActorNotFound
	}
	clone := *a
	return &clone, nil
}

func (s *memAccountStore) userCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// ---------------------------------------------------------------------------
// Token and client stores
// ---------------------------------------------------------------------------

type stubTokenStore struct {
	mu        sync.Mutex
	byAccess  map[string]*domain.OAuth2Token
	inserted  []*domain.OAuth2Token
	insertErr error
	findErr   error
}

func newStubTokenStore(seed ...*domain.OAuth2Token) *stubTokenStore {
	s := &stubTokenStore{byAccess: make(map[string]*domain.OAuth2Token)}
	for _, t := range seed {
		s.byAccess[t.AccessToken] = t
	}
	return s
}

func (s *stubTokenStore) FindByAccessToken(_ context.Context, accessToken string) (*domain.OAuth2Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	t, ok := s.byAccess[accessToken]
	if !ok {
		return nil, domain.ErrTokenNotFound
	}
	clone := *t
	return &clone, nil
}

func (s *stubTokenStore) Insert(_ context.Context, token *domain.OAuth2Token) (*domain.OAuth2Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return nil, s.insertErr
	}
	if _, exists := s.byAccess[token.AccessToken]; exists {
		return nil, domain.ErrDuplicateToken
	}
	clone := *token
	clone.ID = fmt.Sprintf("t%d", len(s.inserted)+1)
	s.byAccess[clone.AccessToken] = &clone
	s.inserted = append(s.inserted, &clone)
	out := clone
	return &out, nil
}

func (s *stubTokenStore) insertCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inserted)
}

type stubClientStore struct {
	clients map[string]*domain.OAuth2Client
	err     error
}

func (s *stubClientStore) FindByClientID(_ context.Context, clientID string) (*domain.OAuth2Client, error) {
	if s.err != nil {
		return nil, s.err
	}
	c, ok := s.clients[clientID]
	if !ok {
		return nil, domain.ErrClientNotFound
	}
	return c, nil
}

// ---------------------------------------------------------------------------
// Issuer, hasher, confirmer, stats
// ---------------------------------------------------------------------------

type stubIssuer struct {
	mu    sync.Mutex
	n     int
	err   error
	calls []issuerCall
}

type issuerCall struct {
	clientID, grantType, userID, scope string
	expiresIn                          *time.Duration
}

func (i *stubIssuer) Mint(clientID, grantType string, user *domain.User, scope string, expiresIn *time.Duration) (ports.MintedToken, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.calls = append(i.calls, issuerCall{clientID, grantType, user.ID, scope, expiresIn})
	if i.err != nil {
		return ports.MintedToken{}, i.err
	}
	i.n++
	return ports.MintedToken{
		TokenType:   domain.TokenTypeBearer,
		AccessToken: fmt.Sprintf("minted-%d", i.n),
		Scope:       scope,
		ExpiresIn:   3600,
	}, nil
}

type stubHasher struct{ err error }

func (h stubHasher) Hash(password string) (string, error) {
	if h.err != nil {
		return "", h.err
	}
	return "hashed:" + password, nil
}

type stubConfirmer struct {
	mu       sync.Mutex
	required bool
	sendErr  error
	sent     []string
}

func (c *stubConfirmer) RequiresConfirmation(user *domain.User) bool {
	return c.required && !user.Confirmed()
}

func (c *stubConfirmer) SendConfirmation(_ context.Context, user *domain.User) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, user.ID)
	return c.sendErr
}

type stubStats struct {
	counts map[string]domain.AccountCounts
	err    error
}

func (s stubStats) Counts(_ context.Context, actorID string) (domain.AccountCounts, error) {
	if s.err != nil {
		return domain.AccountCounts{}, s.err
	}
	return s.counts[actorID], nil
}

var errStoreDown = errors.New("store unavailable")
