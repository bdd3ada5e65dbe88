// Package session owns the authentication lifecycle: who is logged in,
// and whether we know yet.
//
// The store is not a general state manager. It holds exactly one user
// record and a loading flag, and exposes four mutating operations plus
// reads. It is constructed once at process start and injected into the
// commands that need it; there is no package-level global.
package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/haivler/haivler-cli/internal/api"
)

// State is the logical authentication state.
type State int

const (
	// StateUnknown is the initial state, before rehydration has run.
	StateUnknown State = iota

	// StateAuthenticated means a user record is held.
	StateAuthenticated

	// StateAnonymous means no user is logged in.
	StateAnonymous
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// Gateway is the slice of the API client the store needs. The concrete
// *api.Client satisfies it.
type Gateway interface {
	Login(ctx context.Context, creds api.Credentials) (*api.TokenGrant, error)
	Register(ctx context.Context, reg api.Registration) (*api.UserRecord, error)
	UserProfile(ctx context.Context) (*api.UserRecord, error)
}

// TokenStore is the slice of the cookie store the store needs: presence
// checks for rehydration and purging on logout or unverifiable tokens.
type TokenStore interface {
	Get() string
	Clear() error
}

// Store holds the client-side belief about which user is authenticated.
// Thread-safe; the mutex is never held across a network call.
type Store struct {
	gw     Gateway
	tokens TokenStore
	logger *slog.Logger

	mu      sync.RWMutex
	user    *api.UserRecord
	loading bool
	state   State
}

// New creates a Store in StateUnknown. Call Init to rehydrate.
func New(gw Gateway, tokens TokenStore, logger *slog.Logger) *Store {
	return &Store{
		gw:     gw,
		tokens: tokens,
		logger: logger,
		state:  StateUnknown,
	}
}

// Init rehydrates the session at process start. The persisted token's
// presence is the sole signal: no token means anonymous with no network
// call. A token that cannot be verified (profile fetch fails for any
// reason) is treated as equivalent to no token: it is purged and the
// session starts anonymous.
func (s *Store) Init(ctx context.Context) {
	if s.tokens.Get() == "" {
		s.setAnonymous()
		return
	}

	user, err := s.gw.UserProfile(ctx)
	if err != nil {
		s.logger.Debug("stored token unverifiable, purging", "error", err)
		if cerr := s.tokens.Clear(); cerr != nil {
			s.logger.Warn("failed to clear token", "error", cerr)
		}
		s.setAnonymous()
		return
	}

	s.mu.Lock()
	s.user = user
	s.state = StateAuthenticated
	s.loading = false
	s.mu.Unlock()

	s.logger.Debug("session rehydrated", "username", user.Username)
}

// Login authenticates and, on success, immediately fetches the full
// profile and transitions to StateAuthenticated. On failure the session
// stays anonymous and the gateway's error is returned unchanged. The
// loading flag is cleared on every path.
func (s *Store) Login(ctx context.Context, creds api.Credentials) (*api.UserRecord, error) {
	s.setLoading(true)
	defer s.setLoading(false)

	if _, err := s.gw.Login(ctx, creds); err != nil {
		s.setAnonymous()
		return nil, err
	}

	user, err := s.gw.UserProfile(ctx)
	if err != nil {
		// Token was granted but cannot be verified; same defensive cleanup
		// as Init.
		if cerr := s.tokens.Clear(); cerr != nil {
			s.logger.Warn("failed to clear token", "error", cerr)
		}
		s.setAnonymous()
		return nil, err
	}

	s.mu.Lock()
	s.user = user
	s.state = StateAuthenticated
	s.mu.Unlock()

	return copyUser(user), nil
}

// Register creates an account, passing the gateway's result through
// verbatim. It does not log the new user in: the product requires an
// explicit login after signup.
func (s *Store) Register(ctx context.Context, reg api.Registration) (*api.UserRecord, error) {
	return s.gw.Register(ctx, reg)
}

// Logout synchronously ends the session: the in-memory user is cleared and
// the token cookie purged. No server round trip is required for logout to
// take local effect.
func (s *Store) Logout() {
	s.mu.Lock()
	s.user = nil
	s.state = StateAnonymous
	s.mu.Unlock()

	if err := s.tokens.Clear(); err != nil {
		s.logger.Warn("failed to clear token on logout", "error", err)
	}
}

// UpdateUser wholesale-replaces the cached user record. The caller is
// responsible for having already persisted the change server-side.
func (s *Store) UpdateUser(user *api.UserRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = copyUser(user)
	if s.user != nil {
		s.state = StateAuthenticated
	}
}

// Invalidate clears the in-memory user without touching the token store.
// It is the store's subscription to the gateway's auth-failure event: by
// the time the event fires the transport layer has already purged the
// token.
func (s *Store) Invalidate() {
	s.mu.Lock()
	s.user = nil
	s.state = StateAnonymous
	s.mu.Unlock()
}

// CurrentUser returns a copy of the cached user record, or nil.
func (s *Store) CurrentUser() *api.UserRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyUser(s.user)
}

// IsAuthenticated is derived from user presence.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// Loading reports whether a login is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// State returns the logical authentication state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Store) setAnonymous() {
	s.mu.Lock()
	s.user = nil
	s.state = StateAnonymous
	s.loading = false
	s.mu.Unlock()
}

func (s *Store) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

// copyUser returns a copy to prevent external mutation of store state.
func copyUser(u *api.UserRecord) *api.UserRecord {
	if u == nil {
		return nil
	}
	cp := *u
	return &cp
}
