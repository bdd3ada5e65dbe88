package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"go.uber.org/goleak"

	"github.com/haivler/haivler-cli/internal/api"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeGateway implements Gateway with pluggable behavior per test.
type fakeGateway struct {
	loginFn    func(ctx context.Context, creds api.Credentials) (*api.TokenGrant, error)
	registerFn func(ctx context.Context, reg api.Registration) (*api.UserRecord, error)
	profileFn  func(ctx context.Context) (*api.UserRecord, error)

	profileCalls int
}

func (f *fakeGateway) Login(ctx context.Context, creds api.Credentials) (*api.TokenGrant, error) {
	return f.loginFn(ctx, creds)
}

func (f *fakeGateway) Register(ctx context.Context, reg api.Registration) (*api.UserRecord, error) {
	return f.registerFn(ctx, reg)
}

func (f *fakeGateway) UserProfile(ctx context.Context) (*api.UserRecord, error) {
	f.profileCalls++
	return f.profileFn(ctx)
}

// fakeTokens is an in-memory TokenStore.
type fakeTokens struct {
	mu    sync.Mutex
	token string
}

func (f *fakeTokens) Get() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *fakeTokens) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = ""
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestInitNoToken(t *testing.T) {
	gw := &fakeGateway{
		profileFn: func(ctx context.Context) (*api.UserRecord, error) {
			return &api.UserRecord{ID: 1, Username: "alice"}, nil
		},
	}
	store := New(gw, &fakeTokens{}, testLogger())

	if store.State() != StateUnknown {
		t.Errorf("expected StateUnknown before Init, got %v", store.State())
	}

	store.Init(context.Background())

	if store.State() != StateAnonymous {
		t.Errorf("expected StateAnonymous, got %v", store.State())
	}
	if gw.profileCalls != 0 {
		t.Errorf("no token means no network call, got %d profile calls", gw.profileCalls)
	}
	if store.IsAuthenticated() {
		t.Error("should not be authenticated")
	}
}

func TestInitValidToken(t *testing.T) {
	gw := &fakeGateway{
		profileFn: func(ctx context.Context) (*api.UserRecord, error) {
			return &api.UserRecord{ID: 1, Username: "alice"}, nil
		},
	}
	tokens := &fakeTokens{token: "tok-valid"}
	store := New(gw, tokens, testLogger())

	store.Init(context.Background())

	if store.State() != StateAuthenticated {
		t.Errorf("expected StateAuthenticated, got %v", store.State())
	}
	user := store.CurrentUser()
	if user == nil || user.Username != "alice" {
		t.Errorf("expected alice, got %+v", user)
	}
	if tokens.Get() != "tok-valid" {
		t.Error("token should survive a successful rehydrate")
	}
}

func TestInitUnverifiableToken(t *testing.T) {
	gw := &fakeGateway{
		profileFn: func(ctx context.Context) (*api.UserRecord, error) {
			return nil, &api.APIError{Status: 401, Op: "get_profile", Detail: "Could not validate credentials"}
		},
	}
	tokens := &fakeTokens{token: "tok-stale"}
	store := New(gw, tokens, testLogger())

	store.Init(context.Background())

	if store.State() != StateAnonymous {
		t.Errorf("unverifiable token should leave the session anonymous, got %v", store.State())
	}
	if tokens.Get() != "" {
		t.Errorf("unverifiable token should be purged, got %q", tokens.Get())
	}
}

func TestLoginSuccess(t *testing.T) {
	tokens := &fakeTokens{}
	gw := &fakeGateway{
		loginFn: func(ctx context.Context, creds api.Credentials) (*api.TokenGrant, error) {
			tokens.mu.Lock()
			tokens.token = "tok-fresh"
			tokens.mu.Unlock()
			return &api.TokenGrant{AccessToken: "tok-fresh", TokenType: "bearer"}, nil
		},
		profileFn: func(ctx context.Context) (*api.UserRecord, error) {
			return &api.UserRecord{ID: 1, Username: "alice"}, nil
		},
	}
	store := New(gw, tokens, testLogger())
	store.Init(context.Background())

	user, err := store.Login(context.Background(), api.Credentials{Username: "alice", Password: "correct"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Username != "alice" {
		t.Errorf("expected alice, got %s", user.Username)
	}
	if store.State() != StateAuthenticated {
		t.Errorf("expected StateAuthenticated, got %v", store.State())
	}
	if store.Loading() {
		t.Error("loading flag should be cleared after login")
	}
}

func TestLoginFailure(t *testing.T) {
	wantErr := &api.APIError{Status: 400, Op: "login", Detail: "Incorrect username or password"}
	gw := &fakeGateway{
		loginFn: func(ctx context.Context, creds api.Credentials) (*api.TokenGrant, error) {
			return nil, wantErr
		},
	}
	store := New(gw, &fakeTokens{}, testLogger())

	_, err := store.Login(context.Background(), api.Credentials{Username: "alice", Password: "wrong"})
	if !errors.Is(err, wantErr) {
		t.Errorf("gateway error should pass through unchanged, got %v", err)
	}
	if store.State() != StateAnonymous {
		t.Errorf("failed login should leave the session anonymous, got %v", store.State())
	}
	if store.Loading() {
		t.Error("loading flag should be cleared after failed login")
	}
}

func TestLoginProfileFetchFails(t *testing.T) {
	tokens := &fakeTokens{}
	gw := &fakeGateway{
		loginFn: func(ctx context.Context, creds api.Credentials) (*api.TokenGrant, error) {
			tokens.mu.Lock()
			tokens.token = "tok-granted"
			tokens.mu.Unlock()
			return &api.TokenGrant{AccessToken: "tok-granted"}, nil
		},
		profileFn: func(ctx context.Context) (*api.UserRecord, error) {
			return nil, &api.TransportError{Op: "get_profile", Message: "Failed to fetch user profile"}
		},
	}
	store := New(gw, tokens, testLogger())

	_, err := store.Login(context.Background(), api.Credentials{Username: "alice", Password: "correct"})
	if err == nil {
		t.Fatal("expected error")
	}
	if store.State() != StateAnonymous {
		t.Errorf("expected StateAnonymous, got %v", store.State())
	}
	if tokens.Get() != "" {
		t.Errorf("granted-but-unverifiable token should be purged, got %q", tokens.Get())
	}
}

func TestRegisterDoesNotAuthenticate(t *testing.T) {
	gw := &fakeGateway{
		registerFn: func(ctx context.Context, reg api.Registration) (*api.UserRecord, error) {
			return &api.UserRecord{ID: 9, Username: reg.Username}, nil
		},
	}
	store := New(gw, &fakeTokens{}, testLogger())
	store.Init(context.Background())

	user, err := store.Register(context.Background(), api.Registration{
		Username: "bob",
		Email:    "bob@example.com",
		Password: "hunter2hunter2",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Username != "bob" {
		t.Errorf("expected bob, got %s", user.Username)
	}
	if store.IsAuthenticated() {
		t.Error("registration must not log the user in")
	}
	if store.State() != StateAnonymous {
		t.Errorf("expected StateAnonymous after register, got %v", store.State())
	}
}

func TestLogoutSynchronous(t *testing.T) {
	tokens := &fakeTokens{token: "tok-live"}
	gw := &fakeGateway{
		profileFn: func(ctx context.Context) (*api.UserRecord, error) {
			return &api.UserRecord{ID: 1, Username: "alice"}, nil
		},
	}
	store := New(gw, tokens, testLogger())
	store.Init(context.Background())

	store.Logout()

	if store.IsAuthenticated() {
		t.Error("logout should clear the user immediately")
	}
	if store.State() != StateAnonymous {
		t.Errorf("expected StateAnonymous, got %v", store.State())
	}
	if tokens.Get() != "" {
		t.Errorf("logout should purge the token, got %q", tokens.Get())
	}
}

func TestUpdateUserCopies(t *testing.T) {
	store := New(&fakeGateway{}, &fakeTokens{}, testLogger())

	record := &api.UserRecord{ID: 1, Username: "alice", Email: "alice@example.com"}
	store.UpdateUser(record)

	// Mutating the caller's record must not leak into the store.
	record.Username = "mallory"

	user := store.CurrentUser()
	if user.Username != "alice" {
		t.Errorf("store should hold a copy, got %s", user.Username)
	}

	// Mutating the returned copy must not leak back either.
	user.Email = "evil@example.com"
	if store.CurrentUser().Email != "alice@example.com" {
		t.Error("CurrentUser should return a copy")
	}
}

func TestInvalidate(t *testing.T) {
	tokens := &fakeTokens{token: "tok-live"}
	gw := &fakeGateway{
		profileFn: func(ctx context.Context) (*api.UserRecord, error) {
			return &api.UserRecord{ID: 1, Username: "alice"}, nil
		},
	}
	store := New(gw, tokens, testLogger())
	store.Init(context.Background())

	// Invalidate models the auth-failure event: the transport layer has
	// already purged the token by the time it fires.
	_ = tokens.Clear()
	store.Invalidate()

	if store.IsAuthenticated() {
		t.Error("invalidate should clear the user")
	}
	if store.State() != StateAnonymous {
		t.Errorf("expected StateAnonymous, got %v", store.State())
	}
}
