// Package session owns the authenticated identity for the process: the
// bearer token issued at login and the role and user id decoded from it.
// The state is hydrated from durable storage at startup and written back on
// every login and logout.
package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"sync"

	"github.com/wanderlist/tripsync/internal/apiclient"
)

const loginPath = "/Auth/login"

// Credentials are the login payload sent to the authentication endpoint.
type Credentials struct {
	UserName string `json:"userName"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// loginPoster is the subset of apiclient.Client used by the manager.
type loginPoster interface {
	Post(ctx context.Context, path string, query url.Values, body, dst any) error
}

// Manager owns the session state. All mutation is atomic: a login sets token,
// role and user id together or not at all, and a logout clears all three.
type Manager struct {
	api   loginPoster
	store Store
	log   *slog.Logger

	mu        sync.RWMutex
	state     State
	lastError string
}

// NewManager constructs a Manager that persists through store.
func NewManager(api loginPoster, store Store, log *slog.Logger) *Manager {
	return &Manager{api: api, store: store, log: log}
}

// Hydrate loads any previously persisted session. A load failure leaves the
// manager unauthenticated rather than failing startup.
func (m *Manager) Hydrate(ctx context.Context) {
	s, err := m.store.Load(ctx)
	if err != nil {
		m.log.Warn("session hydration failed", "err", err)
		return
	}
	if s.Token == "" {
		return
	}

	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
	m.log.Info("session hydrated", "userId", s.UserID, "role", s.Role)
}

// Login authenticates against the backend. On success the token's role and
// identity claims are decoded and the full session is set and persisted
// atomically. On any failure the prior session is left untouched and a typed
// error is returned: *apiclient.AuthError for rejected credentials or
// transport failure, *apiclient.TokenDecodeError / *apiclient.AuthClaimsError
// for an unusable token.
func (m *Manager) Login(ctx context.Context, creds Credentials) error {
	var resp loginResponse
	if err := m.api.Post(ctx, loginPath, nil, creds, &resp); err != nil {
		authErr := m.classifyLoginFailure(err)
		m.setLastError(authErr.Message)
		m.log.Error("login failed", "userName", creds.UserName, "err", err)
		return authErr
	}

	if resp.Token == "" {
		err := &apiclient.AuthError{Message: "login response carried no token"}
		m.setLastError(err.Message)
		return err
	}

	claims, err := decodeClaims(resp.Token)
	if err != nil {
		m.setLastError("login succeeded but the issued token is unusable")
		m.log.Error("token claims rejected", "err", err)
		return err
	}

	next := State{Token: resp.Token, Role: claims.Role, UserID: claims.UserID}

	m.mu.Lock()
	m.state = next
	m.lastError = ""
	m.mu.Unlock()

	if err := m.store.Save(ctx, next); err != nil {
		m.log.Warn("persisting session failed", "err", err)
	}

	m.log.Info("login succeeded", "userId", next.UserID, "role", next.Role)
	return nil
}

func (m *Manager) classifyLoginFailure(err error) *apiclient.AuthError {
	var httpErr *apiclient.HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.Status == http.StatusUnauthorized || httpErr.Status == http.StatusForbidden {
			return &apiclient.AuthError{Message: "incorrect credentials", Err: err}
		}
	}
	return &apiclient.AuthError{Message: "login request failed, try again later", Err: err}
}

// Logout clears the session and its durable copy.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	m.state = State{}
	m.lastError = ""
	m.mu.Unlock()

	if err := m.store.Clear(ctx); err != nil {
		m.log.Warn("clearing persisted session failed", "err", err)
	}
}

// Token returns the current bearer token, or "" when unauthenticated.
// Satisfies apiclient.TokenSource.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.Token
}

// Role returns the current session's role, or "" when unauthenticated.
func (m *Manager) Role() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.Role
}

// UserID returns the current session's user id, or 0 when unauthenticated.
func (m *Manager) UserID() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.UserID
}

// IsAuthenticated reports whether a token is held.
func (m *Manager) IsAuthenticated() bool {
	return m.Token() != ""
}

// LastError is the user-facing message from the most recent failed login,
// cleared by a successful login or a logout.
func (m *Manager) LastError() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastError
}

func (m *Manager) setLastError(msg string) {
	m.mu.Lock()
	m.lastError = msg
	m.mu.Unlock()
}
