package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrymomot/flashdeck/pkg/cookie"
)

// Manager handles session lifecycle: creation, state transitions, expiry
// and transport. Every state elevation rotates the session token so a
// pre-login token can never be replayed as an authenticated one.
type Manager struct {
	store         Store
	transport     Transport
	config        Config
	cookieManager *cookie.Manager
	cookieOptions []cookie.Option
}

// New creates a new session manager with the given options.
func New(opts ...Option) *Manager {
	m := &Manager{
		config: DefaultConfig(),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.store == nil {
		m.store = NewMemoryStore(m.config.CleanupInterval)
	}

	if m.transport == nil {
		if m.cookieManager == nil {
			panic("session: cookie manager is required when using default cookie transport")
		}
		m.transport = NewCookieTransport(m.cookieManager, m.config.CookieName, m.config.SecureCookies, m.cookieOptions...)
	}

	return m
}

// Ensure retrieves the request's session or creates an anonymous one.
func (m *Manager) Ensure(ctx context.Context, w http.ResponseWriter, r *http.Request) (*Session, error) {
	session, err := m.Get(ctx, r)
	if err == nil {
		return session, nil
	}
	_ = m.transport.ClearToken(w)

	session, err = m.createSession(ctx)
	if err != nil {
		return nil, err
	}

	idle, _ := m.config.GetTimeouts(StateAnonymous)
	if err := m.transport.SetToken(w, session.Token, idle); err != nil {
		_ = m.store.Delete(ctx, session.Token)
		return nil, err
	}

	return session, nil
}

// Get retrieves an existing, unexpired session.
func (m *Manager) Get(ctx context.Context, r *http.Request) (*Session, error) {
	token, err := m.transport.GetToken(r)
	if err != nil {
		return nil, err
	}

	session, err := m.store.Get(ctx, token)
	if err != nil {
		return nil, err
	}

	if session.IsExpired() {
		return nil, ErrSessionExpired
	}

	return session, nil
}

// BeginMFA records a verified password and elevates the session into the
// pending-MFA state. Any previous identity is dropped.
func (m *Manager) BeginMFA(ctx context.Context, w http.ResponseWriter, r *http.Request, pending PendingAuth) error {
	return m.elevate(ctx, w, r, func(s *Session) {
		s.setPending(pending)
	})
}

// Authenticate completes login, replacing the pending payload with a full
// identity.
func (m *Manager) Authenticate(ctx context.Context, w http.ResponseWriter, r *http.Request, identity Identity) error {
	return m.elevate(ctx, w, r, func(s *Session) {
		s.setIdentity(identity)
	})
}

// elevate applies a state transition under a fresh token. The old session
// record is deleted so the prior token dies with the transition.
func (m *Manager) elevate(ctx context.Context, w http.ResponseWriter, r *http.Request, transition func(*Session)) error {
	session, err := m.Get(ctx, r)
	if err != nil {
		session, err = m.createSession(ctx)
		if err != nil {
			return err
		}
	}

	newToken, err := generateToken()
	if err != nil {
		return err
	}

	_ = m.store.Delete(ctx, session.Token)

	transition(session)
	session.Token = newToken

	idle, max := m.config.GetTimeouts(session.State)
	session.ExpiresAt = m.calculateExpiry(session.CreatedAt, time.Now(), idle, max)
	session.Touch()

	if err := m.store.Create(ctx, session); err != nil {
		return err
	}

	return m.transport.SetToken(w, session.Token, idle)
}

// Destroy deletes the session and clears the cookie.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	token, err := m.transport.GetToken(r)
	if err == nil && token != "" {
		_ = m.store.Delete(ctx, token)
	}

	return m.transport.ClearToken(w)
}

// Refresh extends the session expiry after activity.
func (m *Manager) Refresh(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	session, err := m.Get(ctx, r)
	if err != nil {
		return err
	}

	idle, max := m.config.GetTimeouts(session.State)
	session.ExpiresAt = m.calculateExpiry(session.CreatedAt, time.Now(), idle, max)
	session.Touch()

	if err := m.store.Update(ctx, session); err != nil {
		return err
	}

	return m.transport.SetToken(w, session.Token, idle)
}

func (m *Manager) createSession(ctx context.Context) (*Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, err
	}

	idle, max := m.config.GetTimeouts(StateAnonymous)
	now := time.Now()

	session := NewSession(token, m.calculateExpiry(now, now, idle, max).Sub(now))

	if err := m.store.Create(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

// updateActivity refreshes the stored last-activity time if enough time has
// passed since the previous update.
func (m *Manager) updateActivity(ctx context.Context, session *Session) {
	if time.Since(session.LastActivityAt) < m.config.ActivityUpdateThreshold {
		return
	}
	_ = m.store.UpdateActivity(ctx, session.Token, time.Now())
}

// calculateExpiry returns the next expiry time (min of idle and max lifetime).
func (m *Manager) calculateExpiry(createdAt, now time.Time, idle, max time.Duration) time.Time {
	idleExpiry := now.Add(idle)
	maxExpiry := createdAt.Add(max)

	if maxExpiry.Before(idleExpiry) {
		return maxExpiry
	}
	return idleExpiry
}

// generateToken creates a cryptographically secure token.
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Join(ErrTokenGeneration, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
