package session

import (
	"time"

	"github.com/google/uuid"
)

// State identifies how far a session has progressed through login.
type State string

const (
	// StateAnonymous is a session with no verified credentials.
	StateAnonymous State = "anonymous"
	// StatePendingMFA means the password was verified and a TOTP code
	// (or enrollment) is still required.
	StatePendingMFA State = "pending_mfa"
	// StateAuthenticated means both factors were verified.
	StateAuthenticated State = "authenticated"
)

// PendingAuth carries the half-authenticated identity between the password
// step and the TOTP step. It never grants access on its own.
type PendingAuth struct {
	AccountID uuid.UUID `json:"account_id"`
	Username  string    `json:"username"`
}

// Identity is the fully authenticated principal attached to a session.
type Identity struct {
	AccountID uuid.UUID `json:"account_id"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role"`
}

// Session represents a browser session. Exactly one of Pending and Identity
// is set depending on State; both are nil for anonymous sessions.
type Session struct {
	ID             uuid.UUID    `json:"id"`
	Token          string       `json:"token"`
	State          State        `json:"state"`
	Pending        *PendingAuth `json:"pending,omitempty"`
	Identity       *Identity    `json:"identity,omitempty"`
	ExpiresAt      time.Time    `json:"expires_at"`
	LastActivityAt time.Time    `json:"last_activity_at"`
	CreatedAt      time.Time    `json:"created_at"`
}

// NewSession creates an anonymous session with the given token and TTL.
func NewSession(token string, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:             uuid.New(),
		Token:          token,
		State:          StateAnonymous,
		ExpiresAt:      now.Add(ttl),
		LastActivityAt: now,
		CreatedAt:      now,
	}
}

// IsAuthenticated reports whether both factors were verified.
func (s *Session) IsAuthenticated() bool {
	return s != nil && s.State == StateAuthenticated && s.Identity != nil
}

// HasPendingAuth reports whether the session is between the password step
// and the TOTP step.
func (s *Session) HasPendingAuth() bool {
	return s != nil && s.State == StatePendingMFA && s.Pending != nil
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return s != nil && time.Now().After(s.ExpiresAt)
}

// Touch updates the last activity time.
func (s *Session) Touch() {
	if s == nil {
		return
	}
	s.LastActivityAt = time.Now()
}

// setPending moves the session into the pending-MFA state, discarding any
// previously attached identity.
func (s *Session) setPending(p PendingAuth) {
	s.State = StatePendingMFA
	s.Pending = &p
	s.Identity = nil
}

// setIdentity completes login, discarding the pending payload.
func (s *Session) setIdentity(id Identity) {
	s.State = StateAuthenticated
	s.Identity = &id
	s.Pending = nil
}

// clone returns a deep copy so stores never hand out shared pointers.
func (s *Session) clone() *Session {
	c := *s
	if s.Pending != nil {
		p := *s.Pending
		c.Pending = &p
	}
	if s.Identity != nil {
		id := *s.Identity
		c.Identity = &id
	}
	return &c
}
