package session

import "context"

type sessionContextKey struct{}

// WithSession adds a session to the context.
func WithSession(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, session)
}

// FromContext retrieves a session from the context.
func FromContext(ctx context.Context) (*Session, bool) {
	session, ok := ctx.Value(sessionContextKey{}).(*Session)
	return session, ok
}

// IdentityFromContext retrieves the authenticated identity from the session
// in context.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	session, ok := FromContext(ctx)
	if !ok || !session.IsAuthenticated() {
		return nil, false
	}
	return session.Identity, true
}

// PendingFromContext retrieves the half-authenticated payload from the
// session in context.
func PendingFromContext(ctx context.Context) (*PendingAuth, bool) {
	session, ok := FromContext(ctx)
	if !ok || !session.HasPendingAuth() {
		return nil, false
	}
	return session.Pending, true
}
