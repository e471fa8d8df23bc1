package agent

import "context"

// sessionKey is an unexported context key for zero-allocation type safety.
type sessionKey struct{}

// identity is the (user, session) pair a tool invocation acts on.
type identity struct {
	userID    string
	sessionID string
}

// ContextWithSession stores the session identity in the context. Invoke sets
// it before generation; the memorize and sub-agent tools read it to address
// the caller's session in the store.
func ContextWithSession(ctx context.Context, userID, sessionID string) context.Context {
	return context.WithValue(ctx, sessionKey{}, identity{userID: userID, sessionID: sessionID})
}

// SessionFromContext retrieves the session identity from the context.
// ok is false when no identity was set.
func SessionFromContext(ctx context.Context) (userID, sessionID string, ok bool) {
	id, ok := ctx.Value(sessionKey{}).(identity)
	return id.userID, id.sessionID, ok
}
