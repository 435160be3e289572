package auth

import (
	"context"
	"time"
)

// Session identifies the signed in user of a request. The auth middleware
// places it in the request context.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

type sessionCtxKey struct{}

func ContextWithSession(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, sessionCtxKey{}, session)
}

// SessionFromContext returns the session of the request, nil if anonymous.
func SessionFromContext(ctx context.Context) *Session {
	session, _ := ctx.Value(sessionCtxKey{}).(*Session)
	return session
}
