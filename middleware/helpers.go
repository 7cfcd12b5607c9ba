package middleware

import (
	"context"
	"errors"
)

type contextKey string

const userContextKey contextKey = "user"

// Имена JWT claims
const (
	jwtClaimUserID = "user_id"
	jwtClaimName   = "name"
)

// Session - вошедший пользователь текущего запроса.
type Session struct {
	UserID string
	Name   string
	Admin  bool
}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, userContextKey, s)
}

func SessionFromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(userContextKey).(*Session)
	return s, ok && s != nil
}

func GetUserIDFromContext(ctx context.Context) (string, error) {
	s, ok := SessionFromContext(ctx)
	if !ok {
		return "", errors.New("user session not found in context")
	}
	return s.UserID, nil
}

func IsAdmin(ctx context.Context) bool {
	s, ok := SessionFromContext(ctx)
	return ok && s.Admin
}
