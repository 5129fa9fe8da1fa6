// Package auth resolves bearer tokens into sessions and profiles.
package auth

import (
	"context"
	"strings"

	"mobility-portal/internal/models"
)

// Authenticator is implemented by every auth strategy.
type Authenticator interface {
	// GetSession returns nil without error when token does not map to a
	// live session.
	GetSession(ctx context.Context, token string) (*models.Session, error)
	Me(ctx context.Context, session *models.Session) (*models.Profile, error)
}

// SessionManager opens and closes sessions.
type SessionManager interface {
	Login(ctx context.Context, email, password string) (*models.Session, error)
	Logout(ctx context.Context, session *models.Session) error
}

// Provider is a complete auth strategy.
type Provider interface {
	Authenticator
	SessionManager
}

// Admins is a case-insensitive email allow-list.
type Admins map[string]struct{}

func NewAdmins(emails []string) Admins {
	a := make(Admins, len(emails))
	for _, e := range emails {
		a[strings.ToLower(strings.TrimSpace(e))] = struct{}{}
	}
	return a
}

func (a Admins) Contains(email string) bool {
	_, ok := a[strings.ToLower(strings.TrimSpace(email))]
	return ok
}

type contextKey string

const sessionContextKey contextKey = "session"

func WithSession(ctx context.Context, s *models.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}

// SessionFrom returns the session stored by WithSession, or nil.
func SessionFrom(ctx context.Context) *models.Session {
	s, _ := ctx.Value(sessionContextKey).(*models.Session)
	return s
}

// BearerToken extracts the token of an "Authorization: Bearer" header.
func BearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
