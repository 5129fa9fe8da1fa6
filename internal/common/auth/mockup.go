package auth

import (
	"context"
	"time"

	"mobility-portal/internal/models"
)

// MockProvider accepts any token and always answers with the same
// verified user of the configured domain.
type MockProvider struct {
	user   models.Profile
	admins Admins
}

func NewMockProvider(emailDomain string, admins Admins) *MockProvider {
	return &MockProvider{
		user: models.Profile{
			ID:              "mock-user-id",
			Email:           "mock.mock@" + emailDomain,
			FirstName:       "Mock",
			LastName:        "User",
			IsEmailVerified: true,
			CreatedAt:       time.Now().UTC(),
		},
		admins: admins,
	}
}

func (m *MockProvider) session(email string) *models.Session {
	user := m.user
	if email != "" {
		user.Email = email
	}
	user.IsAdmin = m.admins.Contains(user.Email)
	return &models.Session{
		ID:           "mock-session-id",
		AccessToken:  "mock-access-token",
		RefreshToken: "mock-refresh-token",
		TokenType:    "bearer",
		ExpiresAt:    time.Now().Add(time.Hour),
		User:         user,
	}
}

func (m *MockProvider) GetSession(ctx context.Context, token string) (*models.Session, error) {
	return m.session(""), nil
}

func (m *MockProvider) Me(ctx context.Context, session *models.Session) (*models.Profile, error) {
	p := m.user
	p.IsAdmin = m.admins.Contains(p.Email)
	return &p, nil
}

func (m *MockProvider) Login(ctx context.Context, email, password string) (*models.Session, error) {
	return m.session(email), nil
}

func (m *MockProvider) Logout(ctx context.Context, session *models.Session) error {
	return nil
}
