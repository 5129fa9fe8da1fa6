package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"mobility-portal/internal/common/errors"
	"mobility-portal/internal/common/logger"
	"mobility-portal/internal/models"
)

// JWTProvider issues HS256 bearer tokens backed by the Redis session
// registry. Credentials are checked against the directory.
type JWTProvider struct {
	secret    string
	ttl       time.Duration
	sessions  *SessionRegistry
	directory Directory
	admins    Admins
	logger    logger.Logger
	now       func() time.Time
}

func NewJWTProvider(secret string, ttl time.Duration, sessions *SessionRegistry, directory Directory, admins Admins, log logger.Logger) *JWTProvider {
	return &JWTProvider{
		secret:    secret,
		ttl:       ttl,
		sessions:  sessions,
		directory: directory,
		admins:    admins,
		logger:    log.WithFields(map[string]interface{}{"component": "jwt-auth"}),
		now:       time.Now,
	}
}

func (p *JWTProvider) Login(ctx context.Context, email, password string) (*models.Session, error) {
	email = strings.TrimSpace(email)
	if p.directory == nil {
		return nil, errors.NewUnauthorizedError("no identity directory configured")
	}
	if err := p.directory.VerifyPassword(ctx, email, password); err != nil {
		return nil, err
	}
	user, err := p.directory.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !user.Enabled {
		return nil, errors.NewForbiddenError("account disabled")
	}

	profile := models.Profile{
		ID:              user.ID,
		Email:           user.Email,
		FirstName:       user.FirstName,
		LastName:        user.LastName,
		IsEmailVerified: user.EmailVerified,
	}
	if user.CreatedTimestamp > 0 {
		profile.CreatedAt = time.UnixMilli(user.CreatedTimestamp).UTC()
	}
	return p.Issue(ctx, profile)
}

// Issue signs a token for profile and registers its session.
func (p *JWTProvider) Issue(ctx context.Context, profile models.Profile) (*models.Session, error) {
	now := p.now()
	sessionID := uuid.New().String()
	token, err := GenerateToken(p.secret, Claims{
		UserID:        profile.ID,
		Email:         profile.Email,
		FirstName:     profile.FirstName,
		LastName:      profile.LastName,
		EmailVerified: profile.IsEmailVerified,
	}, sessionID, now, p.ttl)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	if err := p.sessions.Register(ctx, profile.ID, sessionID, p.ttl); err != nil {
		return nil, errors.NewInternalError(err)
	}

	profile.IsAdmin = p.admins.Contains(profile.Email)
	p.logger.Info("session opened", map[string]interface{}{"userId": profile.ID, "sessionId": sessionID})
	return &models.Session{
		ID:          sessionID,
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   now.Add(p.ttl),
		User:        profile,
	}, nil
}

func (p *JWTProvider) GetSession(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, nil
	}
	claims, err := ValidateToken(p.secret, token)
	if err != nil {
		p.logger.Debug("rejected token", map[string]interface{}{"error": err.Error()})
		return nil, nil
	}

	active, err := p.sessions.Active(ctx, claims.UserID, claims.ID)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	if !active {
		return nil, nil
	}

	s := &models.Session{
		ID:          claims.ID,
		AccessToken: token,
		TokenType:   "bearer",
		User: models.Profile{
			ID:              claims.UserID,
			Email:           claims.Email,
			FirstName:       claims.FirstName,
			LastName:        claims.LastName,
			IsEmailVerified: claims.EmailVerified,
			IsAdmin:         p.admins.Contains(claims.Email),
		},
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	if claims.IssuedAt != nil {
		s.User.CreatedAt = claims.IssuedAt.Time
	}
	return s, nil
}

func (p *JWTProvider) Me(ctx context.Context, session *models.Session) (*models.Profile, error) {
	if session == nil {
		return nil, errors.NewUnauthorizedError("no session")
	}
	profile := session.User
	profile.IsAdmin = p.admins.Contains(profile.Email)
	return &profile, nil
}

func (p *JWTProvider) Logout(ctx context.Context, session *models.Session) error {
	if session == nil {
		return nil
	}
	if err := p.sessions.Revoke(ctx, session.User.ID, session.ID); err != nil {
		return errors.NewInternalError(err)
	}
	p.logger.Info("session closed", map[string]interface{}{"userId": session.User.ID, "sessionId": session.ID})
	return nil
}
