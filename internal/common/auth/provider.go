package auth

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"mobility-portal/internal/common/config"
	"mobility-portal/internal/common/logger"
)

// New builds the provider selected by cfg.Auth.Strategy. rdb is required
// for the jwt strategy.
func New(cfg *config.Config, rdb redis.Cmdable, log logger.Logger) (Provider, error) {
	admins := NewAdmins(cfg.App.AdminList())

	switch cfg.Auth.Strategy {
	case "jwt":
		if rdb == nil {
			return nil, fmt.Errorf("jwt auth requires redis")
		}
		var dir Directory
		if kc := cfg.Auth.Keycloak; kc.URL != "" {
			dir = NewKeycloakClient(kc.URL, kc.Realm, kc.ClientID, kc.ClientSecret)
		}
		return NewJWTProvider(
			cfg.Auth.JWTSecret,
			config.GetDuration(cfg.Auth.SessionTTL),
			NewSessionRegistry(rdb),
			dir,
			admins,
			log,
		), nil
	case "mockup", "":
		return NewMockProvider(cfg.App.EmailDomain, admins), nil
	default:
		return nil, fmt.Errorf("unknown auth strategy %q", cfg.Auth.Strategy)
	}
}
