package auth

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"mobility-portal/internal/common/errors"
	httpclient "mobility-portal/internal/common/http"
)

// Directory verifies credentials and looks up user records.
type Directory interface {
	VerifyPassword(ctx context.Context, email, password string) error
	GetUserByEmail(ctx context.Context, email string) (*DirectoryUser, error)
}

// DirectoryUser is a user as stored in Keycloak.
type DirectoryUser struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	Enabled          bool   `json:"enabled"`
	EmailVerified    bool   `json:"emailVerified"`
	CreatedTimestamp int64  `json:"createdTimestamp"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// KeycloakClient talks to one Keycloak realm: the password grant for
// logins, the admin API with client credentials for user lookups.
type KeycloakClient struct {
	baseURL      string
	realm        string
	clientID     string
	clientSecret string
	http         *httpclient.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewKeycloakClient(baseURL, realm, clientID, clientSecret string) *KeycloakClient {
	return &KeycloakClient{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		realm:        realm,
		clientID:     clientID,
		clientSecret: clientSecret,
		http:         httpclient.NewClient(30 * time.Second),
	}
}

func (k *KeycloakClient) tokenURL() string {
	return fmt.Sprintf("%s/realms/%s/protocol/openid-connect/token", k.baseURL, k.realm)
}

// serviceToken returns a cached client-credentials token.
func (k *KeycloakClient) serviceToken(ctx context.Context) (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.accessToken != "" && k.tokenExpiry.After(time.Now()) {
		return k.accessToken, nil
	}

	var tok tokenResponse
	err := k.http.PostForm(ctx, k.tokenURL(), url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {k.clientID},
		"client_secret": {k.clientSecret},
	}, &tok)
	if err != nil {
		return "", k.wrap("failed to authenticate with keycloak", err)
	}

	k.accessToken = tok.AccessToken
	// Renew slightly early so a token never expires mid-request.
	k.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn)*time.Second - 10*time.Second)
	return k.accessToken, nil
}

// VerifyPassword runs the resource owner password grant for email.
func (k *KeycloakClient) VerifyPassword(ctx context.Context, email, password string) error {
	err := k.http.PostForm(ctx, k.tokenURL(), url.Values{
		"grant_type":    {"password"},
		"client_id":     {k.clientID},
		"client_secret": {k.clientSecret},
		"username":      {email},
		"password":      {password},
		"scope":         {"openid"},
	}, nil)
	if err == nil {
		return nil
	}
	var statusErr *httpclient.StatusError
	if stderrors.As(err, &statusErr) && (statusErr.StatusCode == 400 || statusErr.StatusCode == 401) {
		return errors.NewUnauthorizedError("invalid credentials")
	}
	return k.wrap("keycloak login failed", err)
}

func (k *KeycloakClient) GetUserByEmail(ctx context.Context, email string) (*DirectoryUser, error) {
	token, err := k.serviceToken(ctx)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/admin/realms/%s/users?email=%s&exact=true",
		k.baseURL, k.realm, url.QueryEscape(email))
	var users []DirectoryUser
	if err := k.http.GetJSON(ctx, endpoint, token, &users); err != nil {
		return nil, k.wrap("keycloak user search failed", err)
	}
	if len(users) == 0 {
		return nil, errors.NewNotFoundError(fmt.Sprintf("no user with email %s", email))
	}
	return &users[0], nil
}

func (k *KeycloakClient) wrap(msg string, err error) error {
	var statusErr *httpclient.StatusError
	retryable := true
	if stderrors.As(err, &statusErr) {
		retryable = statusErr.Transient()
	}
	e := errors.NewInternalError(fmt.Errorf("%s: %w", msg, err))
	e.Retryable = retryable
	return e.WithMetadata("provider", "keycloak")
}
