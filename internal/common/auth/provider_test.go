package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mobility-portal/internal/common/config"
	apperrors "mobility-portal/internal/common/errors"
	"mobility-portal/internal/common/logger"
	"mobility-portal/internal/models"
)

type fakeDirectory struct {
	user     *DirectoryUser
	loginErr error
}

func (f *fakeDirectory) VerifyPassword(ctx context.Context, email, password string) error {
	return f.loginErr
}

func (f *fakeDirectory) GetUserByEmail(ctx context.Context, email string) (*DirectoryUser, error) {
	if f.user == nil {
		return nil, apperrors.NewNotFoundError(email)
	}
	return f.user, nil
}

func newJWTProvider(t *testing.T, dir Directory) (*JWTProvider, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	p := NewJWTProvider("secret", time.Hour, NewSessionRegistry(rdb), dir,
		NewAdmins([]string{"staff@centrale-casablanca.ma"}), logger.NewTestLogger(t))
	return p, mr
}

func TestJWTProvider_LoginSessionLogout(t *testing.T) {
	ctx := context.Background()
	dir := &fakeDirectory{user: &DirectoryUser{
		ID: "kc-1", Email: "sara.alaoui@centrale-casablanca.ma", FirstName: "Sara",
		LastName: "Alaoui", Enabled: true, EmailVerified: true,
	}}
	p, mr := newJWTProvider(t, dir)

	s, err := p.Login(ctx, "sara.alaoui@centrale-casablanca.ma", "pw")
	require.NoError(t, err)
	assert.True(t, mr.Exists("session:kc-1:"+s.ID))

	got, err := p.GetSession(ctx, s.AccessToken)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "sara.alaoui@centrale-casablanca.ma", got.User.Email)
	assert.True(t, got.User.IsEmailVerified)
	assert.False(t, got.User.IsAdmin)

	me, err := p.Me(ctx, got)
	require.NoError(t, err)
	assert.Equal(t, "Sara", me.FirstName)

	require.NoError(t, p.Logout(ctx, got))
	got, err = p.GetSession(ctx, s.AccessToken)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestJWTProvider_AdminFlag(t *testing.T) {
	p, _ := newJWTProvider(t, nil)
	s, err := p.Issue(context.Background(), models.Profile{ID: "u2", Email: "Staff@centrale-casablanca.ma"})
	require.NoError(t, err)
	assert.True(t, s.User.IsAdmin)

	got, err := p.GetSession(context.Background(), s.AccessToken)
	require.NoError(t, err)
	assert.True(t, got.User.IsAdmin)
}

func TestJWTProvider_GetSession_NoSession(t *testing.T) {
	p, _ := newJWTProvider(t, nil)

	for _, token := range []string{"", "garbage"} {
		s, err := p.GetSession(context.Background(), token)
		assert.NoError(t, err)
		assert.Nil(t, s)
	}
}

func TestJWTProvider_Login_Rejected(t *testing.T) {
	p, _ := newJWTProvider(t, &fakeDirectory{loginErr: apperrors.NewUnauthorizedError("invalid credentials")})
	_, err := p.Login(context.Background(), "x@centrale-casablanca.ma", "bad")
	assert.Equal(t, apperrors.ErrCodeUnauthorized, apperrors.AsStandardError(err).Code)

	p, _ = newJWTProvider(t, &fakeDirectory{user: &DirectoryUser{ID: "u", Enabled: false}})
	_, err = p.Login(context.Background(), "x@centrale-casablanca.ma", "pw")
	assert.Equal(t, apperrors.ErrCodeForbidden, apperrors.AsStandardError(err).Code)
}

func TestSessionRegistry_RedisError(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	mock.ExpectExists("session:u1:s1").SetErr(errors.New("timeout"))

	_, err := NewSessionRegistry(rdb).Active(context.Background(), "u1", "s1")
	assert.ErrorContains(t, err, "timeout")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKeycloakClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/realms/ecc/protocol/openid-connect/token":
			_ = r.ParseForm()
			switch r.PostForm.Get("grant_type") {
			case "client_credentials":
				_, _ = w.Write([]byte(`{"access_token":"svc","expires_in":300}`))
			case "password":
				if r.PostForm.Get("password") != "right" {
					w.WriteHeader(http.StatusUnauthorized)
					_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
					return
				}
				_, _ = w.Write([]byte(`{"access_token":"user","expires_in":300}`))
			}
		case "/admin/realms/ecc/users":
			assert.Equal(t, "Bearer svc", r.Header.Get("Authorization"))
			if r.URL.Query().Get("email") == "sara.alaoui@centrale-casablanca.ma" {
				_, _ = w.Write([]byte(`[{"id":"kc-1","email":"sara.alaoui@centrale-casablanca.ma","enabled":true,"emailVerified":true}]`))
				return
			}
			_, _ = w.Write([]byte(`[]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	kc := NewKeycloakClient(srv.URL+"/", "ecc", "portal", "s3cret")
	ctx := context.Background()

	assert.NoError(t, kc.VerifyPassword(ctx, "sara.alaoui@centrale-casablanca.ma", "right"))
	err := kc.VerifyPassword(ctx, "sara.alaoui@centrale-casablanca.ma", "wrong")
	assert.Equal(t, apperrors.ErrCodeUnauthorized, apperrors.AsStandardError(err).Code)

	u, err := kc.GetUserByEmail(ctx, "sara.alaoui@centrale-casablanca.ma")
	require.NoError(t, err)
	assert.Equal(t, "kc-1", u.ID)

	_, err = kc.GetUserByEmail(ctx, "ghost@centrale-casablanca.ma")
	assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.AsStandardError(err).Code)
}

func TestMockProvider(t *testing.T) {
	p := NewMockProvider("centrale-casablanca.ma", NewAdmins(nil))
	s, err := p.GetSession(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "mock.mock@centrale-casablanca.ma", s.User.Email)
	assert.True(t, s.User.IsEmailVerified)

	me, err := p.Me(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, "mock-user-id", me.ID)
}

func TestNew_Strategies(t *testing.T) {
	cfg := &config.Config{}
	cfg.App.EmailDomain = "centrale-casablanca.ma"

	cfg.Auth.Strategy = "mockup"
	p, err := New(cfg, nil, logger.NewNoOpLogger())
	require.NoError(t, err)
	assert.IsType(t, &MockProvider{}, p)

	cfg.Auth.Strategy = "jwt"
	_, err = New(cfg, nil, logger.NewNoOpLogger())
	assert.Error(t, err)

	cfg.Auth.Strategy = "saml"
	_, err = New(cfg, nil, logger.NewNoOpLogger())
	assert.ErrorContains(t, err, "unknown auth strategy")
}
