package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	now := time.Now()
	token, err := GenerateToken("secret", Claims{UserID: "u1", Email: "a.b@centrale-casablanca.ma", EmailVerified: true}, "s1", now, time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "s1", claims.ID)
	assert.True(t, claims.EmailVerified)
}

func TestValidateToken_Rejects(t *testing.T) {
	now := time.Now()
	token, err := GenerateToken("secret", Claims{UserID: "u1"}, "s1", now, time.Hour)
	require.NoError(t, err)

	_, err = ValidateToken("other-secret", token)
	assert.Error(t, err)

	expired, err := GenerateToken("secret", Claims{UserID: "u1"}, "s1", now.Add(-2*time.Hour), time.Hour)
	require.NoError(t, err)
	_, err = ValidateToken("secret", expired)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "u1"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ValidateToken("secret", unsigned)
	assert.Error(t, err)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", BearerToken("Bearer abc"))
	assert.Equal(t, "abc", BearerToken("bearer abc"))
	assert.Equal(t, "", BearerToken("Basic abc"))
	assert.Equal(t, "", BearerToken(""))
}

func TestAdmins(t *testing.T) {
	a := NewAdmins([]string{" Staff@Centrale-Casablanca.ma "})
	assert.True(t, a.Contains("staff@centrale-casablanca.ma"))
	assert.False(t, a.Contains("student@centrale-casablanca.ma"))
}
