package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"post-manager/domain/model"
)

func TestRandomState(t *testing.T) {
	a, err := RandomState(16)
	require.NoError(t, err)
	b, err := RandomState(16)
	require.NoError(t, err)

	assert.Len(t, a, 16)
	assert.NotEqual(t, a, b)
	assert.Regexp(t, `^[A-Za-z0-9]{16}$`, a)
}

func TestGenerateAndParseToken(t *testing.T) {
	claims := model.SessionClaims{
		Origin: model.OriginOAuth,
		StandardClaims: jwt.StandardClaims{
			Subject:   "linkedin-session",
			ExpiresAt: time.Now().Add(time.Hour).Unix(),
		},
	}
	signed, err := GenerateToken(claims, "secret")
	require.NoError(t, err)

	got, err := ParseToken(signed, "secret")
	require.NoError(t, err)
	assert.Equal(t, model.OriginOAuth, got.Origin)
	assert.Equal(t, "linkedin-session", got.Subject)

	_, err = ParseToken(signed, "other-secret")
	assert.Error(t, err)
}

func TestParseToken_Expired(t *testing.T) {
	claims := model.SessionClaims{StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(-time.Minute).Unix()}}
	signed, err := GenerateToken(claims, "secret")
	require.NoError(t, err)

	_, err = ParseToken(signed, "secret")
	var ve *jwt.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.NotZero(t, ve.Errors&jwt.ValidationErrorExpired)
}
