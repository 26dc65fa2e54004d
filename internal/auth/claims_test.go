package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspectToken(t *testing.T) {
	exp := time.Now().Add(-time.Minute).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "ana@example.com",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("unknown-to-the-client"))
	require.NoError(t, err)

	info, err := InspectToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", info.Subject)
	require.NotNil(t, info.ExpiresAt)
	assert.True(t, info.ExpiresAt.Equal(exp))
	assert.True(t, info.Expired(time.Now()))
	assert.Nil(t, info.IssuedAt)
}

func TestInspectToken_Opaque(t *testing.T) {
	_, err := InspectToken("not-a-jwt")
	assert.Error(t, err)
}
