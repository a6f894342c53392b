package rooms

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinToken_Claims(t *testing.T) {
	signed, err := joinToken("api-key", "api-secret", "practice-abc123", "learner-1", map[string]string{
		"difficulty": "intermediate",
		"topic":      "ordering_food",
	})
	require.NoError(t, err)

	var claims accessClaims
	token, err := jwt.ParseWithClaims(signed, &claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("api-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	assert.Equal(t, "api-key", claims.Issuer)
	assert.Equal(t, "learner-1", claims.Subject)
	assert.Equal(t, "practice-abc123", claims.Video.Room)
	assert.True(t, claims.Video.RoomJoin)
	assert.False(t, claims.Video.RoomAdmin)
	assert.Contains(t, claims.Metadata, "ordering_food")
}

func TestAdminToken_Grants(t *testing.T) {
	signed, err := adminToken("api-key", "api-secret")
	require.NoError(t, err)

	var claims accessClaims
	_, err = jwt.ParseWithClaims(signed, &claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("api-secret"), nil
	})
	require.NoError(t, err)

	assert.True(t, claims.Video.RoomCreate)
	assert.True(t, claims.Video.RoomList)
	assert.True(t, claims.Video.RoomAdmin)
	assert.Empty(t, claims.Video.Room)
}
