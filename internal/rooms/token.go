package rooms

import (
	"encoding/json"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	joinTokenTTL  = 6 * time.Hour
	adminTokenTTL = 10 * time.Minute
)

// videoGrant mirrors the room provider's access grant claim.
type videoGrant struct {
	Room       string `json:"room,omitempty"`
	RoomJoin   bool   `json:"roomJoin,omitempty"`
	RoomCreate bool   `json:"roomCreate,omitempty"`
	RoomList   bool   `json:"roomList,omitempty"`
	RoomAdmin  bool   `json:"roomAdmin,omitempty"`
}

type accessClaims struct {
	Video    videoGrant `json:"video"`
	Metadata string     `json:"metadata,omitempty"`
	jwt.RegisteredClaims
}

func signToken(apiKey, apiSecret, identity string, grant videoGrant, metadata map[string]string, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := accessClaims{
		Video: grant,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    apiKey,
			Subject:   identity,
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	if len(metadata) > 0 {
		raw, err := json.Marshal(metadata)
		if err != nil {
			return "", err
		}
		claims.Metadata = string(raw)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(apiSecret))
}

// joinToken signs a token letting identity join a single room. The
// participant metadata carries difficulty and topic for the voice agent.
func joinToken(apiKey, apiSecret, roomName, identity string, metadata map[string]string) (string, error) {
	return signToken(apiKey, apiSecret, identity, videoGrant{
		Room:     roomName,
		RoomJoin: true,
	}, metadata, joinTokenTTL)
}

// adminToken signs a short-lived token for server-to-server room
// management calls.
func adminToken(apiKey, apiSecret string) (string, error) {
	return signToken(apiKey, apiSecret, "fluentvoice-backend", videoGrant{
		RoomCreate: true,
		RoomList:   true,
		RoomAdmin:  true,
	}, nil, adminTokenTTL)
}
