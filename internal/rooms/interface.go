package rooms

import (
	"context"
	"time"
)

// Room describes a live media room as reported by the provider.
type Room struct {
	Name            string    `json:"name"`
	CreationTime    time.Time `json:"creation_time"`
	NumParticipants int       `json:"num_participants"`
}

// Participant describes one connected participant.
type Participant struct {
	Identity string `json:"identity"`
	State    string `json:"state"`
}

// Provider is the narrow surface of the real-time media service this
// backend needs. DeleteRoom must be idempotent: deleting a room that no
// longer exists is success, since the cleanup sweep can race with clients
// leaving.
type Provider interface {
	CreateRoom(ctx context.Context, name string, metadata map[string]string) error
	DeleteRoom(ctx context.Context, name string) error
	ListRooms(ctx context.Context) ([]Room, error)
	ListParticipants(ctx context.Context, roomName string) ([]Participant, error)
	GenerateToken(roomName, identity string, metadata map[string]string) (string, error)
	ClientURL() string
}
