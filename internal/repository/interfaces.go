package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/fluentvoice/fluentvoice-backend/internal/models"
)

// SessionRecord is the durable mirror of a conversation session. The
// in-memory store owns liveness; this record is for history and analytics.
type SessionRecord struct {
	ID         string         `db:"id"`
	RoomName   string         `db:"room_name"`
	UserID     sql.NullString `db:"user_id"`
	Type       string         `db:"type"`
	Difficulty string         `db:"difficulty"`
	Topic      sql.NullString `db:"topic"`
	CreatedAt  time.Time      `db:"created_at"`
	EndedAt    sql.NullTime   `db:"ended_at"`
}

// Session converts the record back to the API session shape.
func (r *SessionRecord) Session() *models.Session {
	sess := &models.Session{
		ID:         r.ID,
		RoomName:   r.RoomName,
		Type:       models.SessionType(r.Type),
		Difficulty: models.Difficulty(r.Difficulty),
		CreatedAt:  r.CreatedAt,
	}
	if r.UserID.Valid {
		sess.UserID = r.UserID.String
	}
	if r.Topic.Valid {
		sess.Topic = r.Topic.String
	}
	if r.EndedAt.Valid {
		endedAt := r.EndedAt.Time
		sess.EndedAt = &endedAt
	}
	return sess
}

// MessageRecord is one logged conversation message.
type MessageRecord struct {
	ID        string    `db:"id"`
	SessionID string    `db:"session_id"`
	Role      string    `db:"role"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
}

// SessionRepository defines durable session storage operations
type SessionRepository interface {
	Create(ctx context.Context, record SessionRecord) error
	Get(ctx context.Context, id string) (*SessionRecord, error)
	ListByUser(ctx context.Context, userID string) ([]*SessionRecord, error)
	End(ctx context.Context, id string, endedAt time.Time) error
}

// MessageRepository defines durable message log operations
type MessageRepository interface {
	Create(ctx context.Context, message MessageRecord) (string, error)
	ListBySession(ctx context.Context, sessionID string) ([]MessageRecord, error)
}
