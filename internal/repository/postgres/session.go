package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/fluentvoice/fluentvoice-backend/internal/repository"
)

// SessionRepository implements repository.SessionRepository using PostgreSQL
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new PostgreSQL session repository
func NewSessionRepository(db *sqlx.DB) repository.SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts the durable mirror record for a new session
func (r *SessionRepository) Create(ctx context.Context, record repository.SessionRecord) error {
	query := `
		INSERT INTO sessions (id, room_name, user_id, type, difficulty, topic, created_at)
		VALUES (:id, :room_name, :user_id, :type, :difficulty, :topic, :created_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, record)
	return err
}

// Get retrieves a session record by ID
func (r *SessionRepository) Get(ctx context.Context, id string) (*repository.SessionRecord, error) {
	var record repository.SessionRecord
	query := `
		SELECT id, room_name, user_id, type, difficulty, topic, created_at, ended_at
		FROM sessions
		WHERE id = $1
	`

	err := r.db.GetContext(ctx, &record, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &record, nil
}

// ListByUser retrieves all session records for a user, newest first
func (r *SessionRepository) ListByUser(ctx context.Context, userID string) ([]*repository.SessionRecord, error) {
	var records []*repository.SessionRecord
	query := `
		SELECT id, room_name, user_id, type, difficulty, topic, created_at, ended_at
		FROM sessions
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	err := r.db.SelectContext(ctx, &records, query, userID)
	if err != nil {
		return nil, err
	}

	return records, nil
}

// End stamps ended_at once. A second call is a no-op so the mirror keeps
// the first end time, matching the in-memory store's idempotence.
func (r *SessionRepository) End(ctx context.Context, id string, endedAt time.Time) error {
	query := `
		UPDATE sessions
		SET ended_at = $2
		WHERE id = $1 AND ended_at IS NULL
	`

	_, err := r.db.ExecContext(ctx, query, id, endedAt)
	return err
}
