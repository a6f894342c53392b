package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/fluentvoice/fluentvoice-backend/internal/repository"
)

// MessageRepository implements repository.MessageRepository using PostgreSQL
type MessageRepository struct {
	db *sqlx.DB
}

// NewMessageRepository creates a new PostgreSQL message repository
func NewMessageRepository(db *sqlx.DB) repository.MessageRepository {
	return &MessageRepository{db: db}
}

// Create logs a new message
func (r *MessageRepository) Create(ctx context.Context, message repository.MessageRecord) (string, error) {
	message.ID = uuid.New().String()
	message.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO messages (id, session_id, role, content, created_at)
		VALUES (:id, :session_id, :role, :content, :created_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, message)
	if err != nil {
		return "", err
	}

	return message.ID, nil
}

// ListBySession retrieves messages for a session in chronological order
func (r *MessageRepository) ListBySession(ctx context.Context, sessionID string) ([]repository.MessageRecord, error) {
	var messages []repository.MessageRecord
	query := `
		SELECT id, session_id, role, content, created_at
		FROM messages
		WHERE session_id = $1
		ORDER BY created_at ASC
	`

	err := r.db.SelectContext(ctx, &messages, query, sessionID)
	if err != nil {
		return nil, err
	}

	return messages, nil
}
