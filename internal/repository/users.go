package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fluentvoice/fluentvoice-backend/internal/models"
)

// UserRepository defines user storage operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}
