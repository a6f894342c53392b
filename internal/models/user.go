package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered learner. Conversations can also be started
// anonymously, in which case no user record is involved.
type User struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	Username     string     `json:"username" db:"username"`
	PasswordHash string     `json:"-" db:"password_hash"`
	NativeLang   string     `json:"native_language,omitempty" db:"native_language"`
	TargetLang   string     `json:"target_language,omitempty" db:"target_language"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
}
