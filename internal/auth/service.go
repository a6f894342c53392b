package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/fluentvoice/fluentvoice-backend/internal/models"
	"github.com/fluentvoice/fluentvoice-backend/internal/repository"
)

var (
	// ErrInvalidCredentials is returned when login credentials are invalid
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailAlreadyExists is returned when email is already registered
	ErrEmailAlreadyExists = errors.New("email already exists")
)

// Service handles authentication operations
type Service struct {
	userRepo repository.UserRepository
	jwt      *JWTService
}

// NewService creates a new auth service
func NewService(userRepo repository.UserRepository, jwtSecret string) *Service {
	return &Service{
		userRepo: userRepo,
		jwt:      NewJWTService(jwtSecret, "fluentvoice"),
	}
}

// SignUp registers a new learner
func (s *Service) SignUp(ctx context.Context, email, username, password, nativeLang, targetLang string) (*models.User, error) {
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyExists
	}

	passwordHash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
		NativeLang:   nativeLang,
		TargetLang:   targetLang,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Login verifies credentials and returns the user and an access token
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if !CheckPassword(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateAccessToken(user.ID.String(), user.Email, user.Username)
	if err != nil {
		return nil, "", err
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, time.Now().UTC()); err != nil {
		// Login still succeeds; the timestamp is advisory.
		return user, token, nil
	}

	return user, token, nil
}

// ValidateToken validates an access token and returns its claims
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	return s.jwt.ValidateToken(tokenString)
}

// GetUser loads a user by id
func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}
