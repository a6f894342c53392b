package conversation

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/fluentvoice/fluentvoice-backend/internal/models"
	"github.com/fluentvoice/fluentvoice-backend/internal/providers"
	"github.com/fluentvoice/fluentvoice-backend/internal/repository"
	"github.com/fluentvoice/fluentvoice-backend/internal/session"
)

var (
	// ErrSessionNotFound is returned for a turn against an unknown session
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionEnded is returned for a turn against an ended session
	ErrSessionEnded = errors.New("session has ended")
)

// TurnResult is the outcome of one practice turn.
type TurnResult struct {
	Reply string          `json:"reply"`
	Usage providers.Usage `json:"usage"`
	// History is the new canonical history after the turn. It already
	// reflects any compaction applied before the model call.
	History []models.ConversationMessage `json:"history"`
}

// Service runs practice turns: it holds the canonical in-memory history per
// session, compacts it before each model call, and mirrors messages to the
// durable log.
type Service struct {
	store       session.Store
	provider    providers.Provider
	compactor   *Compactor
	messageRepo repository.MessageRepository
	model       string
	logger      *logrus.Logger

	mu        sync.Mutex
	histories map[string][]models.ConversationMessage
}

// NewService creates a conversation service.
func NewService(store session.Store, provider providers.Provider, compactor *Compactor, messageRepo repository.MessageRepository, model string, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.New()
	}
	return &Service{
		store:       store,
		provider:    provider,
		compactor:   compactor,
		messageRepo: messageRepo,
		model:       model,
		logger:      logger,
		histories:   make(map[string][]models.ConversationMessage),
	}
}

// Begin seeds a new session's history with the teacher's greeting and
// mirrors it to the durable log.
func (s *Service) Begin(ctx context.Context, sessionID string) {
	greeting := models.ConversationMessage{
		Role:    models.RoleAssistant,
		Content: Greeting,
	}

	s.mu.Lock()
	s.histories[sessionID] = []models.ConversationMessage{greeting}
	s.mu.Unlock()

	s.mirror(ctx, sessionID, greeting)
}

// Turn runs one practice exchange. The stored history is compacted before
// the model call; on success the canonical history is replaced with the
// compacted history plus the new exchange. On any failure nothing is
// persisted, so the canonical history never holds a partial turn.
func (s *Service) Turn(ctx context.Context, sessionID, userMessage string) (*TurnResult, error) {
	sess, ok := s.store.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	if sess.Ended() {
		return nil, ErrSessionEnded
	}

	s.mu.Lock()
	history := append([]models.ConversationMessage(nil), s.histories[sessionID]...)
	s.mu.Unlock()

	compacted, err := s.compactor.Compact(ctx, history, sess.Difficulty, sess.Topic)
	if err != nil {
		return nil, err
	}

	userMsg := models.ConversationMessage{
		Role:    models.RoleUser,
		Content: userMessage,
	}

	prompt := make([]models.ConversationMessage, 0, len(compacted)+2)
	prompt = append(prompt, models.ConversationMessage{
		Role:    models.RoleSystem,
		Content: BuildSystemPrompt(sess.Difficulty, sess.Topic),
	})
	prompt = append(prompt, compacted...)
	prompt = append(prompt, userMsg)

	temperature := float32(0.7)
	maxTokens := 500

	resp, err := s.provider.Complete(ctx, providers.CompletionRequest{
		Model:       s.model,
		Messages:    prompt,
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("completion failed: %w", err)
	}

	assistantMsg := models.ConversationMessage{
		Role:    models.RoleAssistant,
		Content: resp.Content,
	}

	canonical := append(compacted, userMsg, assistantMsg)

	// Last write wins on concurrent turns for the same session; a practice
	// session has a single operator, so this is acceptable.
	s.mu.Lock()
	s.histories[sessionID] = canonical
	s.mu.Unlock()

	s.mirror(ctx, sessionID, userMsg)
	s.mirror(ctx, sessionID, assistantMsg)

	return &TurnResult{
		Reply:   resp.Content,
		Usage:   resp.Usage,
		History: canonical,
	}, nil
}

// History returns a copy of the session's canonical history.
func (s *Service) History(sessionID string) []models.ConversationMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ConversationMessage(nil), s.histories[sessionID]...)
}

// Forget drops the in-memory history for an ended session.
func (s *Service) Forget(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.histories, sessionID)
}

// mirror writes a message to the durable log. Mirror failures are logged,
// not raised: the in-memory history remains the canonical copy for the
// life of the session.
func (s *Service) mirror(ctx context.Context, sessionID string, msg models.ConversationMessage) {
	if s.messageRepo == nil {
		return
	}
	_, err := s.messageRepo.Create(ctx, repository.MessageRecord{
		SessionID: sessionID,
		Role:      msg.Role,
		Content:   msg.Content,
	})
	if err != nil {
		s.logger.WithError(err).WithField("session_id", sessionID).Warn("failed to mirror message")
	}
}
