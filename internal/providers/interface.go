package providers

import (
	"context"

	"github.com/fluentvoice/fluentvoice-backend/internal/models"
)

// Provider is a stateless chat completion backend. Model is chosen per
// request so that callers can route summarization to a cheaper model than
// the main teaching model.
type Provider interface {
	// Name returns the provider name.
	Name() string

	// Complete performs a chat completion.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// ValidateConfig validates the provider configuration.
	ValidateConfig() error
}

// CompletionRequest represents a chat completion request.
type CompletionRequest struct {
	Messages    []models.ConversationMessage `json:"messages"`
	Model       string                       `json:"model"`
	Temperature *float32                     `json:"temperature,omitempty"`
	MaxTokens   *int                         `json:"max_tokens,omitempty"`
}

// CompletionResponse represents a completion result.
type CompletionResponse struct {
	Content string `json:"content"`
	Model   string `json:"model"`
	Usage   Usage  `json:"usage"`
}

// Usage represents token usage information.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
