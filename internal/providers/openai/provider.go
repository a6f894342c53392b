package openai

import (
	"context"
	"errors"

	"github.com/sashabaranov/go-openai"

	"github.com/fluentvoice/fluentvoice-backend/internal/config"
	"github.com/fluentvoice/fluentvoice-backend/internal/providers"
)

// Provider implements the OpenAI provider
type Provider struct {
	id     string
	config config.LLMConfig
	client *openai.Client
}

// NewProvider creates a new OpenAI provider
func NewProvider(id string, cfg config.LLMConfig) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}

	return &Provider{
		id:     id,
		config: cfg,
		client: openai.NewClient(cfg.APIKey),
	}, nil
}

// Name returns the provider name
func (p *Provider) Name() string {
	return "OpenAI"
}

// Complete performs a chat completion
func (p *Provider) Complete(ctx context.Context, req providers.CompletionRequest) (*providers.CompletionResponse, error) {
	messages := make([]openai.ChatCompletionMessage, len(req.Messages))
	for i, msg := range req.Messages {
		messages[i] = openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	model := req.Model
	if model == "" {
		model = p.config.Model
	}

	openAIReq := openai.ChatCompletionRequest{
		Model:    model,
		Messages: messages,
	}
	if req.Temperature != nil {
		openAIReq.Temperature = *req.Temperature
	}
	if req.MaxTokens != nil {
		openAIReq.MaxTokens = *req.MaxTokens
	}

	resp, err := p.client.CreateChatCompletion(ctx, openAIReq)
	if err != nil {
		return nil, err
	}

	if len(resp.Choices) == 0 {
		return nil, errors.New("completion returned no choices")
	}

	return &providers.CompletionResponse{
		Content: resp.Choices[0].Message.Content,
		Model:   resp.Model,
		Usage: providers.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

// ValidateConfig validates the provider configuration
func (p *Provider) ValidateConfig() error {
	if p.config.APIKey == "" {
		return errors.New("API key is required")
	}
	return nil
}
