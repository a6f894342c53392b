package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sashabaranov/go-openai"

	"github.com/fluentvoice/fluentvoice-backend/internal/config"
)

// OpenAIProvider implements Provider using OpenAI's tts and whisper APIs.
type OpenAIProvider struct {
	cfg    config.SpeechConfig
	client *openai.Client
}

// NewOpenAIProvider creates a speech provider from OpenAI credentials.
func NewOpenAIProvider(cfg config.SpeechConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("OpenAI API key is required for speech")
	}

	return &OpenAIProvider{
		cfg:    cfg,
		client: openai.NewClient(cfg.APIKey),
	}, nil
}

// TextToSpeech synthesizes audio for text.
func (p *OpenAIProvider) TextToSpeech(ctx context.Context, text, voice string) ([]byte, error) {
	if voice == "" {
		voice = p.cfg.Voice
	}

	resp, err := p.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model: openai.SpeechModel(p.cfg.TTSModel),
		Input: text,
		Voice: openai.SpeechVoice(voice),
	})
	if err != nil {
		return nil, fmt.Errorf("speech synthesis failed: %w", err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read synthesized audio: %w", err)
	}

	return audio, nil
}

// SpeechToText transcribes audio.
func (p *OpenAIProvider) SpeechToText(ctx context.Context, audio []byte, filename string) (string, error) {
	resp, err := p.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    p.cfg.STTModel,
		Reader:   bytes.NewReader(audio),
		FilePath: filename,
	})
	if err != nil {
		return "", fmt.Errorf("transcription failed: %w", err)
	}

	return resp.Text, nil
}
