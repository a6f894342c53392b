package speech

import "context"

// Provider converts between text and audio. It is a sibling collaborator
// of the completion provider; both sit behind the same conversation.
type Provider interface {
	// TextToSpeech synthesizes audio for text. voice may be empty to use
	// the configured default.
	TextToSpeech(ctx context.Context, text, voice string) ([]byte, error)

	// SpeechToText transcribes audio. filename hints the container format
	// to the provider ("turn.wav", "turn.webm").
	SpeechToText(ctx context.Context, audio []byte, filename string) (string, error)
}
