package conversation

import (
	"fmt"

	"github.com/fluentvoice/fluentvoice-backend/internal/models"
)

// Greeting is the assistant's opening line for a new conversation.
const Greeting = "Hello! I'm your language teacher. I'm here to help you practice speaking. " +
	"What would you like to talk about today?"

const basePrompt = `You are a patient and encouraging language teacher. Your role is to:
- Help students practice speaking naturally
- Correct mistakes gently and constructively
- Ask follow-up questions to keep conversation flowing
- Provide clear explanations when needed
- Adjust your language to the student's level

Keep responses conversational, concise, and encouraging.`

// BuildSystemPrompt assembles the teaching prompt for a difficulty level
// and optional topic.
func BuildSystemPrompt(difficulty models.Difficulty, topic string) string {
	prompt := basePrompt

	switch difficulty {
	case models.DifficultyIntermediate:
		prompt += "\n\nUse moderately complex language. Introduce new vocabulary in context."
	case models.DifficultyAdvanced:
		prompt += "\n\nUse natural, complex language. Discuss nuanced topics."
	default:
		prompt += "\n\nUse simple vocabulary and short sentences. Speak slowly and clearly."
	}

	if topic != "" {
		prompt += fmt.Sprintf("\n\nCurrent topic: %s", topic)
	}

	return prompt
}
