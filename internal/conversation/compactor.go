package conversation

import (
	"context"
	"fmt"
	"strings"

	"github.com/fluentvoice/fluentvoice-backend/internal/models"
	"github.com/fluentvoice/fluentvoice-backend/internal/providers"
)

// SummaryPrefix marks the synthetic message produced by compaction.
const SummaryPrefix = "Previous conversation summary: "

// DefaultKeepRecentCount is how many trailing messages survive compaction
// verbatim.
const DefaultKeepRecentCount = 10

// Compactor bounds the history sent to the completion provider on every
// turn. Histories longer than twice the keep-recent count have their older
// half summarized by a cheaper model; the most recent messages are kept
// verbatim so pronoun references and immediate corrections stay intact.
type Compactor struct {
	provider     providers.Provider
	summaryModel string
	keepRecent   int
}

// NewCompactor creates a compactor that summarizes with summaryModel.
// keepRecent <= 0 selects DefaultKeepRecentCount.
func NewCompactor(provider providers.Provider, summaryModel string, keepRecent int) *Compactor {
	if keepRecent <= 0 {
		keepRecent = DefaultKeepRecentCount
	}
	return &Compactor{
		provider:     provider,
		summaryModel: summaryModel,
		keepRecent:   keepRecent,
	}
}

// Compact returns the history to use for the next model call. The result
// replaces the caller's stored history: compaction is lossy and not
// reversible. A failed summarization is returned as an error, never as a
// silent fallback to the uncompacted history, since that would defeat the
// cost and latency control compaction exists for.
func (c *Compactor) Compact(ctx context.Context, messages []models.ConversationMessage, difficulty models.Difficulty, topic string) ([]models.ConversationMessage, error) {
	// Under twice the keep-recent count a summary would not shrink
	// anything worth the extra model call.
	if len(messages) <= 2*c.keepRecent {
		return messages, nil
	}

	older := messages[:len(messages)-c.keepRecent]
	recent := messages[len(messages)-c.keepRecent:]

	summary, err := c.summarize(ctx, older, difficulty, topic)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize conversation history: %w", err)
	}

	compacted := make([]models.ConversationMessage, 0, c.keepRecent+1)
	compacted = append(compacted, models.ConversationMessage{
		Role:    models.RoleSystem,
		Content: SummaryPrefix + summary,
	})
	compacted = append(compacted, recent...)

	return compacted, nil
}

func (c *Compactor) summarize(ctx context.Context, older []models.ConversationMessage, difficulty models.Difficulty, topic string) (string, error) {
	var transcript strings.Builder
	for _, msg := range older {
		transcript.WriteString(fmt.Sprintf("%s: %s\n", msg.Role, msg.Content))
	}

	instruction := `Summarize this language practice conversation in 2-3 sentences. Include:
- Topics discussed
- Vocabulary and phrases practiced
- Grammar corrections made
- Difficulties the learner had`

	if topic != "" {
		instruction += fmt.Sprintf("\n\nThe lesson topic is: %s", topic)
	}
	if difficulty != "" {
		instruction += fmt.Sprintf("\nThe learner's level is: %s", difficulty)
	}

	temperature := float32(0.3)
	maxTokens := 200

	resp, err := c.provider.Complete(ctx, providers.CompletionRequest{
		Model: c.summaryModel,
		Messages: []models.ConversationMessage{
			{Role: models.RoleSystem, Content: instruction},
			{Role: models.RoleUser, Content: transcript.String()},
		},
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(resp.Content), nil
}
