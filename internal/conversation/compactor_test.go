package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluentvoice/fluentvoice-backend/internal/models"
	"github.com/fluentvoice/fluentvoice-backend/internal/providers"
)

// fakeProvider records requests and returns a canned completion.
type fakeProvider struct {
	response string
	err      error
	requests []providers.CompletionRequest
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Complete(_ context.Context, req providers.CompletionRequest) (*providers.CompletionResponse, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &providers.CompletionResponse{
		Content: f.response,
		Model:   req.Model,
		Usage:   providers.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}, nil
}

func (f *fakeProvider) ValidateConfig() error { return nil }

func alternatingHistory(n int) []models.ConversationMessage {
	messages := make([]models.ConversationMessage, n)
	for i := range messages {
		role := models.RoleUser
		if i%2 == 1 {
			role = models.RoleAssistant
		}
		messages[i] = models.ConversationMessage{
			Role:    role,
			Content: fmt.Sprintf("message %d", i),
		}
	}
	return messages
}

func TestCompact_ShortHistoryIsIdentity(t *testing.T) {
	provider := &fakeProvider{response: "unused"}
	compactor := NewCompactor(provider, "llama3.1-8b", 10)

	for _, n := range []int{0, 1, 5, 10, 19, 20} {
		history := alternatingHistory(n)

		result, err := compactor.Compact(context.Background(), history, models.DifficultyBeginner, "")

		require.NoError(t, err, "length %d", n)
		assert.Equal(t, history, result, "length %d", n)
	}

	// At or below twice the keep-recent count, no summarization call is
	// made at all.
	assert.Empty(t, provider.requests)
}

func TestCompact_LongHistoryIsSummarized(t *testing.T) {
	provider := &fakeProvider{response: "The learner practiced ordering food and was corrected on past tense."}
	compactor := NewCompactor(provider, "llama3.1-8b", 10)

	history := alternatingHistory(22)

	result, err := compactor.Compact(context.Background(), history, models.DifficultyIntermediate, "ordering_food")
	require.NoError(t, err)

	require.Len(t, result, 11)
	assert.Equal(t, models.RoleSystem, result[0].Role)
	assert.True(t, strings.HasPrefix(result[0].Content, SummaryPrefix))

	// The last 10 original messages survive verbatim, in order.
	assert.Equal(t, history[12:], result[1:])
}

func TestCompact_SummaryUsesSummaryModel(t *testing.T) {
	provider := &fakeProvider{response: "summary"}
	compactor := NewCompactor(provider, "llama3.1-8b", 10)

	_, err := compactor.Compact(context.Background(), alternatingHistory(25), models.DifficultyAdvanced, "travel")
	require.NoError(t, err)

	require.Len(t, provider.requests, 1)
	req := provider.requests[0]
	assert.Equal(t, "llama3.1-8b", req.Model)

	// Only the older slice is sent for summarization.
	require.Len(t, req.Messages, 2)
	assert.Equal(t, models.RoleSystem, req.Messages[0].Role)
	assert.Contains(t, req.Messages[0].Content, "travel")
	assert.Contains(t, req.Messages[1].Content, "message 0")
	assert.Contains(t, req.Messages[1].Content, "message 14")
	assert.NotContains(t, req.Messages[1].Content, "message 15")
}

func TestCompact_OutputIsStableUnderReapplication(t *testing.T) {
	provider := &fakeProvider{response: "summary"}
	compactor := NewCompactor(provider, "llama3.1-8b", 10)

	first, err := compactor.Compact(context.Background(), alternatingHistory(30), models.DifficultyBeginner, "")
	require.NoError(t, err)
	require.Len(t, first, 11)

	// The compacted result is below the trigger threshold, so a second
	// pass is identity.
	second, err := compactor.Compact(context.Background(), first, models.DifficultyBeginner, "")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCompact_SummarizationFailurePropagates(t *testing.T) {
	provider := &fakeProvider{err: errors.New("rate limited")}
	compactor := NewCompactor(provider, "llama3.1-8b", 10)

	result, err := compactor.Compact(context.Background(), alternatingHistory(22), models.DifficultyBeginner, "")

	require.Error(t, err)
	assert.ErrorContains(t, err, "rate limited")
	// No silent fallback to the uncompacted history.
	assert.Nil(t, result)
}

func TestCompact_DefaultKeepRecentCount(t *testing.T) {
	provider := &fakeProvider{response: "summary"}
	compactor := NewCompactor(provider, "llama3.1-8b", 0)

	result, err := compactor.Compact(context.Background(), alternatingHistory(21), models.DifficultyBeginner, "")
	require.NoError(t, err)
	assert.Len(t, result, DefaultKeepRecentCount+1)
}
