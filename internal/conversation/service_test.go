package conversation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluentvoice/fluentvoice-backend/internal/models"
	"github.com/fluentvoice/fluentvoice-backend/internal/repository"
	"github.com/fluentvoice/fluentvoice-backend/internal/session"
)

type fakeMessageRepo struct {
	records []repository.MessageRecord
}

func (f *fakeMessageRepo) Create(_ context.Context, message repository.MessageRecord) (string, error) {
	f.records = append(f.records, message)
	return "id", nil
}

func (f *fakeMessageRepo) ListBySession(_ context.Context, sessionID string) ([]repository.MessageRecord, error) {
	var out []repository.MessageRecord
	for _, r := range f.records {
		if r.SessionID == sessionID {
			out = append(out, r)
		}
	}
	return out, nil
}

func newTestService(provider *fakeProvider) (*Service, session.Store, *fakeMessageRepo) {
	store := session.NewStore()
	repo := &fakeMessageRepo{}
	compactor := NewCompactor(provider, "llama3.1-8b", 10)
	svc := NewService(store, provider, compactor, repo, "llama3.3-70b", nil)
	return svc, store, repo
}

func TestService_BeginSeedsGreeting(t *testing.T) {
	svc, store, repo := newTestService(&fakeProvider{response: "hi"})
	sess := store.Create(session.CreateRequest{})

	svc.Begin(context.Background(), sess.ID)

	history := svc.History(sess.ID)
	require.Len(t, history, 1)
	assert.Equal(t, models.RoleAssistant, history[0].Role)
	assert.Equal(t, Greeting, history[0].Content)

	require.Len(t, repo.records, 1)
	assert.Equal(t, sess.ID, repo.records[0].SessionID)
}

func TestService_TurnAppendsExchange(t *testing.T) {
	provider := &fakeProvider{response: "Great question! Let me explain."}
	svc, store, repo := newTestService(provider)
	sess := store.Create(session.CreateRequest{
		Difficulty: models.DifficultyIntermediate,
		Topic:      "ordering_food",
	})
	svc.Begin(context.Background(), sess.ID)

	result, err := svc.Turn(context.Background(), sess.ID, "How do I ask for the bill?")
	require.NoError(t, err)

	assert.Equal(t, "Great question! Let me explain.", result.Reply)
	assert.Equal(t, 15, result.Usage.TotalTokens)

	// greeting + user + assistant
	require.Len(t, result.History, 3)
	assert.Equal(t, models.RoleUser, result.History[1].Role)
	assert.Equal(t, models.RoleAssistant, result.History[2].Role)
	assert.Equal(t, result.History, svc.History(sess.ID))

	// greeting + user + assistant mirrored
	assert.Len(t, repo.records, 3)

	// The model call carries the system prompt with topic and level.
	require.Len(t, provider.requests, 1)
	req := provider.requests[0]
	assert.Equal(t, "llama3.3-70b", req.Model)
	assert.Equal(t, models.RoleSystem, req.Messages[0].Role)
	assert.Contains(t, req.Messages[0].Content, "ordering_food")
	assert.Contains(t, req.Messages[0].Content, "moderately complex")
}

func TestService_TurnUnknownSession(t *testing.T) {
	svc, _, _ := newTestService(&fakeProvider{response: "hi"})

	_, err := svc.Turn(context.Background(), "missing", "hello")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestService_TurnEndedSession(t *testing.T) {
	svc, store, _ := newTestService(&fakeProvider{response: "hi"})
	sess := store.Create(session.CreateRequest{})
	store.End(sess.ID)

	_, err := svc.Turn(context.Background(), sess.ID, "hello")
	assert.ErrorIs(t, err, ErrSessionEnded)
}

func TestService_FailedTurnLeavesHistoryUntouched(t *testing.T) {
	provider := &fakeProvider{err: errors.New("provider down")}
	svc, store, repo := newTestService(provider)
	sess := store.Create(session.CreateRequest{})
	svc.Begin(context.Background(), sess.ID)

	before := svc.History(sess.ID)
	mirrored := len(repo.records)

	_, err := svc.Turn(context.Background(), sess.ID, "hello")
	require.Error(t, err)

	assert.Equal(t, before, svc.History(sess.ID))
	assert.Len(t, repo.records, mirrored)
}

func TestService_LongConversationGetsCompacted(t *testing.T) {
	provider := &fakeProvider{response: "reply"}
	svc, store, _ := newTestService(provider)
	sess := store.Create(session.CreateRequest{})

	// After 10 turns the history holds 21 messages, so the 11th turn
	// crosses the 2x threshold and triggers compaction.
	svc.Begin(context.Background(), sess.ID)
	for i := 0; i < 11; i++ {
		_, err := svc.Turn(context.Background(), sess.ID, "another message")
		require.NoError(t, err)
	}

	history := svc.History(sess.ID)
	// summary + 10 recent + user + assistant
	require.Len(t, history, 13)
	assert.Equal(t, models.RoleSystem, history[0].Role)
	assert.Contains(t, history[0].Content, SummaryPrefix)
}

func TestService_Forget(t *testing.T) {
	svc, store, _ := newTestService(&fakeProvider{response: "hi"})
	sess := store.Create(session.CreateRequest{})
	svc.Begin(context.Background(), sess.ID)

	svc.Forget(sess.ID)
	assert.Empty(t, svc.History(sess.ID))
}
