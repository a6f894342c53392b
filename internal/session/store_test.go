package session

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluentvoice/fluentvoice-backend/internal/models"
)

func TestRoomName_Deterministic(t *testing.T) {
	id := "3f2504e0-4f89-41d3-9a0c-0305e82c3301"

	first := RoomName(id)
	second := RoomName(id)

	assert.Equal(t, first, second)
	assert.True(t, strings.HasPrefix(first, "practice-"))
	assert.Equal(t, "practice-3f2504e04f89", first)
}

func TestStore_CreateAppliesDefaults(t *testing.T) {
	store := NewStore()

	sess := store.Create(CreateRequest{})

	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, models.SessionTypeFree, sess.Type)
	assert.Equal(t, models.DifficultyBeginner, sess.Difficulty)
	assert.False(t, sess.CreatedAt.IsZero())
	assert.Nil(t, sess.EndedAt)
}

func TestStore_CreateCopiesRequestFields(t *testing.T) {
	store := NewStore()

	sess := store.Create(CreateRequest{
		Type:       models.SessionTypePractice,
		Difficulty: models.DifficultyIntermediate,
		Topic:      "ordering_food",
	})

	assert.Equal(t, models.SessionTypePractice, sess.Type)
	assert.Equal(t, models.DifficultyIntermediate, sess.Difficulty)
	assert.Equal(t, "ordering_food", sess.Topic)
	assert.Nil(t, sess.EndedAt)
	assert.NotEmpty(t, sess.RoomName)
	assert.True(t, strings.HasPrefix(sess.RoomName, "practice-"))
}

func TestStore_GetByRoomName(t *testing.T) {
	store := NewStore()

	sess := store.Create(CreateRequest{Topic: "travel"})

	found, ok := store.GetByRoomName(sess.RoomName)
	require.True(t, ok)
	assert.Equal(t, sess.ID, found.ID)
	assert.Equal(t, "travel", found.Topic)

	_, ok = store.GetByRoomName("practice-nope")
	assert.False(t, ok)
}

func TestStore_EndIsIdempotent(t *testing.T) {
	store := NewStore()
	sess := store.Create(CreateRequest{})

	store.End(sess.ID)

	first, ok := store.Get(sess.ID)
	require.True(t, ok)
	require.NotNil(t, first.EndedAt)

	store.End(sess.ID)

	second, ok := store.Get(sess.ID)
	require.True(t, ok)
	require.NotNil(t, second.EndedAt)
	assert.Equal(t, *first.EndedAt, *second.EndedAt)
}

func TestStore_EndUnknownIDIsNoop(t *testing.T) {
	store := NewStore()

	assert.NotPanics(t, func() {
		store.End("does-not-exist")
	})
}

func TestStore_ListActiveOnlyExcludesEnded(t *testing.T) {
	store := NewStore()

	active := store.Create(CreateRequest{})
	ended := store.Create(CreateRequest{})
	store.End(ended.ID)

	all := store.List(false)
	assert.Len(t, all, 2)

	activeList := store.List(true)
	require.Len(t, activeList, 1)
	assert.Equal(t, active.ID, activeList[0].ID)
	for _, sess := range activeList {
		assert.Nil(t, sess.EndedAt)
	}
}

func TestStore_SnapshotsAreIsolated(t *testing.T) {
	store := NewStore()
	sess := store.Create(CreateRequest{})

	// Scribbling on a returned session must not write through to the
	// store; only End may set EndedAt.
	scribble := time.Now().UTC()
	sess.Topic = "mutated by caller"
	sess.EndedAt = &scribble

	fresh, ok := store.Get(sess.ID)
	require.True(t, ok)
	assert.Empty(t, fresh.Topic)
	assert.Nil(t, fresh.EndedAt)
	assert.Len(t, store.List(true), 1)

	got, ok := store.Get(sess.ID)
	require.True(t, ok)
	got.Topic = "another scribble"

	fresh, ok = store.Get(sess.ID)
	require.True(t, ok)
	assert.Empty(t, fresh.Topic)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	store := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sess := store.Create(CreateRequest{})
			store.Get(sess.ID)
			store.List(true)
			store.End(sess.ID)
			store.End(sess.ID)
		}()
	}
	wg.Wait()

	assert.Len(t, store.List(false), 16)
	assert.Empty(t, store.List(true))
}
