package rooms

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluentvoice/fluentvoice-backend/internal/config"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *LiveKitProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewLiveKitProvider(config.LiveKitConfig{
		URL:       strings.Replace(srv.URL, "http://", "ws://", 1),
		APIKey:    "api-key",
		APISecret: "api-secret",
	})
}

func TestLiveKit_CreateRoomSendsMetadata(t *testing.T) {
	var gotPath string
	var gotBody map[string]interface{}

	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.True(t, strings.HasPrefix(r.Header.Get("Authorization"), "Bearer "))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{}`))
	})

	err := provider.CreateRoom(context.Background(), "practice-abc", map[string]string{"topic": "travel"})
	require.NoError(t, err)

	assert.Equal(t, rpcCreateRoom, gotPath)
	assert.Equal(t, "practice-abc", gotBody["name"])
	assert.Contains(t, gotBody["metadata"], "travel")
}

func TestLiveKit_DeleteRoomMissingIsSuccess(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "room not found", http.StatusNotFound)
	})

	err := provider.DeleteRoom(context.Background(), "practice-gone")
	assert.NoError(t, err)
}

func TestLiveKit_DeleteRoomOtherErrorPropagates(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	err := provider.DeleteRoom(context.Background(), "practice-x")
	assert.Error(t, err)
}

func TestLiveKit_ListRoomsParsesCreationTime(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"rooms":[{"name":"practice-abc","creation_time":"1700000000","num_participants":2}]}`))
	})

	rooms, err := provider.ListRooms(context.Background())
	require.NoError(t, err)

	require.Len(t, rooms, 1)
	assert.Equal(t, "practice-abc", rooms[0].Name)
	assert.Equal(t, 2, rooms[0].NumParticipants)
	assert.Equal(t, time.Unix(1700000000, 0), rooms[0].CreationTime)
}

func TestLiveKit_ListParticipants(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"participants":[{"identity":"learner-1","state":"ACTIVE"},{"identity":"agent-teacher","state":"ACTIVE"}]}`))
	})

	participants, err := provider.ListParticipants(context.Background(), "practice-abc")
	require.NoError(t, err)

	require.Len(t, participants, 2)
	assert.Equal(t, "learner-1", participants[0].Identity)
	assert.Equal(t, "agent-teacher", participants[1].Identity)
}
