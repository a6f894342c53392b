package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluentvoice/fluentvoice-backend/internal/api/middleware"
	"github.com/fluentvoice/fluentvoice-backend/internal/auth"
	"github.com/fluentvoice/fluentvoice-backend/internal/models"
	"github.com/fluentvoice/fluentvoice-backend/internal/repository"
	"github.com/fluentvoice/fluentvoice-backend/internal/services"
	"github.com/fluentvoice/fluentvoice-backend/internal/session"
)

type fakeSessionRepo struct {
	records    []*repository.SessionRecord
	listCalls  int
	lastUserID string
}

func (f *fakeSessionRepo) Create(ctx context.Context, record repository.SessionRecord) error {
	f.records = append(f.records, &record)
	return nil
}

func (f *fakeSessionRepo) Get(ctx context.Context, id string) (*repository.SessionRecord, error) {
	for _, record := range f.records {
		if record.ID == id {
			return record, nil
		}
	}
	return nil, nil
}

func (f *fakeSessionRepo) ListByUser(ctx context.Context, userID string) ([]*repository.SessionRecord, error) {
	f.listCalls++
	f.lastUserID = userID
	var out []*repository.SessionRecord
	for _, record := range f.records {
		if record.UserID.Valid && record.UserID.String == userID {
			out = append(out, record)
		}
	}
	return out, nil
}

func (f *fakeSessionRepo) End(ctx context.Context, id string, endedAt time.Time) error {
	return nil
}

type sessionsResponse struct {
	Sessions []*models.Session `json:"sessions"`
}

func listTestApp(svc *services.Services, authService *auth.Service) *fiber.App {
	app := fiber.New()
	app.Get("/conversations", middleware.OptionalAuth(authService), ListConversations(svc))
	return app
}

func accessTokenForTest(t *testing.T, secret, userID string) string {
	t.Helper()
	token, err := auth.NewJWTService(secret, "fluentvoice").GenerateAccessToken(userID, "mika@example.com", "mika")
	require.NoError(t, err)
	return token
}

func TestListConversations_AuthenticatedReadsDurableHistory(t *testing.T) {
	endedAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	repo := &fakeSessionRepo{
		records: []*repository.SessionRecord{
			{
				ID:         "sess-active",
				RoomName:   "practice-aaaaaaaaaaaa",
				UserID:     sql.NullString{String: "user-1", Valid: true},
				Type:       string(models.SessionTypePractice),
				Difficulty: string(models.DifficultyIntermediate),
				Topic:      sql.NullString{String: "travel", Valid: true},
				CreatedAt:  endedAt.Add(-time.Hour),
			},
			{
				ID:         "sess-ended",
				RoomName:   "practice-bbbbbbbbbbbb",
				UserID:     sql.NullString{String: "user-1", Valid: true},
				Type:       string(models.SessionTypeFree),
				Difficulty: string(models.DifficultyBeginner),
				CreatedAt:  endedAt.Add(-2 * time.Hour),
				EndedAt:    sql.NullTime{Time: endedAt, Valid: true},
			},
			{
				ID:       "sess-other-user",
				RoomName: "practice-cccccccccccc",
				UserID:   sql.NullString{String: "user-2", Valid: true},
			},
		},
	}

	svc := &services.Services{
		Sessions:    session.NewStore(),
		SessionRepo: repo,
		Logger:      logrus.New(),
	}
	authService := auth.NewService(nil, "test-secret")
	app := listTestApp(svc, authService)
	token := accessTokenForTest(t, "test-secret", "user-1")

	req := httptest.NewRequest("GET", "/conversations", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body sessionsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	assert.Equal(t, 1, repo.listCalls)
	assert.Equal(t, "user-1", repo.lastUserID)
	require.Len(t, body.Sessions, 2)
	assert.Equal(t, "sess-active", body.Sessions[0].ID)
	assert.Equal(t, "travel", body.Sessions[0].Topic)
	assert.Nil(t, body.Sessions[0].EndedAt)
	assert.Equal(t, "sess-ended", body.Sessions[1].ID)
	require.NotNil(t, body.Sessions[1].EndedAt)
	assert.Equal(t, endedAt, body.Sessions[1].EndedAt.UTC())
}

func TestListConversations_ActiveFilterSkipsEndedRecords(t *testing.T) {
	repo := &fakeSessionRepo{
		records: []*repository.SessionRecord{
			{
				ID:       "sess-active",
				RoomName: "practice-aaaaaaaaaaaa",
				UserID:   sql.NullString{String: "user-1", Valid: true},
			},
			{
				ID:       "sess-ended",
				RoomName: "practice-bbbbbbbbbbbb",
				UserID:   sql.NullString{String: "user-1", Valid: true},
				EndedAt:  sql.NullTime{Time: time.Now().UTC(), Valid: true},
			},
		},
	}

	svc := &services.Services{
		Sessions:    session.NewStore(),
		SessionRepo: repo,
		Logger:      logrus.New(),
	}
	authService := auth.NewService(nil, "test-secret")
	app := listTestApp(svc, authService)
	token := accessTokenForTest(t, "test-secret", "user-1")

	req := httptest.NewRequest("GET", "/conversations?active=true", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body sessionsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	require.Len(t, body.Sessions, 1)
	assert.Equal(t, "sess-active", body.Sessions[0].ID)
}

func TestListConversations_AnonymousListsInMemorySessions(t *testing.T) {
	repo := &fakeSessionRepo{}
	store := session.NewStore()
	sess := store.Create(session.CreateRequest{Topic: "ordering_food"})

	svc := &services.Services{
		Sessions:    store,
		SessionRepo: repo,
		Logger:      logrus.New(),
	}
	authService := auth.NewService(nil, "test-secret")
	app := listTestApp(svc, authService)

	resp, err := app.Test(httptest.NewRequest("GET", "/conversations", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body sessionsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	assert.Zero(t, repo.listCalls)
	require.Len(t, body.Sessions, 1)
	assert.Equal(t, sess.ID, body.Sessions[0].ID)
}
