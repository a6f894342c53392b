package handlers

import (
	"database/sql"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/fluentvoice/fluentvoice-backend/internal/api/middleware"
	"github.com/fluentvoice/fluentvoice-backend/internal/conversation"
	"github.com/fluentvoice/fluentvoice-backend/internal/models"
	"github.com/fluentvoice/fluentvoice-backend/internal/repository"
	"github.com/fluentvoice/fluentvoice-backend/internal/services"
	"github.com/fluentvoice/fluentvoice-backend/internal/session"
)

// StartConversation creates a session, provisions its media room, and
// returns a join token for the learner.
func StartConversation(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			Type       models.SessionType `json:"type"`
			Difficulty models.Difficulty  `json:"difficulty"`
			Topic      string             `json:"topic"`
		}

		if err := c.BodyParser(&req); err != nil && !errors.Is(err, fiber.ErrUnprocessableEntity) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}

		// Enum membership is validated here at the edge; the store only
		// applies defaults.
		if req.Type != "" && !models.ValidSessionType(req.Type) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid session type",
			})
		}
		if req.Difficulty != "" && !models.ValidDifficulty(req.Difficulty) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid difficulty",
			})
		}

		var userID string
		if uc := middleware.GetUserContext(c); uc != nil {
			userID = uc.UserID
		}

		sess := svc.Sessions.Create(session.CreateRequest{
			UserID:     userID,
			Type:       req.Type,
			Difficulty: req.Difficulty,
			Topic:      req.Topic,
		})

		// The voice agent reads difficulty and topic from room metadata.
		metadata := map[string]string{
			"session_id": sess.ID,
			"difficulty": string(sess.Difficulty),
		}
		if sess.Topic != "" {
			metadata["topic"] = sess.Topic
		}

		if err := svc.Rooms.CreateRoom(c.Context(), sess.RoomName, metadata); err != nil {
			svc.Sessions.End(sess.ID)
			svc.Logger.WithError(err).WithField("room", sess.RoomName).Error("failed to create room")
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": "Failed to provision conversation room",
			})
		}

		identity := "learner-" + sess.ID[:8]
		if userID != "" {
			identity = "learner-" + userID
		}

		token, err := svc.Rooms.GenerateToken(sess.RoomName, identity, metadata)
		if err != nil {
			svc.Sessions.End(sess.ID)
			svc.Logger.WithError(err).Error("failed to generate join token")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to generate join token",
			})
		}

		mirrorSessionCreate(c, svc, sess)
		svc.Conversation.Begin(c.Context(), sess.ID)

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"session":   sess,
			"room_name": sess.RoomName,
			"url":       svc.Rooms.ClientURL(),
			"token":     token,
			"greeting":  conversation.Greeting,
		})
	}
}

// GetConversation returns a session by id
func GetConversation(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, ok := svc.Sessions.Get(c.Params("id"))
		if !ok {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Conversation not found",
			})
		}
		return c.JSON(sess)
	}
}

// ListConversations returns sessions, optionally only active ones.
// Authenticated callers get their full history from the durable mirror,
// including conversations that have ended and left the in-memory store.
func ListConversations(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		activeOnly := c.QueryBool("active", false)

		if uc := middleware.GetUserContext(c); uc != nil && svc.SessionRepo != nil {
			records, err := svc.SessionRepo.ListByUser(c.Context(), uc.UserID)
			if err != nil {
				svc.Logger.WithError(err).WithField("user_id", uc.UserID).Error("failed to list sessions")
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "Failed to list conversations",
				})
			}

			sessions := make([]*models.Session, 0, len(records))
			for _, record := range records {
				if activeOnly && record.EndedAt.Valid {
					continue
				}
				sessions = append(sessions, record.Session())
			}

			return c.JSON(fiber.Map{
				"sessions": sessions,
			})
		}

		return c.JSON(fiber.Map{
			"sessions": svc.Sessions.List(activeOnly),
		})
	}
}

// GetConversationMessages returns the durable message log for a session
func GetConversationMessages(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		messages, err := svc.MessageRepo.ListBySession(c.Context(), c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		return c.JSON(fiber.Map{
			"messages": messages,
		})
	}
}

// Turn runs one text practice exchange
func Turn(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			Message string `json:"message"`
		}

		if err := c.BodyParser(&req); err != nil || req.Message == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "message is required",
			})
		}

		result, err := svc.Conversation.Turn(c.Context(), c.Params("id"), req.Message)
		if err != nil {
			switch {
			case errors.Is(err, conversation.ErrSessionNotFound):
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"error": "Conversation not found",
				})
			case errors.Is(err, conversation.ErrSessionEnded):
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{
					"error": "Conversation has ended",
				})
			default:
				svc.Logger.WithError(err).Error("turn failed")
				return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
					"error": "The teacher is unavailable right now. Please try again.",
				})
			}
		}

		return c.JSON(result)
	}
}

// EndConversation ends a session. Ending twice, or ending a conversation
// whose room is already gone, succeeds.
func EndConversation(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		sess, ok := svc.Sessions.Get(id)
		if ok {
			// Room teardown is best effort; the cleanup sweep reclaims
			// rooms that survive a failed delete.
			if err := svc.Rooms.DeleteRoom(c.Context(), sess.RoomName); err != nil {
				svc.Logger.WithError(err).WithField("room", sess.RoomName).Warn("failed to delete room")
			}
		}

		svc.Sessions.End(id)
		svc.Conversation.Forget(id)

		if svc.SessionRepo != nil {
			if err := svc.SessionRepo.End(c.Context(), id, time.Now().UTC()); err != nil {
				svc.Logger.WithError(err).WithField("session_id", id).Warn("failed to mirror session end")
			}
		}

		return c.JSON(fiber.Map{
			"message": "Conversation ended",
		})
	}
}

func mirrorSessionCreate(c *fiber.Ctx, svc *services.Services, sess *models.Session) {
	if svc.SessionRepo == nil {
		return
	}

	record := repository.SessionRecord{
		ID:         sess.ID,
		RoomName:   sess.RoomName,
		Type:       string(sess.Type),
		Difficulty: string(sess.Difficulty),
		CreatedAt:  sess.CreatedAt,
	}
	if sess.UserID != "" {
		record.UserID = sql.NullString{String: sess.UserID, Valid: true}
	}
	if sess.Topic != "" {
		record.Topic = sql.NullString{String: sess.Topic, Valid: true}
	}

	if err := svc.SessionRepo.Create(c.Context(), record); err != nil {
		svc.Logger.WithError(err).WithField("session_id", sess.ID).Warn("failed to mirror session create")
	}
}
