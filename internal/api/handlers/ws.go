package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/websocket/v2"

	"github.com/fluentvoice/fluentvoice-backend/internal/conversation"
	"github.com/fluentvoice/fluentvoice-backend/internal/services"
)

const wsTurnTimeout = 60 * time.Second

type wsTurnRequest struct {
	Message string `json:"message"`
}

type wsTurnResponse struct {
	Reply string `json:"reply,omitempty"`
	Error string `json:"error,omitempty"`
	Done  bool   `json:"done,omitempty"`
}

// PracticeSocket runs a text practice loop over a websocket: each client
// message is one turn, each server message one teacher reply. Turn
// semantics are identical to the POST /turn endpoint.
func PracticeSocket(svc *services.Services) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		sessionID := c.Params("id")
		if _, ok := svc.Sessions.Get(sessionID); !ok {
			c.WriteJSON(wsTurnResponse{Error: "Conversation not found", Done: true})
			return
		}

		for {
			var req wsTurnRequest
			if err := c.ReadJSON(&req); err != nil {
				return
			}
			if req.Message == "" {
				c.WriteJSON(wsTurnResponse{Error: "message is required"})
				continue
			}

			ctx, cancel := context.WithTimeout(context.Background(), wsTurnTimeout)
			result, err := svc.Conversation.Turn(ctx, sessionID, req.Message)
			cancel()

			if err != nil {
				if errors.Is(err, conversation.ErrSessionEnded) || errors.Is(err, conversation.ErrSessionNotFound) {
					c.WriteJSON(wsTurnResponse{Error: "Conversation has ended", Done: true})
					return
				}
				svc.Logger.WithError(err).Error("websocket turn failed")
				c.WriteJSON(wsTurnResponse{Error: "The teacher is unavailable right now. Please try again."})
				continue
			}

			if err := c.WriteJSON(wsTurnResponse{Reply: result.Reply}); err != nil {
				return
			}
		}
	}
}
