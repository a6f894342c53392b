package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/fluentvoice/fluentvoice-backend/internal/api/handlers"
	"github.com/fluentvoice/fluentvoice-backend/internal/api/middleware"
	"github.com/fluentvoice/fluentvoice-backend/internal/auth"
	"github.com/fluentvoice/fluentvoice-backend/internal/services"
)

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, svc *services.Services, authService *auth.Service) {
	api := app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"service": "fluentvoice-backend",
		})
	})

	// Authentication
	authGroup := api.Group("/auth")
	authGroup.Post("/signup", middleware.AuthRateLimit(), handlers.Signup(authService))
	authGroup.Post("/login", middleware.AuthRateLimit(), handlers.Login(authService))
	authGroup.Get("/me", middleware.AuthRequired(authService), handlers.GetCurrentUser(authService))

	// Conversations. Starting one works anonymously; a valid token
	// attaches the session to the learner's account.
	conversations := api.Group("/conversations", middleware.OptionalAuth(authService))
	conversations.Post("/", handlers.StartConversation(svc))
	conversations.Get("/", handlers.ListConversations(svc))
	conversations.Get("/:id", handlers.GetConversation(svc))
	conversations.Get("/:id/messages", handlers.GetConversationMessages(svc))
	conversations.Post("/:id/turn", handlers.Turn(svc))
	conversations.Post("/:id/end", handlers.EndConversation(svc))

	// Speech
	speech := api.Group("/speech", middleware.OptionalAuth(authService))
	speech.Post("/synthesize", middleware.SynthesisRateLimit(), handlers.Synthesize(svc))
	speech.Post("/transcribe", handlers.Transcribe(svc))

	// WebSocket text practice
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/conversations/:id", websocket.New(handlers.PracticeSocket(svc)))
}
