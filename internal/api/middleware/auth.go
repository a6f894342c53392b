package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fluentvoice/fluentvoice-backend/internal/auth"
)

// UserContext carries the authenticated user's identity through a request.
type UserContext struct {
	UserID   string
	Email    string
	Username string
}

const userContextKey = "user_context"

// AuthRequired creates a middleware that requires a valid access token
func AuthRequired(authService *auth.Service) fiber.Handler {
	return authMiddleware(authService, false)
}

// OptionalAuth creates a middleware that attaches the user when a valid
// token is present but lets anonymous requests through. Conversations can
// be started without an account.
func OptionalAuth(authService *auth.Service) fiber.Handler {
	return authMiddleware(authService, true)
}

func authMiddleware(authService *auth.Service, optional bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := auth.ExtractTokenFromBearer(c.Get("Authorization"))
		if token == "" {
			token = c.Cookies("access_token")
		}

		if token == "" {
			if optional {
				return c.Next()
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}

		claims, err := authService.ValidateToken(token)
		if err != nil {
			if optional {
				// An invalid token on an optional route is treated as
				// anonymous rather than rejected.
				return c.Next()
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		c.Locals(userContextKey, &UserContext{
			UserID:   claims.UserID,
			Email:    claims.Email,
			Username: claims.Username,
		})

		return c.Next()
	}
}

// GetUserContext returns the authenticated user for the request, or nil.
func GetUserContext(c *fiber.Ctx) *UserContext {
	if uc, ok := c.Locals(userContextKey).(*UserContext); ok {
		return uc
	}
	return nil
}
