package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/fluentvoice/fluentvoice-backend/internal/api/middleware"
	"github.com/fluentvoice/fluentvoice-backend/internal/auth"
)

// Signup registers a new learner account
func Signup(authService *auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			Email      string `json:"email"`
			Username   string `json:"username"`
			Password   string `json:"password"`
			NativeLang string `json:"native_language"`
			TargetLang string `json:"target_language"`
		}

		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}

		if req.Email == "" || req.Username == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "email and username are required",
			})
		}

		user, err := authService.SignUp(c.Context(), req.Email, req.Username, req.Password, req.NativeLang, req.TargetLang)
		if err != nil {
			status := fiber.StatusInternalServerError
			if errors.Is(err, auth.ErrEmailAlreadyExists) {
				status = fiber.StatusConflict
			} else if errors.Is(err, auth.ErrPasswordTooShort) {
				status = fiber.StatusBadRequest
			}
			return c.Status(status).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		return c.Status(fiber.StatusCreated).JSON(user)
	}
}

// Login authenticates a learner and returns an access token
func Login(authService *auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}

		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}

		user, token, err := authService.Login(c.Context(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Invalid email or password",
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		return c.JSON(fiber.Map{
			"user":         user,
			"access_token": token,
		})
	}
}

// GetCurrentUser returns the authenticated user's profile
func GetCurrentUser(authService *auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uc := middleware.GetUserContext(c)
		if uc == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Not authenticated",
			})
		}

		id, err := uuid.Parse(uc.UserID)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid user id",
			})
		}

		user, err := authService.GetUser(c.Context(), id)
		if err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "User not found",
			})
		}

		return c.JSON(user)
	}
}
