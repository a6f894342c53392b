package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/fluentvoice/fluentvoice-backend/internal/api"
	"github.com/fluentvoice/fluentvoice-backend/internal/auth"
	"github.com/fluentvoice/fluentvoice-backend/internal/cleanup"
	"github.com/fluentvoice/fluentvoice-backend/internal/config"
	"github.com/fluentvoice/fluentvoice-backend/internal/database"
	"github.com/fluentvoice/fluentvoice-backend/internal/services"
)

func main() {
	// Local development credentials live in .env.
	_ = godotenv.Load()

	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("Invalid configuration")
	}

	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if err := database.RunMigrations(cfg.Database); err != nil {
		logger.WithError(err).Fatal("Failed to run migrations")
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	svc, err := services.NewServices(cfg, db.DB, redisClient, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize services")
	}

	jwtSecret := cfg.JWTSecret
	if jwtSecret == "" {
		jwtSecret = "change-me-in-production"
		logger.Warn("Using default JWT secret. Set FLUENTVOICE_JWT_SECRET in production!")
	}
	authService := auth.NewService(svc.UserRepo, jwtSecret)

	app := fiber.New(fiber.Config{
		AppName:      "FluentVoice Backend",
		ErrorHandler: customErrorHandler,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     getOrigins(),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		AllowCredentials: true,
	}))

	api.SetupRoutes(app, svc, authService)

	// Abandoned rooms are reclaimed on their own schedule, independent of
	// the request path.
	sweeper := cleanup.NewSweeper(svc.Rooms, svc.Sessions, svc.SessionRepo, cfg.Cleanup, logger)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sweeper.Run(ctx)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.WithField("addr", addr).Info("FluentVoice Backend starting")
	if err := app.Listen(addr); err != nil {
		logger.WithError(err).Fatal("Failed to start server")
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}

func getOrigins() string {
	origins := os.Getenv("FLUENTVOICE_CORS_ORIGINS")
	if origins == "" {
		return "http://localhost:5173,http://localhost:3000"
	}
	return origins
}
