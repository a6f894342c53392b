package services

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/fluentvoice/fluentvoice-backend/internal/audiocache"
	"github.com/fluentvoice/fluentvoice-backend/internal/config"
	"github.com/fluentvoice/fluentvoice-backend/internal/conversation"
	"github.com/fluentvoice/fluentvoice-backend/internal/providers"
	"github.com/fluentvoice/fluentvoice-backend/internal/providers/cerebras"
	openaiprovider "github.com/fluentvoice/fluentvoice-backend/internal/providers/openai"
	"github.com/fluentvoice/fluentvoice-backend/internal/repository"
	"github.com/fluentvoice/fluentvoice-backend/internal/repository/postgres"
	"github.com/fluentvoice/fluentvoice-backend/internal/rooms"
	"github.com/fluentvoice/fluentvoice-backend/internal/session"
	"github.com/fluentvoice/fluentvoice-backend/internal/speech"
)

// Services holds all service instances
type Services struct {
	Config       *config.Config
	Logger       *logrus.Logger
	Sessions     session.Store
	Conversation *conversation.Service
	Providers    *providers.Registry
	Rooms        rooms.Provider
	Speech       speech.Provider
	AudioCache   *audiocache.Cache
	SessionRepo  repository.SessionRepository
	MessageRepo  repository.MessageRepository
	UserRepo     repository.UserRepository
}

// NewServices wires all service instances from configuration and shared
// connections.
func NewServices(cfg *config.Config, db *sqlx.DB, redisClient *redis.Client, logger *logrus.Logger) (*Services, error) {
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.InfoLevel)
	}

	sessionRepo := postgres.NewSessionRepository(db)
	messageRepo := postgres.NewMessageRepository(db)
	userRepo := postgres.NewUserRepository(db)

	registry := providers.NewRegistry()

	cerebrasProvider, err := cerebras.NewProvider("cerebras", cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to create Cerebras provider: %w", err)
	}
	registry.Register("cerebras", cerebrasProvider)

	if cfg.Speech.APIKey != "" {
		openaiCfg := cfg.LLM
		openaiCfg.APIKey = cfg.Speech.APIKey
		if provider, err := openaiprovider.NewProvider("openai", openaiCfg); err == nil {
			registry.Register("openai", provider)
		}
	}

	completionProvider := registry.Get(cfg.LLM.Provider)
	if completionProvider == nil {
		return nil, fmt.Errorf("unknown completion provider: %s", cfg.LLM.Provider)
	}

	speechProvider, err := speech.NewOpenAIProvider(cfg.Speech)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech provider: %w", err)
	}

	cache, err := audiocache.New(&audiocache.Config{
		RedisClient: redisClient,
		TTL:         cfg.Speech.CacheTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create audio cache: %w", err)
	}

	store := session.NewStore()
	compactor := conversation.NewCompactor(completionProvider, cfg.LLM.SummaryModel, cfg.Conversation.KeepRecentCount)
	conversationSvc := conversation.NewService(store, completionProvider, compactor, messageRepo, cfg.LLM.Model, logger)

	return &Services{
		Config:       cfg,
		Logger:       logger,
		Sessions:     store,
		Conversation: conversationSvc,
		Providers:    registry,
		Rooms:        rooms.NewLiveKitProvider(cfg.LiveKit),
		Speech:       speechProvider,
		AudioCache:   cache,
		SessionRepo:  sessionRepo,
		MessageRepo:  messageRepo,
		UserRepo:     userRepo,
	}, nil
}
