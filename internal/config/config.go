package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig       `json:"server" mapstructure:"server"`
	Database     DatabaseConfig     `json:"database" mapstructure:"database"`
	Redis        RedisConfig        `json:"redis" mapstructure:"redis"`
	LiveKit      LiveKitConfig      `json:"livekit" mapstructure:"livekit"`
	LLM          LLMConfig          `json:"llm" mapstructure:"llm"`
	Speech       SpeechConfig       `json:"speech" mapstructure:"speech"`
	Conversation ConversationConfig `json:"conversation" mapstructure:"conversation"`
	Cleanup      CleanupConfig      `json:"cleanup" mapstructure:"cleanup"`
	JWTSecret    string             `json:"jwt_secret" mapstructure:"jwt_secret"`
}

type ServerConfig struct {
	Host string `json:"host" mapstructure:"host"`
	Port int    `json:"port" mapstructure:"port"`
}

type DatabaseConfig struct {
	Host            string        `json:"host" mapstructure:"host"`
	Port            int           `json:"port" mapstructure:"port"`
	User            string        `json:"user" mapstructure:"user"`
	Password        string        `json:"password" mapstructure:"password"`
	Database        string        `json:"database" mapstructure:"database"`
	SSLMode         string        `json:"sslmode" mapstructure:"sslmode"`
	MaxOpenConns    int           `json:"max_open_conns" mapstructure:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns" mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime" mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	Addr     string `json:"addr" mapstructure:"addr"`
	Password string `json:"password" mapstructure:"password"`
	DB       int    `json:"db" mapstructure:"db"`
}

// LiveKitConfig holds credentials for the real-time room provider.
type LiveKitConfig struct {
	URL       string `json:"url" mapstructure:"url"` // ws URL handed to joining clients
	APIKey    string `json:"api_key" mapstructure:"api_key"`
	APISecret string `json:"api_secret" mapstructure:"api_secret"`
}

// LLMConfig selects the completion provider and its models. The summary
// model is a cheaper model used only for history summarization.
type LLMConfig struct {
	Provider     string        `json:"provider" mapstructure:"provider"` // "cerebras" or "openai"
	APIKey       string        `json:"api_key" mapstructure:"api_key"`
	BaseURL      string        `json:"base_url,omitempty" mapstructure:"base_url"`
	Model        string        `json:"model" mapstructure:"model"`
	SummaryModel string        `json:"summary_model" mapstructure:"summary_model"`
	Timeout      time.Duration `json:"timeout" mapstructure:"timeout"`
}

type SpeechConfig struct {
	APIKey   string        `json:"api_key" mapstructure:"api_key"`
	Voice    string        `json:"voice" mapstructure:"voice"`
	TTSModel string        `json:"tts_model" mapstructure:"tts_model"`
	STTModel string        `json:"stt_model" mapstructure:"stt_model"`
	CacheTTL time.Duration `json:"cache_ttl" mapstructure:"cache_ttl"` // 0 = cache entries never expire
}

type ConversationConfig struct {
	KeepRecentCount int `json:"keep_recent_count" mapstructure:"keep_recent_count"`
}

type CleanupConfig struct {
	Interval      time.Duration `json:"interval" mapstructure:"interval"`
	IdleThreshold time.Duration `json:"idle_threshold" mapstructure:"idle_threshold"`
	MaxRoomAge    time.Duration `json:"max_room_age" mapstructure:"max_room_age"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("json")

	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	homeDir, err := os.UserHomeDir()
	if err == nil {
		viper.AddConfigPath(filepath.Join(homeDir, ".fluentvoice"))
	}

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// No config file is fine; env vars carry the credentials.
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	loadEnvOverrides(&cfg)

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "fluentvoice")
	viper.SetDefault("database.database", "fluentvoice")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", "5m")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("llm.provider", "cerebras")
	viper.SetDefault("llm.base_url", "https://api.cerebras.ai/v1")
	viper.SetDefault("llm.model", "llama3.3-70b")
	viper.SetDefault("llm.summary_model", "llama3.1-8b")
	viper.SetDefault("llm.timeout", "30s")
	viper.SetDefault("speech.voice", "alloy")
	viper.SetDefault("speech.tts_model", "tts-1")
	viper.SetDefault("speech.stt_model", "whisper-1")
	viper.SetDefault("speech.cache_ttl", "0s")
	viper.SetDefault("conversation.keep_recent_count", 10)
	viper.SetDefault("cleanup.interval", "5m")
	viper.SetDefault("cleanup.idle_threshold", "10m")
	viper.SetDefault("cleanup.max_room_age", "30m")
}

func loadEnvOverrides(cfg *Config) {
	if port := os.Getenv("FLUENTVOICE_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if host := os.Getenv("FLUENTVOICE_HOST"); host != "" {
		cfg.Server.Host = host
	}

	if dbHost := os.Getenv("POSTGRES_HOST"); dbHost != "" {
		cfg.Database.Host = dbHost
	}
	if dbPort := os.Getenv("POSTGRES_PORT"); dbPort != "" {
		if port, err := strconv.Atoi(dbPort); err == nil {
			cfg.Database.Port = port
		}
	}
	if dbUser := os.Getenv("POSTGRES_USER"); dbUser != "" {
		cfg.Database.User = dbUser
	}
	if dbPass := os.Getenv("POSTGRES_PASSWORD"); dbPass != "" {
		cfg.Database.Password = dbPass
	}
	if dbName := os.Getenv("POSTGRES_DB"); dbName != "" {
		cfg.Database.Database = dbName
	}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}
	if pass := os.Getenv("REDIS_PASSWORD"); pass != "" {
		cfg.Redis.Password = pass
	}

	if url := os.Getenv("LIVEKIT_URL"); url != "" {
		cfg.LiveKit.URL = url
	}
	if key := os.Getenv("LIVEKIT_API_KEY"); key != "" {
		cfg.LiveKit.APIKey = key
	}
	if secret := os.Getenv("LIVEKIT_API_SECRET"); secret != "" {
		cfg.LiveKit.APISecret = secret
	}

	if key := os.Getenv("CEREBRAS_API_KEY"); key != "" {
		cfg.LLM.APIKey = key
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.Speech.APIKey = key
		if cfg.LLM.APIKey == "" {
			cfg.LLM.APIKey = key
		}
	}

	if secret := os.Getenv("FLUENTVOICE_JWT_SECRET"); secret != "" {
		cfg.JWTSecret = secret
	}
}

// Validate checks that every required external credential is present.
// Missing credentials fail the process at startup rather than per-request.
func (c *Config) Validate() error {
	var missing []string

	if c.LiveKit.APIKey == "" {
		missing = append(missing, "LIVEKIT_API_KEY")
	}
	if c.LiveKit.APISecret == "" {
		missing = append(missing, "LIVEKIT_API_SECRET")
	}
	if c.LiveKit.URL == "" {
		missing = append(missing, "LIVEKIT_URL")
	}
	if c.LLM.APIKey == "" {
		missing = append(missing, "CEREBRAS_API_KEY")
	}
	if c.Speech.APIKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %v", missing)
	}

	if c.Conversation.KeepRecentCount <= 0 {
		return errors.New("conversation.keep_recent_count must be positive")
	}

	return nil
}
