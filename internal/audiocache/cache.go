package audiocache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Key prefix for cached audio blobs in Redis.
const audioKeyPrefix = "audio:"

// Config holds configuration for the Redis audio cache.
type Config struct {
	// Redis client
	RedisClient *redis.Client

	// TTL for cached audio; zero means entries never expire.
	TTL time.Duration
}

// Cache is a content-addressed lookaside cache for synthesized audio.
// The key is a stable hash of voice and text, so repeated synthesis of the
// same phrase is served from Redis instead of the speech provider.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a Redis-backed audio cache.
func New(cfg *Config) (*Cache, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	if err := cfg.RedisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Cache{
		client: cfg.RedisClient,
		ttl:    cfg.TTL,
	}, nil
}

// Key derives the stable cache key for a voice/text pair.
func Key(voice, text string) string {
	sum := sha256.Sum256([]byte(voice + "\x00" + text))
	return audioKeyPrefix + hex.EncodeToString(sum[:])
}

// SynthesizeFunc produces audio on a cache miss.
type SynthesizeFunc func(ctx context.Context) ([]byte, error)

// GetOrSynthesize returns cached audio for the voice/text pair, or calls
// synthesize and stores the result. The bool reports a cache hit. A failed
// synthesis is propagated and nothing is stored.
func (c *Cache) GetOrSynthesize(ctx context.Context, voice, text string, synthesize SynthesizeFunc) ([]byte, bool, error) {
	key := Key(voice, text)

	audio, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		return audio, true, nil
	}
	if !errors.Is(err, redis.Nil) {
		return nil, false, fmt.Errorf("failed to read audio cache: %w", err)
	}

	audio, err = synthesize(ctx)
	if err != nil {
		return nil, false, err
	}

	if err := c.client.Set(ctx, key, audio, c.ttl).Err(); err != nil {
		return nil, false, fmt.Errorf("failed to store synthesized audio: %w", err)
	}

	return audio, false, nil
}
