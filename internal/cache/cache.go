// Package cache keeps rendered boarding pass artifacts in Redis.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "boarding_pass"

// Config holds Redis connection settings
type Config struct {
	Addr         string
	Password     string
	DB           int
	TTL          time.Duration
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// ArtifactCache stores artifact bytes under booking, style and format.
type ArtifactCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewArtifactCache connects to Redis and verifies the connection.
func NewArtifactCache(ctx context.Context, cfg Config) (*ArtifactCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &ArtifactCache{client: client, ttl: cfg.TTL}, nil
}

// Key formats the cache key of one artifact
func Key(bookingID, style, format string) string {
	return fmt.Sprintf("%s:%s:%s:%s", keyPrefix, bookingID, style, format)
}

// Get returns the cached artifact. A miss is (nil, false, nil).
func (c *ArtifactCache) Get(ctx context.Context, bookingID, style, format string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, Key(bookingID, style, format)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached boarding pass: %w", err)
	}
	return data, true, nil
}

// Set stores an artifact for the configured TTL.
func (c *ArtifactCache) Set(ctx context.Context, bookingID, style, format string, data []byte) error {
	if err := c.client.Set(ctx, Key(bookingID, style, format), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache boarding pass: %w", err)
	}
	return nil
}

// HealthCheck pings Redis
func (c *ArtifactCache) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}
	return nil
}

func (c *ArtifactCache) Close() error {
	return c.client.Close()
}
