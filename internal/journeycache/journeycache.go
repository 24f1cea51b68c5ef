// Package journeycache caches FindRoute results in Redis, keyed by query
// shape, with a distributed lock so concurrent requests for the same
// uncached query solve it once instead of stampeding.
package journeycache

import (
	"context"
	"crypto/sha256"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/passbi/railcore/internal/models"
	"github.com/redis/go-redis/v9"
)

var (
	client     *redis.Client
	clientOnce sync.Once
	clientErr  error
)

// Config holds Redis configuration.
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
	TTL      time.Duration
	MutexTTL time.Duration
}

// LoadConfigFromEnv loads Redis configuration from environment variables.
func LoadConfigFromEnv() *Config {
	port, _ := strconv.Atoi(getEnv("REDIS_PORT", "6379"))
	db, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	ttl, _ := time.ParseDuration(getEnv("JOURNEY_CACHE_TTL", "10m"))
	mutexTTL, _ := time.ParseDuration(getEnv("JOURNEY_CACHE_MUTEX_TTL", "5s"))

	return &Config{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     port,
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       db,
		TTL:      ttl,
		MutexTTL: mutexTTL,
	}
}

// Client returns the global Redis client, initializing it on first use.
func Client() (*redis.Client, error) {
	clientOnce.Do(func() {
		cfg := LoadConfigFromEnv()

		opts := &redis.Options{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Password:     cfg.Password,
			DB:           cfg.DB,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			PoolSize:     10,
			MinIdleConns: 2,
		}
		if getEnv("REDIS_TLS_ENABLED", "false") == "true" {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}

		client = redis.NewClient(opts)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			clientErr = fmt.Errorf("journeycache: connect to redis: %w", err)
		}
	})
	return client, clientErr
}

// Close closes the global Redis client, if initialized.
func Close() {
	if client != nil {
		client.Close()
	}
}

// Key builds a deterministic cache key from a query's shape. Stable field
// order matters: it is part of the hashed input.
func Key(startStation, endStation int, startTime, endTime int64, mode models.QueryMode) string {
	data := fmt.Sprintf("%d,%d,%d,%d,%s", startStation, endStation, startTime, endTime, mode)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("journey:%x", hash[:8])
}

func lockKey(key string) string {
	return fmt.Sprintf("lock:%s", key)
}

// Entry is the cached shape: the primary journey plus any alternatives, so
// Multi-mode results round-trip through the cache too.
type Entry struct {
	Journey      models.Journey   `json:"journey"`
	Alternatives []models.Journey `json:"alternatives,omitempty"`
}

// Get retrieves a cached entry, returning ok=false on a cache miss.
func Get(ctx context.Context, key string) (Entry, bool, error) {
	c, err := Client()
	if err != nil {
		return Entry{}, false, err
	}

	data, err := c.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("journeycache: get %s: %w", key, err)
	}

	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return Entry{}, false, fmt.Errorf("journeycache: unmarshal %s: %w", key, err)
	}
	return e, true, nil
}

// Set caches an entry under key for ttl.
func Set(ctx context.Context, key string, e Entry, ttl time.Duration) error {
	c, err := Client()
	if err != nil {
		return err
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("journeycache: marshal entry: %w", err)
	}
	if err := c.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("journeycache: set %s: %w", key, err)
	}
	return nil
}

// AcquireLock attempts to take the solve-lock for key, returning true if
// this caller now owns it.
func AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	c, err := Client()
	if err != nil {
		return false, err
	}
	ok, err := c.SetNX(ctx, lockKey(key), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("journeycache: acquire lock %s: %w", key, err)
	}
	return ok, nil
}

// ReleaseLock releases the solve-lock for key.
func ReleaseLock(ctx context.Context, key string) error {
	c, err := Client()
	if err != nil {
		return err
	}
	if err := c.Del(ctx, lockKey(key)).Err(); err != nil {
		return fmt.Errorf("journeycache: release lock %s: %w", key, err)
	}
	return nil
}

// WaitForLock polls until key's solve-lock is released, then returns
// whatever landed in the cache — the "wait for the other request's result"
// pattern, avoiding a thundering herd of duplicate solves.
func WaitForLock(ctx context.Context, key string, maxWait time.Duration) (Entry, bool, error) {
	c, err := Client()
	if err != nil {
		return Entry{}, false, err
	}

	lk := lockKey(key)
	deadline := time.Now().Add(maxWait)

	for time.Now().Before(deadline) {
		exists, err := c.Exists(ctx, lk).Result()
		if err != nil {
			return Entry{}, false, fmt.Errorf("journeycache: poll lock %s: %w", key, err)
		}
		if exists == 0 {
			return Get(ctx, key)
		}

		select {
		case <-ctx.Done():
			return Entry{}, false, ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
	return Entry{}, false, fmt.Errorf("journeycache: timed out waiting for lock %s", key)
}

// HealthCheck pings Redis.
func HealthCheck(ctx context.Context) error {
	c, err := Client()
	if err != nil {
		return fmt.Errorf("journeycache: client not initialized: %w", err)
	}
	if err := c.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("journeycache: ping failed: %w", err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
