package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/halvard/stockledger/pkg/logger"
)

// CacheConfig holds response cache configuration
type CacheConfig struct {
	DefaultTTL      time.Duration
	CacheableStatus []int
}

// DefaultCacheConfig returns the default cache configuration. The TTL is
// short because cached bodies include stock levels that change constantly.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		DefaultTTL:      30 * time.Second,
		CacheableStatus: []int{200, 404},
	}
}

// CacheMiddleware caches GET responses in Redis. Any mutating request
// passing through the gateway purges the whole cache so readers never see
// stock counts from before their own write.
func CacheMiddleware(redisClient *redis.Client, config CacheConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if redisClient == nil {
			return c.Next()
		}

		ctx := context.Background()

		if c.Method() != fiber.MethodGet {
			err := c.Next()
			if isMutation(c.Method()) && c.Response().StatusCode() < 400 {
				if purgeErr := purge(ctx, redisClient); purgeErr != nil {
					logger.Logger.Warn().Err(purgeErr).Msg("Failed to purge response cache")
				}
			}
			return err
		}

		cacheKey := generateCacheKey(c)

		cached, err := redisClient.Get(ctx, cacheKey).Bytes()
		if err == nil && len(cached) > 0 {
			logger.Logger.Debug().
				Str("path", c.Path()).
				Str("cache_key", cacheKey).
				Msg("Cache hit")

			c.Set("X-Cache", "HIT")
			c.Set("Content-Type", "application/json")
			return c.Send(cached)
		}

		err = c.Next()

		statusCode := c.Response().StatusCode()
		if isStatusCacheable(statusCode, config.CacheableStatus) {
			body := c.Response().Body()
			if setErr := redisClient.Set(ctx, cacheKey, body, config.DefaultTTL).Err(); setErr != nil {
				logger.Logger.Warn().
					Err(setErr).
					Str("cache_key", cacheKey).
					Msg("Failed to cache response")
			}
			c.Set("X-Cache", "MISS")
		}

		return err
	}
}

// generateCacheKey hashes method, path and query into a cache key
func generateCacheKey(c *fiber.Ctx) string {
	components := fmt.Sprintf("%s:%s:%s",
		c.Method(),
		c.Path(),
		string(c.Request().URI().QueryString()),
	)
	hash := sha256.Sum256([]byte(components))
	return "cache:" + hex.EncodeToString(hash[:])
}

// purge drops every cached response
func purge(ctx context.Context, redisClient *redis.Client) error {
	iter := redisClient.Scan(ctx, 0, "cache:*", 0).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}

	if len(keys) == 0 {
		return nil
	}
	return redisClient.Del(ctx, keys...).Err()
}

func isMutation(method string) bool {
	switch strings.ToUpper(method) {
	case fiber.MethodPost, fiber.MethodPut, fiber.MethodPatch, fiber.MethodDelete:
		return true
	}
	return false
}

func isStatusCacheable(status int, cacheable []int) bool {
	for _, s := range cacheable {
		if s == status {
			return true
		}
	}
	return false
}
