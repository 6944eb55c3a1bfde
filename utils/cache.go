// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"repairhub/config"

	"github.com/go-redis/redis/v8"
)

var (
	// CacheClient holds wizard sessions.
	CacheClient *redis.Client
	// DraftClient holds booking drafts.
	DraftClient *redis.Client
)

func newRedisClient(db int, name string) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (%s): %v", name, err)
	}
	return client
}

// InitRedis connects every Redis client used by the service.
func InitRedis() {
	GetCacheClient()
	GetDraftClient()
}

// GetCacheClient returns the session cache client.
func GetCacheClient() *redis.Client {
	if CacheClient == nil {
		CacheClient = newRedisClient(config.AppConfig.RedisCacheDB, "Cache")
	}
	return CacheClient
}

// GetDraftClient returns the Redis client for booking drafts.
func GetDraftClient() *redis.Client {
	if DraftClient == nil {
		DraftClient = newRedisClient(config.AppConfig.RedisDraftDB, "Drafts")
	}
	return DraftClient
}

// RedisClients lists the connected clients, for health checks.
func RedisClients() []*redis.Client {
	var out []*redis.Client
	for _, c := range []*redis.Client{CacheClient, DraftClient} {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}
