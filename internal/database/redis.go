package database

import (
	"fmt"

	"github.com/go-redis/redis"
	"github.com/xpanvictor/aigreeter/internal/config"
)

// NewRedis builds a client and pings it once. The client is returned even
// when the ping fails so a late-starting redis is picked up on first use.
func NewRedis(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Pass,
		DB:       cfg.DB,
	})
	if err := client.Ping().Err(); err != nil {
		return client, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return client, nil
}
