package database

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

// NewRedis builds the Redis client used by the result cache and the rate
// limiter. Returns nil when no host is configured; both consumers treat a
// nil client as "feature off".
func NewRedis(config *viper.Viper) *redis.Client {
	host := config.GetString("redis.host")
	if host == "" {
		return nil
	}

	port := config.GetInt("redis.port")
	if port == 0 {
		port = 6379
	}

	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: config.GetString("redis.password"),
		DB:       config.GetInt("redis.db"),
	})
}
