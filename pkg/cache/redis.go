package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/abdelrahman-hamdy/itqan-platform-sub033/pkg/config"
)

const (
	dialTimeout  = 5 * time.Second
	readTimeout  = 2 * time.Second
	writeTimeout = 2 * time.Second
)

// NewRedis returns a Redis client for the shared cache store. Short socket
// timeouts keep a sick cache from stalling reads that can fall back to Postgres.
func NewRedis(cfg config.RedisConfig) (*redis.Client, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  dialTimeout,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		MaxRetries:   1,
	})

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}
