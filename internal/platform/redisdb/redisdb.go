package redisdb

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/taleframe/taleframe-backend/internal/platform/envutil"
	"github.com/taleframe/taleframe-backend/internal/platform/logger"
)

// NewClient connects to the shared Redis that backs the task store and the
// dispatch queue. REDIS_ADDR is required; password and db default to empty/0.
func NewClient(log *logger.Logger) (*goredis.Client, error) {
	addr, err := envutil.Require("REDIS_ADDR")
	if err != nil {
		return nil, err
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    envutil.String("REDIS_PASSWORD", ""),
		DB:          envutil.Int("REDIS_DB", 0),
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	log.Info("Connected to Redis", "addr", addr)
	return rdb, nil
}
