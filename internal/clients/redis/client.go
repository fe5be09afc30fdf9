package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/genasnewdar/lever-stg/internal/platform/envutil"
	"github.com/genasnewdar/lever-stg/internal/platform/logger"
)

// NewClient dials the instance named by REDIS_ADDR and verifies it with
// a ping. The caller owns the returned client.
func NewClient(log *logger.Logger) (*goredis.Client, error) {
	addr := strings.TrimSpace(envutil.String("REDIS_ADDR", ""))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
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

	if log != nil {
		log.Info("Connected to redis", "addr", addr)
	}
	return rdb, nil
}
