package app

import (
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/genasnewdar/lever-stg/internal/clients/redis"
	"github.com/genasnewdar/lever-stg/internal/platform/envutil"
	"github.com/genasnewdar/lever-stg/internal/platform/logger"
)

type Clients struct {
	Redis *goredis.Client
}

func wireClients(log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")

	var rdb *goredis.Client
	if strings.TrimSpace(envutil.String("REDIS_ADDR", "")) != "" {
		c, err := redis.NewClient(log)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis client: %w", err)
		}
		rdb = c
	} else {
		log.Warn("REDIS_ADDR is not set, expiry scheduling and catalog caching are disabled")
	}

	return Clients{Redis: rdb}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
