package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Fe2Far/fiap-challenge4/pkg/common/config"
	"github.com/Fe2Far/fiap-challenge4/pkg/common/logger"
	"github.com/redis/go-redis/v9"
)

const redisPingTimeout = 5 * time.Second

var (
	redisClient *redis.Client
	redisOnce   sync.Once
)

// GetRedis returns the shared client backing the session store. A failed ping
// is logged, not fatal: session reads degrade to the default page.
func GetRedis(cfg *config.Config) *redis.Client {
	redisOnce.Do(func() {
		opts := redisOptions(cfg)
		redisClient = redis.NewClient(opts)

		ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
		defer cancel()

		log := logger.Component("database").WithField("addr", opts.Addr)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.WithError(err).Error("Session store unreachable")
		} else {
			log.Info("Connected to session store")
		}
	})

	return redisClient
}

func redisOptions(cfg *config.Config) *redis.Options {
	return &redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
}

// CloseRedis closes the session store client; safe to call when sessions
// are kept in memory.
func CloseRedis() error {
	if redisClient == nil {
		return nil
	}
	return redisClient.Close()
}
