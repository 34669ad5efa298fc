package app

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/linksaver/internal/config"
	"github.com/MrSnakeDoc/linksaver/internal/logger"
	"github.com/MrSnakeDoc/linksaver/internal/redis"
	"github.com/MrSnakeDoc/linksaver/internal/store"
	"github.com/MrSnakeDoc/linksaver/internal/store/memory"
	redisstore "github.com/MrSnakeDoc/linksaver/internal/store/redis"
	sqlstore "github.com/MrSnakeDoc/linksaver/internal/store/sql"
)

// OpenStore opens the bookmark store selected by cfg.StoreBackend. The redis
// backend blocks until the server answers or the connect budget runs out.
func OpenStore(ctx context.Context, cfg *config.Config, log logger.Logger) (store.Store, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		log.Warn("using in-memory store, bookmarks are lost on restart")
		return memory.New(), nil

	case config.BackendSQL:
		s, err := sqlstore.Open(cfg.DatabaseDSN, log)
		if err != nil {
			return nil, fmt.Errorf("failed to open sql store: %w", err)
		}
		return s, nil

	case config.BackendRedis:
		log.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		client, err := redis.Connect(ctx, redis.OptionsFromConfig(cfg), log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		log.Info("Redis initialized successfully")
		return redisstore.NewStore(client), nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
