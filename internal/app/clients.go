package app

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/brainforge-backend/internal/platform/gcp"
	"github.com/yungbote/brainforge-backend/internal/platform/logger"
	"github.com/yungbote/brainforge-backend/internal/platform/openai"
	"github.com/yungbote/brainforge-backend/internal/platform/rediscache"
)

type Clients struct {
	Images      openai.ImageClient
	ImageStore  gcp.ImageStore
	Redis       *goredis.Client
	Leaderboard rediscache.LeaderboardCache
}

func wireClients(ctx context.Context, log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")

	// OpenAI
	images, err := openai.NewImageClient(log, openai.ConfigFromEnv())
	switch {
	case errors.Is(err, openai.ErrNotConfigured):
		log.Warn("OPENAI_API_KEY not set; new puzzles cannot be generated")
		images = nil
	case err != nil:
		return Clients{}, fmt.Errorf("init openai image client: %w", err)
	}

	// Object storage
	storageCfg, err := gcp.ResolveObjectStorageConfigFromEnv()
	if err != nil {
		return Clients{}, fmt.Errorf("resolve object storage config: %w", err)
	}
	store, err := gcp.NewImageStore(ctx, log, storageCfg)
	if err != nil {
		return Clients{}, fmt.Errorf("init image store: %w", err)
	}

	// Redis
	redisCfg := rediscache.ConfigFromEnv()
	rdb, err := rediscache.NewClient(ctx, redisCfg)
	if err != nil {
		log.Warn("Redis unavailable; leaderboard cache disabled", "error", err)
		rdb = nil
	}

	return Clients{
		Images:      images,
		ImageStore:  store,
		Redis:       rdb,
		Leaderboard: rediscache.NewLeaderboardCache(log, rdb, redisCfg.TTL),
	}, nil
}

func (c Clients) Close() {
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
