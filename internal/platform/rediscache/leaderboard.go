package rediscache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/brainforge-backend/internal/platform/envutil"
	"github.com/yungbote/brainforge-backend/internal/platform/logger"
)

// LeaderboardCache stores encoded leaderboard pages per exercise. Each
// exercise is one hash keyed by page limit, so one DEL drops every page.
type LeaderboardCache interface {
	Get(ctx context.Context, exerciseID string, limit int) ([]byte, bool, error)
	Set(ctx context.Context, exerciseID string, limit int, payload []byte) error
	Invalidate(ctx context.Context, exerciseID string) error
}

const keyPrefix = "bf:leaderboard:"

func key(exerciseID string) string {
	return keyPrefix + strings.ToLower(strings.TrimSpace(exerciseID))
}

type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

func ConfigFromEnv() Config {
	return Config{
		Addr:     envutil.String("REDIS_ADDR", ""),
		Password: envutil.String("REDIS_PASSWORD", ""),
		DB:       envutil.Int("REDIS_DB", 0),
		TTL:      envutil.Seconds("LEADERBOARD_CACHE_TTL_SECONDS", 30*time.Second),
	}
}

// NewClient dials and pings Redis. It returns nil, nil when Addr is empty.
func NewClient(ctx context.Context, cfg Config) (*goredis.Client, error) {
	if strings.TrimSpace(cfg.Addr) == "" {
		return nil, nil
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

type redisLeaderboardCache struct {
	log *logger.Logger
	rdb goredis.UniversalClient
	ttl time.Duration
}

// NewLeaderboardCache returns a no-op cache when rdb is nil.
func NewLeaderboardCache(log *logger.Logger, rdb *goredis.Client, ttl time.Duration) LeaderboardCache {
	if rdb == nil {
		return Noop{}
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &redisLeaderboardCache{log: log.With("service", "LeaderboardCache"), rdb: rdb, ttl: ttl}
}

func (c *redisLeaderboardCache) Get(ctx context.Context, exerciseID string, limit int) ([]byte, bool, error) {
	raw, err := c.rdb.HGet(ctx, key(exerciseID), strconv.Itoa(limit)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

func (c *redisLeaderboardCache) Set(ctx context.Context, exerciseID string, limit int, payload []byte) error {
	k := key(exerciseID)
	pipe := c.rdb.TxPipeline()
	pipe.HSet(ctx, k, strconv.Itoa(limit), payload)
	pipe.Expire(ctx, k, c.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (c *redisLeaderboardCache) Invalidate(ctx context.Context, exerciseID string) error {
	return c.rdb.Del(ctx, key(exerciseID)).Err()
}

type Noop struct{}

func (Noop) Get(context.Context, string, int) ([]byte, bool, error) { return nil, false, nil }
func (Noop) Set(context.Context, string, int, []byte) error         { return nil }
func (Noop) Invalidate(context.Context, string) error               { return nil }
