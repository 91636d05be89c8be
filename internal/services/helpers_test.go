package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/brainforge-backend/internal/config"
	"github.com/yungbote/brainforge-backend/internal/data/aggregates"
	"github.com/yungbote/brainforge-backend/internal/data/repos"
	repotest "github.com/yungbote/brainforge-backend/internal/data/repos/testutil"
	"github.com/yungbote/brainforge-backend/internal/platform/logger"
	"github.com/yungbote/brainforge-backend/internal/platform/rediscache"
)

type testEnv struct {
	db    *gorm.DB
	log   *logger.Logger
	repos repos.Repos
	cfg   config.GameConfig
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := repotest.DB(t)
	log := repotest.Logger(t)
	cfg, err := config.Default()
	if err != nil {
		t.Fatalf("config.Default: %v", err)
	}
	return &testEnv{db: db, log: log, repos: repos.New(db, log), cfg: cfg}
}

// progressService takes the interface so a nil cache reaches the constructor
// untyped and falls back to the no-op cache.
func (e *testEnv) progressService(cache rediscache.LeaderboardCache) ProgressService {
	agg := aggregates.NewProgressAggregate(aggregates.ProgressAggregateDeps{
		Base:     aggregates.BaseDeps{DB: e.db, Log: e.log},
		Results:  e.repos.Results,
		Progress: e.repos.Progress,
	})
	return NewProgressService(e.log, e.cfg, agg, e.repos.Results, e.repos.Progress, cache, nil)
}

// fakeCache is an in-memory leaderboard cache that records invalidations.
type fakeCache struct {
	mu          sync.Mutex
	entries     map[string][]byte
	invalidated []string
	gets        int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]byte{}}
}

func cacheKey(exerciseID string, limit int) string {
	return fmt.Sprintf("%s#%d", exerciseID, limit)
}

func (c *fakeCache) Get(_ context.Context, exerciseID string, limit int) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	v, ok := c.entries[cacheKey(exerciseID, limit)]
	return v, ok, nil
}

func (c *fakeCache) Set(_ context.Context, exerciseID string, limit int, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(exerciseID, limit)] = append([]byte(nil), payload...)
	return nil
}

func (c *fakeCache) Invalidate(_ context.Context, exerciseID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, exerciseID)
	for k := range c.entries {
		if strings.HasPrefix(k, exerciseID+"#") {
			delete(c.entries, k)
		}
	}
	return nil
}

func (c *fakeCache) Invalidations() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.invalidated...)
}

func solidPNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}
