package rediscache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/brainforge-backend/internal/platform/logger"
)

func TestKeyIsNormalized(t *testing.T) {
	if got := key("  Schulte "); got != "bf:leaderboard:schulte" {
		t.Fatalf("key = %q", got)
	}
}

func TestNilClientIsNoop(t *testing.T) {
	log, _ := logger.New("test")
	c := NewLeaderboardCache(log, nil, time.Minute)
	if _, ok := c.(Noop); !ok {
		t.Fatalf("want Noop, got %T", c)
	}
	if _, hit, err := c.Get(context.Background(), "x", 10); hit || err != nil {
		t.Fatalf("noop get hit=%v err=%v", hit, err)
	}
}

func TestNewClientWithoutAddr(t *testing.T) {
	rdb, err := NewClient(context.Background(), Config{})
	if rdb != nil || err != nil {
		t.Fatalf("want nil client, got %v %v", rdb, err)
	}
}

// Runs against a real server when TEST_REDIS_ADDR is set.
func TestRedisRoundTrip(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	rdb, err := NewClient(ctx, Config{Addr: addr})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer rdb.Close()
	log, _ := logger.New("test")
	c := NewLeaderboardCache(log, rdb, time.Minute)
	ex := "test-" + uuid.NewString()

	if err := c.Set(ctx, ex, 10, []byte(`[1]`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, hit, err := c.Get(ctx, ex, 10)
	if err != nil || !hit || string(got) != `[1]` {
		t.Fatalf("Get = %s %v %v", got, hit, err)
	}
	if _, hit, _ := c.Get(ctx, ex, 5); hit {
		t.Fatalf("other limit must miss")
	}
	if err := c.Invalidate(ctx, ex); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, hit, _ := c.Get(ctx, ex, 10); hit {
		t.Fatalf("invalidated page must miss")
	}
}
