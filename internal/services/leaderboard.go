package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/brainforge-backend/internal/data/repos"
	types "github.com/yungbote/brainforge-backend/internal/domain"
	"github.com/yungbote/brainforge-backend/internal/domain/game"
	"github.com/yungbote/brainforge-backend/internal/observability"
	"github.com/yungbote/brainforge-backend/internal/platform/dbctx"
	"github.com/yungbote/brainforge-backend/internal/platform/logger"
	"github.com/yungbote/brainforge-backend/internal/platform/rediscache"
)

type LeaderboardEntry struct {
	Rank        int       `json:"rank"`
	UserID      uuid.UUID `json:"user_id"`
	DisplayName string    `json:"name"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	BestTime    float64   `json:"best_time"`
	TotalGames  int64     `json:"total_games"`
	Level       int       `json:"level"`
}

// LeaderboardService ranks users by their fastest time on an exercise.
// Equal best times are ordered by user id.
type LeaderboardService interface {
	Top(ctx context.Context, exerciseID string, limit int) ([]LeaderboardEntry, error)
}

type leaderboardService struct {
	log      *logger.Logger
	results  repos.ResultRecordRepo
	progress repos.ProgressRecordRepo
	users    repos.UserRepo
	cache    rediscache.LeaderboardCache
	metrics  *observability.Metrics
}

func NewLeaderboardService(
	log *logger.Logger,
	results repos.ResultRecordRepo,
	progress repos.ProgressRecordRepo,
	users repos.UserRepo,
	cache rediscache.LeaderboardCache,
	metrics *observability.Metrics,
) LeaderboardService {
	if cache == nil {
		cache = rediscache.Noop{}
	}
	return &leaderboardService{
		log:      log.With("service", "LeaderboardService"),
		results:  results,
		progress: progress,
		users:    users,
		cache:    cache,
		metrics:  metrics,
	}
}

func (s *leaderboardService) Top(ctx context.Context, exerciseID string, limit int) ([]LeaderboardEntry, error) {
	exerciseID = strings.TrimSpace(exerciseID)
	if exerciseID == "" {
		return nil, fmt.Errorf("%w: exercise_id is required", game.ErrInvalidArgument)
	}
	limit = clampLimit(limit)

	ctx, span := observability.StartSpan(ctx, "leaderboard.top",
		attribute.String("leaderboard.exercise_id", exerciseID),
		attribute.Int("leaderboard.limit", limit))
	defer span.End()

	if cached, ok := s.fromCache(ctx, exerciseID, limit); ok {
		return cached, nil
	}

	dbc := dbctx.New(ctx)
	rows, err := s.results.TopByExercise(dbc, exerciseID, limit)
	if err != nil {
		return nil, fmt.Errorf("aggregate leaderboard: %w", err)
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.UserID)
	}

	var (
		users  []*types.User
		levels map[uuid.UUID]int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = s.users.GetByIDs(dbctx.New(gctx), ids)
		return err
	})
	g.Go(func() error {
		var err error
		levels, err = s.progress.GetLevels(dbctx.New(gctx), exerciseID, ids)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("enrich leaderboard: %w", err)
	}

	byID := make(map[uuid.UUID]*types.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	out := make([]LeaderboardEntry, 0, len(rows))
	for i, r := range rows {
		u := byID[r.UserID]
		level := levels[r.UserID]
		if level <= 0 {
			level = 1
		}
		entry := LeaderboardEntry{
			Rank:        i + 1,
			UserID:      r.UserID,
			DisplayName: u.DisplayName(),
			BestTime:    r.BestTime,
			TotalGames:  r.TotalGames,
			Level:       level,
		}
		if u != nil {
			entry.AvatarURL = u.AvatarURL
		}
		out = append(out, entry)
	}

	s.toCache(ctx, exerciseID, limit, out)
	return out, nil
}

func (s *leaderboardService) fromCache(ctx context.Context, exerciseID string, limit int) ([]LeaderboardEntry, bool) {
	raw, ok, err := s.cache.Get(ctx, exerciseID, limit)
	if err != nil {
		s.metrics.IncLeaderboardCache("error")
		s.log.Warn("Leaderboard cache read failed", "exercise_id", exerciseID, "error", err)
		return nil, false
	}
	if !ok {
		s.metrics.IncLeaderboardCache("miss")
		return nil, false
	}
	var out []LeaderboardEntry
	if err := json.Unmarshal(raw, &out); err != nil {
		s.metrics.IncLeaderboardCache("error")
		s.log.Warn("Leaderboard cache entry is corrupt", "exercise_id", exerciseID, "error", err)
		return nil, false
	}
	s.metrics.IncLeaderboardCache("hit")
	return out, true
}

func (s *leaderboardService) toCache(ctx context.Context, exerciseID string, limit int, entries []LeaderboardEntry) {
	raw, err := json.Marshal(entries)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, exerciseID, limit, raw); err != nil {
		s.log.Warn("Leaderboard cache write failed", "exercise_id", exerciseID, "error", err)
	}
}
