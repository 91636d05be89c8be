package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/brainforge-backend/internal/config"
	"github.com/yungbote/brainforge-backend/internal/data/repos"
	types "github.com/yungbote/brainforge-backend/internal/domain"
	domainagg "github.com/yungbote/brainforge-backend/internal/domain/aggregates"
	"github.com/yungbote/brainforge-backend/internal/domain/game"
	domainprogress "github.com/yungbote/brainforge-backend/internal/domain/progress"
	"github.com/yungbote/brainforge-backend/internal/observability"
	"github.com/yungbote/brainforge-backend/internal/platform/dbctx"
	"github.com/yungbote/brainforge-backend/internal/platform/logger"
	"github.com/yungbote/brainforge-backend/internal/platform/rediscache"
)

const (
	defaultResultsLimit = 10
	maxResultsLimit     = 100
)

type ProgressSummary struct {
	ExerciseID    string    `json:"exercise_id"`
	Level         int       `json:"level"`
	TotalAttempts int       `json:"total_attempts"`
	BestScore     float64   `json:"best_score"`
	AverageScore  float64   `json:"average_score"`
	LastPlayed    time.Time `json:"last_played"`
}

func summaryFromSnapshot(s domainagg.ProgressSnapshot) ProgressSummary {
	return ProgressSummary{
		ExerciseID:    s.ExerciseID,
		Level:         s.Level,
		TotalAttempts: s.TotalAttempts,
		BestScore:     s.BestScore,
		AverageScore:  s.AverageScore,
		LastPlayed:    s.LastPlayedAt,
	}
}

func summaryFromRecord(p *types.ProgressRecord) ProgressSummary {
	return ProgressSummary{
		ExerciseID:    p.ExerciseID,
		Level:         p.Level,
		TotalAttempts: p.TotalAttempts,
		BestScore:     p.BestScore,
		AverageScore:  p.AverageScore,
		LastPlayed:    p.LastPlayedAt,
	}
}

// RecordResultInput is one finished attempt of any exercise. Score is only
// read for exercises whose policy scores by points; Time is always stored.
type RecordResultInput struct {
	ExerciseID string
	Score      *float64
	Time       float64
	Difficulty string
	Payload    map[string]any
}

type RecordResultOutput struct {
	ResultID uuid.UUID       `json:"result_id"`
	Progress ProgressSummary `json:"progress"`
}

type ProfileStats struct {
	TotalResults int64             `json:"total_results"`
	Progress     []ProgressSummary `json:"progress"`
}

type ProgressService interface {
	RecordGenericResult(ctx context.Context, userID uuid.UUID, in RecordResultInput) (RecordResultOutput, error)
	ListUserResults(ctx context.Context, userID uuid.UUID, exerciseID string, limit int) ([]*types.ResultRecord, error)
	ProfileStats(ctx context.Context, userID uuid.UUID) (ProfileStats, error)
}

type progressService struct {
	log       *logger.Logger
	cfg       config.GameConfig
	aggregate domainagg.ProgressAggregate
	results   repos.ResultRecordRepo
	progress  repos.ProgressRecordRepo
	cache     rediscache.LeaderboardCache
	metrics   *observability.Metrics
	now       func() time.Time
}

func NewProgressService(
	log *logger.Logger,
	cfg config.GameConfig,
	aggregate domainagg.ProgressAggregate,
	results repos.ResultRecordRepo,
	progress repos.ProgressRecordRepo,
	cache rediscache.LeaderboardCache,
	metrics *observability.Metrics,
) ProgressService {
	if cache == nil {
		cache = rediscache.Noop{}
	}
	return &progressService{
		log:       log.With("service", "ProgressService"),
		cfg:       cfg,
		aggregate: aggregate,
		results:   results,
		progress:  progress,
		cache:     cache,
		metrics:   metrics,
		now:       time.Now,
	}
}

func (s *progressService) RecordGenericResult(ctx context.Context, userID uuid.UUID, in RecordResultInput) (RecordResultOutput, error) {
	exerciseID := strings.TrimSpace(in.ExerciseID)
	if exerciseID == "" {
		return RecordResultOutput{}, fmt.Errorf("%w: exercise_id is required", game.ErrInvalidArgument)
	}
	if math.IsNaN(in.Time) || math.IsInf(in.Time, 0) || in.Time < 0 {
		return RecordResultOutput{}, fmt.Errorf("%w: time must be a non-negative number", game.ErrInvalidArgument)
	}

	policy := s.cfg.Policy(exerciseID)
	score := in.Time
	if policy.ScoreSource == config.ScoreSourceScore {
		if in.Score == nil {
			return RecordResultOutput{}, fmt.Errorf("%w: score is required for %s", game.ErrInvalidArgument, exerciseID)
		}
		score = *in.Score
	}

	payload, err := domainprogress.PayloadFor(exerciseID, in.Payload)
	if err != nil {
		return RecordResultOutput{}, fmt.Errorf("%w: payload: %v", game.ErrInvalidArgument, err)
	}
	kind, raw, err := domainprogress.EncodePayload(payload)
	if err != nil {
		return RecordResultOutput{}, fmt.Errorf("%w: payload: %v", game.ErrInvalidArgument, err)
	}

	var res domainagg.RecordResultResult
	for attempt := 1; attempt <= maxAggregateAttempts; attempt++ {
		res, err = s.aggregate.RecordResult(ctx, domainagg.RecordResultInput{
			UserID:         userID,
			ExerciseID:     exerciseID,
			Score:          score,
			ElapsedSeconds: in.Time,
			Difficulty:     strings.TrimSpace(in.Difficulty),
			LowerIsBetter:  policy.LowerIsBetter,
			PayloadKind:    kind,
			Payload:        raw,
			At:             s.now().UTC(),
		})
		if err == nil || !domainagg.Retryable(err) {
			break
		}
		s.metrics.IncAggregateRetry(domainagg.ProgressAggregateContract.Name)
	}
	if err != nil {
		return RecordResultOutput{}, gameError(err)
	}
	s.metrics.IncResult(exerciseID)
	invalidateLeaderboard(ctx, s.log, s.cache, exerciseID)

	return RecordResultOutput{
		ResultID: res.ResultID,
		Progress: summaryFromSnapshot(res.Progress),
	}, nil
}

func (s *progressService) ListUserResults(ctx context.Context, userID uuid.UUID, exerciseID string, limit int) ([]*types.ResultRecord, error) {
	return s.results.ListForUser(dbctx.New(ctx), userID, strings.TrimSpace(exerciseID), clampLimit(limit))
}

func (s *progressService) ProfileStats(ctx context.Context, userID uuid.UUID) (ProfileStats, error) {
	dbc := dbctx.New(ctx)
	rows, err := s.progress.ListForUser(dbc, userID)
	if err != nil {
		return ProfileStats{}, fmt.Errorf("list progress: %w", err)
	}
	total, err := s.results.CountForUser(dbc, userID)
	if err != nil {
		return ProfileStats{}, fmt.Errorf("count results: %w", err)
	}
	out := ProfileStats{TotalResults: total, Progress: make([]ProgressSummary, 0, len(rows))}
	for _, p := range rows {
		out.Progress = append(out.Progress, summaryFromRecord(p))
	}
	return out, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultResultsLimit
	}
	if limit > maxResultsLimit {
		return maxResultsLimit
	}
	return limit
}

// invalidateLeaderboard drops the cached boards for an exercise. Cache
// failures are logged only.
func invalidateLeaderboard(ctx context.Context, log *logger.Logger, cache rediscache.LeaderboardCache, exerciseID string) {
	if cache == nil {
		return
	}
	if err := cache.Invalidate(ctx, exerciseID); err != nil {
		log.Warn("Failed to invalidate leaderboard cache", "exercise_id", exerciseID, "error", err)
	}
}
