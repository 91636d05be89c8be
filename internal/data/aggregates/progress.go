package aggregates

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/brainforge-backend/internal/data/repos"
	types "github.com/yungbote/brainforge-backend/internal/domain"
	domainagg "github.com/yungbote/brainforge-backend/internal/domain/aggregates"
	domainprogress "github.com/yungbote/brainforge-backend/internal/domain/progress"
	"github.com/yungbote/brainforge-backend/internal/modules/progress"
	"github.com/yungbote/brainforge-backend/internal/platform/dbctx"
)

type ProgressAggregateDeps struct {
	Base BaseDeps

	Results  repos.ResultRecordRepo
	Progress repos.ProgressRecordRepo
}

type progressAggregate struct {
	deps ProgressAggregateDeps
}

func NewProgressAggregate(deps ProgressAggregateDeps) domainagg.ProgressAggregate {
	deps.Base = deps.Base.withDefaults()
	return &progressAggregate{deps: deps}
}

func (a *progressAggregate) Contract() domainagg.Contract {
	return domainagg.ProgressAggregateContract
}

func (a *progressAggregate) RecordResult(ctx context.Context, in domainagg.RecordResultInput) (domainagg.RecordResultResult, error) {
	const op = "Progress.Result.RecordResult"
	var out domainagg.RecordResultResult
	exerciseID := strings.TrimSpace(in.ExerciseID)
	if in.UserID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing user_id", nil)
	}
	if exerciseID == "" {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing exercise_id", nil)
	}
	if !finite(in.Score) || !finite(in.ElapsedSeconds) || in.ElapsedSeconds < 0 {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "score and time must be finite; time must be >= 0", nil)
	}
	if a.deps.Results == nil || a.deps.Progress == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "progress aggregate repos not configured", nil)
	}

	at := in.At.UTC()
	if in.At.IsZero() {
		at = time.Now().UTC()
	}
	kind := strings.TrimSpace(in.PayloadKind)
	if kind == "" {
		kind = domainprogress.PayloadGeneric
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		rec := &types.ResultRecord{
			UserID:         in.UserID,
			ExerciseID:     exerciseID,
			Score:          in.Score,
			ElapsedSeconds: in.ElapsedSeconds,
			Difficulty:     strings.TrimSpace(in.Difficulty),
			PayloadKind:    kind,
			CreatedAt:      at,
		}
		if len(in.Payload) > 0 {
			rec.Payload = datatypes.JSON(in.Payload)
		}
		if err := a.deps.Results.Create(dbc, rec); err != nil {
			return err
		}
		snap, err := applyProgress(dbc, a.deps.Base.CASGuard, a.deps.Progress, in.UserID, exerciseID, in.Score, in.LowerIsBetter, at)
		if err != nil {
			return err
		}
		out = domainagg.RecordResultResult{ResultID: rec.ID, Progress: snap}
		return nil
	})
	return out, err
}

// applyProgress folds one score into the (user, exercise) row inside dbc.
// The update is guarded on total_attempts so two concurrent folds cannot
// both read the same prior row and lose an attempt.
func applyProgress(
	dbc dbctx.Context,
	guard CASGuard,
	repo repos.ProgressRecordRepo,
	userID uuid.UUID,
	exerciseID string,
	score float64,
	lowerIsBetter bool,
	at time.Time,
) (domainagg.ProgressSnapshot, error) {
	prev, err := repo.GetByUserExercise(dbc, userID, exerciseID)
	if err != nil {
		return domainagg.ProgressSnapshot{}, err
	}
	next := progress.Apply(prev, score, lowerIsBetter, at)
	if prev == nil {
		next.UserID = userID
		next.ExerciseID = exerciseID
		next.CreatedAt = at
		next.UpdatedAt = at
		created, err := repo.CreateIfAbsent(dbc, &next)
		if err != nil {
			return domainagg.ProgressSnapshot{}, err
		}
		if err := requireApplied(created, "progress row created concurrently"); err != nil {
			return domainagg.ProgressSnapshot{}, err
		}
		return snapshotOf(next), nil
	}

	ok, err := guard.UpdateByColumn(dbc, "progress_record", prev.ID, "total_attempts", prev.TotalAttempts, map[string]any{
		"level":          next.Level,
		"total_attempts": next.TotalAttempts,
		"best_score":     next.BestScore,
		"average_score":  next.AverageScore,
		"last_played_at": next.LastPlayedAt,
		"updated_at":     at,
	})
	if err != nil {
		return domainagg.ProgressSnapshot{}, err
	}
	if err := requireApplied(ok, "progress row changed concurrently"); err != nil {
		return domainagg.ProgressSnapshot{}, err
	}
	return snapshotOf(next), nil
}

func snapshotOf(p types.ProgressRecord) domainagg.ProgressSnapshot {
	return domainagg.ProgressSnapshot{
		UserID:        p.UserID,
		ExerciseID:    p.ExerciseID,
		Level:         p.Level,
		TotalAttempts: p.TotalAttempts,
		BestScore:     p.BestScore,
		AverageScore:  p.AverageScore,
		LastPlayedAt:  p.LastPlayedAt,
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
