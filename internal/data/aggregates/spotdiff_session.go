package aggregates

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/brainforge-backend/internal/data/repos"
	types "github.com/yungbote/brainforge-backend/internal/domain"
	domainagg "github.com/yungbote/brainforge-backend/internal/domain/aggregates"
	"github.com/yungbote/brainforge-backend/internal/domain/game"
	domainprogress "github.com/yungbote/brainforge-backend/internal/domain/progress"
	"github.com/yungbote/brainforge-backend/internal/modules/spotdiff"
	"github.com/yungbote/brainforge-backend/internal/platform/dbctx"
)

type SpotDiffSessionAggregateDeps struct {
	Base BaseDeps

	Sessions repos.GameSessionRepo
	Solved   repos.SolvedRecordRepo
	Results  repos.ResultRecordRepo
	Progress repos.ProgressRecordRepo
}

type spotDiffSessionAggregate struct {
	deps SpotDiffSessionAggregateDeps
}

func NewSpotDiffSessionAggregate(deps SpotDiffSessionAggregateDeps) domainagg.SpotDiffSessionAggregate {
	deps.Base = deps.Base.withDefaults()
	return &spotDiffSessionAggregate{deps: deps}
}

func (a *spotDiffSessionAggregate) Contract() domainagg.Contract {
	return domainagg.SpotDiffSessionAggregateContract
}

func (a *spotDiffSessionAggregate) ResolveClick(ctx context.Context, in domainagg.ResolveClickInput) (domainagg.ResolveClickResult, error) {
	const op = "SpotDifference.Session.ResolveClick"
	var out domainagg.ResolveClickResult
	if in.UserID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing user_id", nil)
	}
	if in.SessionID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing session_id", nil)
	}
	if err := spotdiff.ValidateCoordinates(in.XPercent, in.YPercent); err != nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, err.Error(), err)
	}
	if in.ExerciseID == "" {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing exercise_id", nil)
	}
	if a.deps.Sessions == nil || a.deps.Solved == nil || a.deps.Results == nil || a.deps.Progress == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "session aggregate repos not configured", nil)
	}

	at := in.At.UTC()
	if in.At.IsZero() {
		at = time.Now().UTC()
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		out = domainagg.ResolveClickResult{SessionID: in.SessionID}

		sess, err := a.deps.Sessions.GetByID(dbc, in.SessionID)
		if err != nil {
			return err
		}
		if sess == nil || sess.UserID != in.UserID {
			return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("session not found: %s", in.SessionID), game.ErrNotFound)
		}
		if sess.Completed {
			return domainagg.NewError(domainagg.CodePreconditionFailed, op, "session already completed", game.ErrInvalidState)
		}
		latest, err := a.deps.Sessions.GetLatestActiveForUser(dbc, in.UserID)
		if err != nil {
			return err
		}
		if latest != nil && latest.ID != sess.ID {
			return domainagg.NewError(domainagg.CodePreconditionFailed, op, "session superseded by a newer active one", game.ErrInvalidState)
		}

		outcome, err := spotdiff.Resolve(sess.Differences, in.XPercent, in.YPercent)
		if err != nil {
			return domainagg.NewError(domainagg.CodeValidation, op, err.Error(), err)
		}
		out.Difficulty = string(sess.Difficulty)
		out.FoundCount = outcome.FoundCount
		out.TotalDifferences = sess.TotalDifferences
		if !outcome.Hit {
			return nil
		}

		updates := map[string]any{
			"differences": datatypes.JSONSlice[game.Difference](outcome.Differences),
			"found_count": outcome.FoundCount,
			"version":     sess.Version + 1,
			"updated_at":  at,
		}
		if outcome.Completed {
			updates["completed"] = true
			updates["ended_at"] = at
		}
		ok, err := a.deps.Base.CASGuard.UpdateByVersion(dbc, sess.TableName(), sess.ID, sess.Version, updates)
		if err != nil {
			return err
		}
		if err := requireApplied(ok, "session changed while resolving click"); err != nil {
			return err
		}

		out.Hit = true
		out.Zone = outcome.Zone
		out.Completed = outcome.Completed
		if !outcome.Completed {
			return nil
		}

		sess.EndedAt = &at
		elapsed := sess.ElapsedSeconds(at)
		out.ElapsedSeconds = elapsed
		resultID, snap, err := a.complete(dbc, sess, elapsed, in, at)
		if err != nil {
			return err
		}
		out.ResultID = resultID
		out.Progress = &snap
		return nil
	})
	if err != nil {
		return domainagg.ResolveClickResult{}, err
	}
	return out, nil
}

// complete writes the result, solved marker and progress fold for a session
// that just reached its last difference.
func (a *spotDiffSessionAggregate) complete(
	dbc dbctx.Context,
	sess *types.GameSession,
	elapsed float64,
	in domainagg.ResolveClickInput,
	at time.Time,
) (uuid.UUID, domainagg.ProgressSnapshot, error) {
	kind, payload, err := domainprogress.EncodePayload(domainprogress.SpotDifferencePayload{
		SessionID:        sess.ID,
		TemplateID:       sess.TemplateID,
		TotalDifferences: sess.TotalDifferences,
	})
	if err != nil {
		return uuid.Nil, domainagg.ProgressSnapshot{}, domainagg.Wrap(domainagg.CodeInvariantViolation, "SpotDifference.Session.EncodePayload", err)
	}
	rec := &types.ResultRecord{
		UserID:         sess.UserID,
		ExerciseID:     in.ExerciseID,
		Score:          elapsed,
		ElapsedSeconds: elapsed,
		Difficulty:     string(sess.Difficulty),
		PayloadKind:    kind,
		Payload:        payload,
		CreatedAt:      at,
	}
	if err := a.deps.Results.Create(dbc, rec); err != nil {
		return uuid.Nil, domainagg.ProgressSnapshot{}, err
	}
	if _, err := a.deps.Solved.Upsert(dbc, &types.SolvedRecord{
		UserID:     sess.UserID,
		TemplateID: sess.TemplateID,
		Difficulty: sess.Difficulty,
		SessionID:  sess.ID,
		SolvedAt:   at,
		CreatedAt:  at,
	}); err != nil {
		return uuid.Nil, domainagg.ProgressSnapshot{}, err
	}
	snap, err := applyProgress(dbc, a.deps.Base.CASGuard, a.deps.Progress, sess.UserID, in.ExerciseID, elapsed, in.LowerIsBetter, at)
	if err != nil {
		return uuid.Nil, domainagg.ProgressSnapshot{}, err
	}
	return rec.ID, snap, nil
}
