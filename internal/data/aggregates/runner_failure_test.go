package aggregates_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yungbote/brainforge-backend/internal/data/aggregates"
	aggtest "github.com/yungbote/brainforge-backend/internal/data/aggregates/testutil"
	"github.com/yungbote/brainforge-backend/internal/data/repos"
	repotest "github.com/yungbote/brainforge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/brainforge-backend/internal/domain"
	domainagg "github.com/yungbote/brainforge-backend/internal/domain/aggregates"
	"github.com/yungbote/brainforge-backend/internal/platform/dbctx"
)

func TestRecordResultTransactionFailures(t *testing.T) {
	cases := []struct {
		name         string
		runner       *aggtest.InjectedTxRunner
		wantCode     domainagg.ErrorCode
		wantRollback int
	}{
		{
			name:     "begin busy",
			runner:   &aggtest.InjectedTxRunner{FailBegin: errors.New("database is locked")},
			wantCode: domainagg.CodeRetryable,
		},
		{
			name:         "failure before body",
			runner:       &aggtest.InjectedTxRunner{FailBeforeBody: errors.New("connection reset")},
			wantCode:     domainagg.CodeInternal,
			wantRollback: 1,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db := repotest.DB(t)
			ctx := context.Background()
			rs := repos.New(db, repotest.Logger(t))
			hooks := &aggtest.HooksRecorder{}
			agg := aggregates.NewProgressAggregate(aggregates.ProgressAggregateDeps{
				Base:     aggregates.BaseDeps{DB: db, Runner: tc.runner, Hooks: hooks},
				Results:  rs.Results,
				Progress: rs.Progress,
			})
			u := repotest.SeedUser(t, ctx, db, "linus")

			_, err := agg.RecordResult(ctx, domainagg.RecordResultInput{
				UserID:         u.ID,
				ExerciseID:     "typing",
				Score:          61,
				ElapsedSeconds: 61,
				LowerIsBetter:  true,
			})
			if !domainagg.IsCode(err, tc.wantCode) {
				t.Fatalf("want code %s got %v", tc.wantCode, err)
			}
			if got := hooks.Statuses(); len(got) != 1 || got[0] != string(tc.wantCode) {
				t.Fatalf("hook statuses: %v", got)
			}
			if tc.runner.CommitCalls != 0 || tc.runner.RollbackCalls != tc.wantRollback {
				t.Fatalf("commit=%d rollback=%d", tc.runner.CommitCalls, tc.runner.RollbackCalls)
			}
			n, err := rs.Results.CountForUser(dbctx.New(ctx), u.ID)
			if err != nil || n != 0 {
				t.Fatalf("results written despite failed transaction: n=%d err=%v", n, err)
			}
		})
	}
}

func TestResolveClickBeginFailureLeavesSessionUntouched(t *testing.T) {
	db := repotest.DB(t)
	ctx := context.Background()
	rs := repos.New(db, repotest.Logger(t))
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	u := repotest.SeedUser(t, ctx, db, "barbara")
	tpl := repotest.SeedTemplate(t, ctx, db, types.DifficultyEasy, nil)
	sess := repotest.SeedSession(t, ctx, db, u.ID, tpl, start)

	hooks := &aggtest.HooksRecorder{}
	agg := aggregates.NewSpotDiffSessionAggregate(aggregates.SpotDiffSessionAggregateDeps{
		Base:     aggregates.BaseDeps{DB: db, Runner: &aggtest.InjectedTxRunner{FailBegin: context.DeadlineExceeded}, Hooks: hooks},
		Sessions: rs.Sessions,
		Solved:   rs.Solved,
		Results:  rs.Results,
		Progress: rs.Progress,
	})

	_, err := agg.ResolveClick(ctx, domainagg.ResolveClickInput{
		SessionID:  sess.ID,
		UserID:     u.ID,
		XPercent:   50,
		YPercent:   50,
		ExerciseID: "spot-difference",
		At:         start.Add(time.Second),
	})
	if !domainagg.Retryable(err) {
		t.Fatalf("want retryable error got %v", err)
	}
	events := hooks.Events()
	if len(events) != 1 || events[0].Op != "SpotDifference.Session.ResolveClick" {
		t.Fatalf("events: %+v", events)
	}
	got, err := rs.Sessions.GetByID(dbctx.New(ctx), sess.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Version != sess.Version || got.FoundCount != 0 {
		t.Fatalf("session changed: %+v", got)
	}
}
