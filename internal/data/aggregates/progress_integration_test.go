package aggregates

import (
	"context"
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/brainforge-backend/internal/data/repos"
	repotest "github.com/yungbote/brainforge-backend/internal/data/repos/testutil"
	domainagg "github.com/yungbote/brainforge-backend/internal/domain/aggregates"
	"github.com/yungbote/brainforge-backend/internal/platform/dbctx"
)

func TestRecordResultProgressTrace(t *testing.T) {
	db := repotest.DB(t)
	ctx := context.Background()
	rs := repos.New(db, repotest.Logger(t))
	agg := NewProgressAggregate(ProgressAggregateDeps{
		Base:     BaseDeps{DB: db},
		Results:  rs.Results,
		Progress: rs.Progress,
	})
	u := repotest.SeedUser(t, ctx, db, "grace")
	at := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	record := func(score float64) domainagg.RecordResultResult {
		t.Helper()
		res, err := agg.RecordResult(ctx, domainagg.RecordResultInput{
			UserID:         u.ID,
			ExerciseID:     "schulte",
			Score:          score,
			ElapsedSeconds: score,
			LowerIsBetter:  true,
			At:             at,
		})
		if err != nil {
			t.Fatalf("RecordResult(%v): %v", score, err)
		}
		return res
	}

	first := record(40)
	if p := first.Progress; p.BestScore != 40 || p.AverageScore != 40 || p.Level != 1 || p.TotalAttempts != 1 {
		t.Fatalf("after first: %+v", p)
	}
	second := record(30)
	if p := second.Progress; p.BestScore != 30 || p.AverageScore != 35 || p.Level != 1 || p.TotalAttempts != 2 {
		t.Fatalf("after second: %+v", p)
	}
	var last domainagg.RecordResultResult
	for i := 0; i < 8; i++ {
		last = record(50)
	}
	if p := last.Progress; p.TotalAttempts != 10 || p.Level != 2 || p.BestScore != 30 {
		t.Fatalf("after ten: %+v", p)
	}

	stored, err := rs.Progress.GetByUserExercise(dbctx.Context{Ctx: ctx}, u.ID, "schulte")
	if err != nil || stored == nil {
		t.Fatalf("reload progress: %v", err)
	}
	if stored.TotalAttempts != 10 || stored.Level != 2 || math.Abs(stored.AverageScore-last.Progress.AverageScore) > 1e-9 {
		t.Fatalf("stored progress: %+v", stored)
	}
}

func TestRecordResultHigherIsBetterWithPayload(t *testing.T) {
	db := repotest.DB(t)
	ctx := context.Background()
	rs := repos.New(db, repotest.Logger(t))
	agg := NewProgressAggregate(ProgressAggregateDeps{
		Base:     BaseDeps{DB: db},
		Results:  rs.Results,
		Progress: rs.Progress,
	})
	u := repotest.SeedUser(t, ctx, db, "linus")
	payload, _ := json.Marshal(map[string]any{"wpm": 72.5, "accuracy": 0.97})

	for _, score := range []float64{60, 80, 70} {
		if _, err := agg.RecordResult(ctx, domainagg.RecordResultInput{
			UserID:         u.ID,
			ExerciseID:     "typing",
			Score:          score,
			ElapsedSeconds: 60,
			PayloadKind:    "typing",
			Payload:        payload,
		}); err != nil {
			t.Fatalf("RecordResult: %v", err)
		}
	}
	p, err := rs.Progress.GetByUserExercise(dbctx.Context{Ctx: ctx}, u.ID, "typing")
	if err != nil || p == nil {
		t.Fatalf("progress: %v", err)
	}
	if p.BestScore != 80 || p.AverageScore != 70 {
		t.Fatalf("progress = %+v", p)
	}
	list, err := rs.Results.ListForUser(dbctx.Context{Ctx: ctx}, u.ID, "typing", 10)
	if err != nil || len(list) != 3 {
		t.Fatalf("results: %d %v", len(list), err)
	}
	if list[0].PayloadKind != "typing" || len(list[0].Payload) == 0 {
		t.Fatalf("payload not stored: %+v", list[0])
	}
}

// spyTxRunner runs fn without a database and counts transactions opened.
type spyTxRunner struct {
	calls int
}

func (r *spyTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	r.calls++
	return fn(dbctx.Context{Ctx: ctx})
}

func TestRecordResultValidation(t *testing.T) {
	runner := &spyTxRunner{}
	agg := NewProgressAggregate(ProgressAggregateDeps{Base: BaseDeps{Runner: runner}})
	cases := []domainagg.RecordResultInput{
		{ExerciseID: "x", Score: 1},
		{UserID: uuid.New(), Score: 1},
		{UserID: uuid.New(), ExerciseID: "x", Score: math.NaN()},
		{UserID: uuid.New(), ExerciseID: "x", Score: 1, ElapsedSeconds: -1},
	}
	for i, in := range cases {
		if _, err := agg.RecordResult(context.Background(), in); !domainagg.IsCode(err, domainagg.CodeValidation) {
			t.Fatalf("case %d: want validation, got %v", i, err)
		}
	}
	if runner.calls != 0 {
		t.Fatalf("invalid input opened %d transactions", runner.calls)
	}
}
