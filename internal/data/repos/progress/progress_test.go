package progress

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/brainforge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/brainforge-backend/internal/domain"
	"github.com/yungbote/brainforge-backend/internal/platform/dbctx"
)

func TestResultRecordRepoTopByExercise(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := NewResultRecordRepo(db, testutil.Logger(t))
	a := testutil.SeedUser(t, ctx, tx, "a")
	b := testutil.SeedUser(t, ctx, tx, "b")
	c := testutil.SeedUser(t, ctx, tx, "c")

	testutil.SeedResult(t, ctx, tx, a.ID, "schulte", 12.0)
	testutil.SeedResult(t, ctx, tx, a.ID, "schulte", 15.0)
	testutil.SeedResult(t, ctx, tx, b.ID, "schulte", 9.5)
	testutil.SeedResult(t, ctx, tx, c.ID, "schulte", 20.0)
	testutil.SeedResult(t, ctx, tx, c.ID, "math", 1.0)

	rows, err := repo.TopByExercise(dbc, "schulte", 2)
	if err != nil {
		t.Fatalf("TopByExercise: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("TopByExercise: want 2 rows got %d", len(rows))
	}
	if rows[0].UserID != b.ID || rows[0].BestTime != 9.5 || rows[0].TotalGames != 1 {
		t.Fatalf("row 0: %+v", rows[0])
	}
	if rows[1].UserID != a.ID || rows[1].BestTime != 12.0 || rows[1].TotalGames != 2 {
		t.Fatalf("row 1: %+v", rows[1])
	}

	list, err := repo.ListForUser(dbc, c.ID, "", 10)
	if err != nil || len(list) != 2 {
		t.Fatalf("ListForUser: n=%d err=%v", len(list), err)
	}
	list, _ = repo.ListForUser(dbc, c.ID, "math", 10)
	if len(list) != 1 {
		t.Fatalf("ListForUser filtered: n=%d", len(list))
	}
	n, err := repo.CountForUser(dbc, a.ID)
	if err != nil || n != 2 {
		t.Fatalf("CountForUser: n=%d err=%v", n, err)
	}
}

func TestResultRecordRepoTieBreakByUserID(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := NewResultRecordRepo(db, testutil.Logger(t))
	lo := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	hi := uuid.MustParse("ffffffff-0000-0000-0000-000000000001")
	testutil.SeedResult(t, ctx, tx, hi, "reaction", 3)
	testutil.SeedResult(t, ctx, tx, lo, "reaction", 3)

	rows, err := repo.TopByExercise(dbc, "reaction", 10)
	if err != nil {
		t.Fatalf("TopByExercise: %v", err)
	}
	if len(rows) != 2 || rows[0].UserID != lo || rows[1].UserID != hi {
		t.Fatalf("tie break: %+v", rows)
	}
}

func TestProgressRecordRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := NewProgressRecordRepo(db, testutil.Logger(t))
	u := testutil.SeedUser(t, ctx, tx, "prog")

	rec := &types.ProgressRecord{UserID: u.ID, ExerciseID: "schulte", Level: 3, TotalAttempts: 25, LastPlayedAt: time.Now().UTC()}
	ok, err := repo.CreateIfAbsent(dbc, rec)
	if err != nil || !ok {
		t.Fatalf("CreateIfAbsent: ok=%v err=%v", ok, err)
	}
	ok, err = repo.CreateIfAbsent(dbc, &types.ProgressRecord{UserID: u.ID, ExerciseID: "schulte", Level: 1, LastPlayedAt: time.Now().UTC()})
	if err != nil || ok {
		t.Fatalf("CreateIfAbsent duplicate: ok=%v err=%v", ok, err)
	}

	got, err := repo.GetByUserExercise(dbc, u.ID, "schulte")
	if err != nil || got == nil || got.TotalAttempts != 25 {
		t.Fatalf("GetByUserExercise: got=%+v err=%v", got, err)
	}
	none, err := repo.GetByUserExercise(dbc, u.ID, "math")
	if err != nil || none != nil {
		t.Fatalf("GetByUserExercise missing: got=%+v err=%v", none, err)
	}

	levels, err := repo.GetLevels(dbc, "schulte", []uuid.UUID{u.ID, uuid.New()})
	if err != nil {
		t.Fatalf("GetLevels: %v", err)
	}
	if len(levels) != 1 || levels[u.ID] != 3 {
		t.Fatalf("GetLevels: %v", levels)
	}

	all, err := repo.ListForUser(dbc, u.ID)
	if err != nil || len(all) != 1 {
		t.Fatalf("ListForUser: n=%d err=%v", len(all), err)
	}
}
