package game

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/brainforge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/brainforge-backend/internal/domain"
	"github.com/yungbote/brainforge-backend/internal/platform/dbctx"
)

func TestPuzzleTemplateRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := NewPuzzleTemplateRepo(db, testutil.Logger(t))

	a := testutil.SeedTemplate(t, ctx, tx, types.DifficultyEasy, nil)
	b := testutil.SeedTemplate(t, ctx, tx, types.DifficultyEasy, nil)
	testutil.SeedTemplate(t, ctx, tx, types.DifficultyHard, nil)

	ids, err := repo.ListCandidateIDs(dbc, types.DifficultyEasy, nil)
	if err != nil {
		t.Fatalf("ListCandidateIDs: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("ListCandidateIDs: want 2 got %d", len(ids))
	}

	ids, err = repo.ListCandidateIDs(dbc, types.DifficultyEasy, []uuid.UUID{a.ID})
	if err != nil {
		t.Fatalf("ListCandidateIDs exclude: %v", err)
	}
	if len(ids) != 1 || ids[0] != b.ID {
		t.Fatalf("ListCandidateIDs exclude: got %v", ids)
	}

	if err := repo.IncrementTimesPlayed(dbc, a.ID); err != nil {
		t.Fatalf("IncrementTimesPlayed: %v", err)
	}
	got, err := repo.GetByID(dbc, a.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got == nil || got.TimesPlayed != 2 {
		t.Fatalf("GetByID: unexpected %+v", got)
	}
	if len(got.Differences) != 2 || got.Differences[1].Zone != "middle-center" {
		t.Fatalf("differences did not round-trip: %+v", got.Differences)
	}

	missing, err := repo.GetByID(dbc, uuid.New())
	if err != nil || missing != nil {
		t.Fatalf("GetByID missing: got=%v err=%v", missing, err)
	}

	hard, err := repo.ListCandidateIDs(dbc, types.DifficultyHard, nil)
	if err != nil || len(hard) != 1 {
		t.Fatalf("ListCandidateIDs hard: ids=%v err=%v", hard, err)
	}
}

func TestGameSessionRepoLatestActive(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := NewGameSessionRepo(db, testutil.Logger(t))
	u := testutil.SeedUser(t, ctx, tx, "sess")
	tpl := testutil.SeedTemplate(t, ctx, tx, types.DifficultyEasy, nil)

	base := time.Now().Add(-time.Hour)
	older := testutil.SeedSession(t, ctx, tx, u.ID, tpl, base)
	newer := testutil.SeedSession(t, ctx, tx, u.ID, tpl, base.Add(time.Minute))

	latest, err := repo.GetLatestActiveForUser(dbc, u.ID)
	if err != nil {
		t.Fatalf("GetLatestActiveForUser: %v", err)
	}
	if latest == nil || latest.ID != newer.ID {
		t.Fatalf("GetLatestActiveForUser: want %s got %+v", newer.ID, latest)
	}

	// A completed newer session no longer shadows the older active one.
	if err := tx.Model(&types.GameSession{}).Where("id = ?", newer.ID).Update("completed", true).Error; err != nil {
		t.Fatalf("complete newer: %v", err)
	}
	latest, err = repo.GetLatestActiveForUser(dbc, u.ID)
	if err != nil || latest == nil || latest.ID != older.ID {
		t.Fatalf("after completion: want %s got=%+v err=%v", older.ID, latest, err)
	}

	none, err := repo.GetLatestActiveForUser(dbc, uuid.New())
	if err != nil || none != nil {
		t.Fatalf("GetLatestActiveForUser unknown user: got=%v err=%v", none, err)
	}

	got, err := repo.GetByID(dbc, newer.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID: got=%v err=%v", got, err)
	}
	if !got.Completed || got.FoundCount != 0 || len(got.Differences) != 2 {
		t.Fatalf("GetByID: unexpected %+v", got)
	}
}

func TestSolvedRecordRepoUpsertIsIdempotent(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := NewSolvedRecordRepo(db, testutil.Logger(t))
	u := testutil.SeedUser(t, ctx, tx, "solver")
	tpl := testutil.SeedTemplate(t, ctx, tx, types.DifficultyMedium, nil)

	for i, want := range []bool{true, false} {
		inserted, err := repo.Upsert(dbc, &types.SolvedRecord{
			UserID:     u.ID,
			TemplateID: tpl.ID,
			Difficulty: types.DifficultyMedium,
			SolvedAt:   time.Now().UTC(),
		})
		if err != nil {
			t.Fatalf("Upsert #%d: %v", i, err)
		}
		if inserted != want {
			t.Fatalf("Upsert #%d: inserted want=%v got=%v", i, want, inserted)
		}
	}

	ids, err := repo.ListTemplateIDs(dbc, u.ID, types.DifficultyMedium)
	if err != nil {
		t.Fatalf("ListTemplateIDs: %v", err)
	}
	if len(ids) != 1 || ids[0] != tpl.ID {
		t.Fatalf("ListTemplateIDs: got %v", ids)
	}
	ids, _ = repo.ListTemplateIDs(dbc, u.ID, types.DifficultyEasy)
	if len(ids) != 0 {
		t.Fatalf("ListTemplateIDs other difficulty: got %v", ids)
	}
}

func TestGameSessionRepoLatestActiveTieBreaksByID(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := NewGameSessionRepo(db, testutil.Logger(t))
	u := testutil.SeedUser(t, ctx, tx, "twin")
	tpl := testutil.SeedTemplate(t, ctx, tx, types.DifficultyEasy, nil)

	at := time.Now().Add(-time.Hour).Truncate(time.Second)
	a := testutil.SeedSession(t, ctx, tx, u.ID, tpl, at)
	b := testutil.SeedSession(t, ctx, tx, u.ID, tpl, at)
	want := a.ID
	if b.ID.String() > a.ID.String() {
		want = b.ID
	}
	for i := 0; i < 3; i++ {
		got, err := repo.GetLatestActiveForUser(dbc, u.ID)
		if err != nil || got == nil || got.ID != want {
			t.Fatalf("attempt %d: want %s got=%+v err=%v", i, want, got, err)
		}
	}
}
