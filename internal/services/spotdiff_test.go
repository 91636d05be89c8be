package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/brainforge-backend/internal/data/aggregates"
	repotest "github.com/yungbote/brainforge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/brainforge-backend/internal/domain"
	"github.com/yungbote/brainforge-backend/internal/domain/game"
	"github.com/yungbote/brainforge-backend/internal/platform/dbctx"
)

type spotDiffHarness struct {
	env   *testEnv
	svc   SpotDifferenceService
	gen   *fakeGenerator
	cache *fakeCache
	clock time.Time
}

func newSpotDiffHarness(t *testing.T) *spotDiffHarness {
	t.Helper()
	env := newTestEnv(t)
	gen := &fakeGenerator{}
	cache := newFakeCache()
	clicks := aggregates.NewSpotDiffSessionAggregate(aggregates.SpotDiffSessionAggregateDeps{
		Base:     aggregates.BaseDeps{DB: env.db, Log: env.log},
		Sessions: env.repos.Sessions,
		Solved:   env.repos.Solved,
		Results:  env.repos.Results,
		Progress: env.repos.Progress,
	})
	h := &spotDiffHarness{
		env:   env,
		gen:   gen,
		cache: cache,
		clock: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	svc := NewSpotDifferenceService(env.log, env.cfg, newTestSelector(env, gen), env.repos.Templates, env.repos.Sessions, clicks, cache, nil)
	svc.(*spotDifferenceService).now = func() time.Time { return h.clock }
	h.svc = svc
	return h
}

func (h *spotDiffHarness) advance(d time.Duration) { h.clock = h.clock.Add(d) }

func TestStartPuzzleRejectsUnknownDifficulty(t *testing.T) {
	h := newSpotDiffHarness(t)
	_, err := h.svc.StartPuzzle(context.Background(), uuid.New(), "expert")
	if !errors.Is(err, game.ErrInvalidArgument) {
		t.Fatalf("want ErrInvalidArgument, got %v", err)
	}
	if h.gen.calls != 0 {
		t.Fatalf("generator should not run for a bad difficulty")
	}
}

func TestSpotDifferenceFullRound(t *testing.T) {
	h := newSpotDiffHarness(t)
	ctx := context.Background()
	u := repotest.SeedUser(t, ctx, h.env.db, "ada")

	start, err := h.svc.StartPuzzle(ctx, u.ID, "Easy")
	if err != nil {
		t.Fatalf("StartPuzzle: %v", err)
	}
	if start.Reused || start.FoundCount != 0 || start.TotalDifferences != 2 || start.Difficulty != game.DifficultyEasy {
		t.Fatalf("start result: %+v", start)
	}

	steps := []struct {
		name      string
		x, y      float64
		hit       bool
		found     int
		completed bool
		zone      string
	}{
		{"miss", 90, 90, false, 0, false, ""},
		{"first zone", 16, 16, true, 1, false, "top-left"},
		{"same zone again", 20, 20, false, 1, false, ""},
		{"last zone", 50, 50, true, 2, true, "middle-center"},
	}
	for _, st := range steps {
		h.advance(15 * time.Second)
		res, err := h.svc.CheckClick(ctx, u.ID, start.SessionID, st.x, st.y)
		if err != nil {
			t.Fatalf("%s: CheckClick: %v", st.name, err)
		}
		if res.Hit != st.hit || res.FoundCount != st.found || res.Completed != st.completed || res.Zone != st.zone {
			t.Fatalf("%s: got %+v", st.name, res)
		}
		if res.TotalDifferences != 2 {
			t.Fatalf("%s: total differences %d", st.name, res.TotalDifferences)
		}
		if st.completed {
			if res.ElapsedSeconds == nil || *res.ElapsedSeconds != 60 {
				t.Fatalf("%s: elapsed %v", st.name, res.ElapsedSeconds)
			}
			if res.Progress == nil || res.Progress.TotalAttempts != 1 || res.Progress.BestScore != 60 || res.Progress.Level != 1 {
				t.Fatalf("%s: progress %+v", st.name, res.Progress)
			}
		} else if res.ElapsedSeconds != nil {
			t.Fatalf("%s: elapsed reported before completion", st.name)
		}
	}

	if inv := h.cache.Invalidations(); len(inv) != 1 || inv[0] != "spot-difference" {
		t.Fatalf("cache invalidations: %v", inv)
	}

	_, err = h.svc.CheckClick(ctx, u.ID, start.SessionID, 50, 50)
	if !errors.Is(err, game.ErrInvalidState) {
		t.Fatalf("click on completed session: want ErrInvalidState, got %v", err)
	}

	h.advance(time.Hour)
	state, err := h.svc.GetSession(ctx, u.ID, start.SessionID)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if !state.Completed || state.FoundCount != 2 || state.ElapsedSeconds != 60 || state.EndedAt == nil {
		t.Fatalf("session state: %+v", state)
	}
	if len(state.FoundAreas) != 2 || state.FoundAreas[0] != "top-left" || state.FoundAreas[1] != "middle-center" {
		t.Fatalf("found areas: %v", state.FoundAreas)
	}

	n, err := h.env.repos.Results.CountForUser(dbctx.New(ctx), u.ID)
	if err != nil || n != 1 {
		t.Fatalf("results: n=%d err=%v", n, err)
	}

	next, err := h.svc.StartPuzzle(ctx, u.ID, "easy")
	if err != nil {
		t.Fatalf("second StartPuzzle: %v", err)
	}
	if next.TemplateID == start.TemplateID || next.Reused || h.gen.calls != 2 {
		t.Fatalf("solved template must not be handed out again: next=%+v calls=%d", next, h.gen.calls)
	}
}

func TestCheckClickOwnershipAndSupersede(t *testing.T) {
	h := newSpotDiffHarness(t)
	ctx := context.Background()
	ada := repotest.SeedUser(t, ctx, h.env.db, "ada")
	bob := repotest.SeedUser(t, ctx, h.env.db, "bob")

	first, err := h.svc.StartPuzzle(ctx, ada.ID, "easy")
	if err != nil {
		t.Fatalf("StartPuzzle: %v", err)
	}

	if _, err := h.svc.CheckClick(ctx, bob.ID, first.SessionID, 16, 16); !errors.Is(err, game.ErrNotFound) {
		t.Fatalf("foreign session: want ErrNotFound, got %v", err)
	}
	if _, err := h.svc.GetSession(ctx, bob.ID, first.SessionID); !errors.Is(err, game.ErrNotFound) {
		t.Fatalf("foreign GetSession: want ErrNotFound, got %v", err)
	}
	if _, err := h.svc.CheckClick(ctx, ada.ID, uuid.New(), 16, 16); !errors.Is(err, game.ErrNotFound) {
		t.Fatalf("unknown session: want ErrNotFound, got %v", err)
	}

	h.advance(time.Second)
	if _, err := h.svc.StartPuzzle(ctx, ada.ID, "easy"); err != nil {
		t.Fatalf("second StartPuzzle: %v", err)
	}
	if _, err := h.svc.CheckClick(ctx, ada.ID, first.SessionID, 16, 16); !errors.Is(err, game.ErrInvalidState) {
		t.Fatalf("superseded session: want ErrInvalidState, got %v", err)
	}
}

func TestCheckClickRejectsBadCoordinates(t *testing.T) {
	h := newSpotDiffHarness(t)
	cases := []struct {
		name string
		x, y float64
	}{
		{"negative", -1, 10},
		{"over", 10, 100.5},
		{"nan", math.NaN(), 10},
		{"inf", 10, math.Inf(1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := h.svc.CheckClick(context.Background(), uuid.New(), uuid.New(), tc.x, tc.y)
			if !errors.Is(err, game.ErrInvalidArgument) {
				t.Fatalf("want ErrInvalidArgument, got %v", err)
			}
		})
	}
}

func seedImageTemplate(t *testing.T, h *spotDiffHarness, imageRef string) *types.PuzzleTemplate {
	t.Helper()
	diffs := repotest.TwoZoneDifferences()
	tpl := &types.PuzzleTemplate{
		Difficulty:       game.DifficultyEasy,
		Scene:            "a garden with flowers and plants",
		ImageA:           imageRef,
		ImageB:           imageRef,
		Width:            90,
		Height:           90,
		Differences:      datatypes.JSONSlice[types.Difference](diffs),
		TotalDifferences: len(diffs),
		TimesPlayed:      1,
	}
	if err := h.env.repos.Templates.Create(dbctx.New(context.Background()), tpl); err != nil {
		t.Fatalf("create template: %v", err)
	}
	return tpl
}

func TestRenderOverlay(t *testing.T) {
	h := newSpotDiffHarness(t)
	raw := solidPNG(t, 90, 90, color.White)

	t.Run("data url", func(t *testing.T) {
		tpl := seedImageTemplate(t, h, "data:image/png;base64,"+base64.StdEncoding.EncodeToString(raw))
		out, err := h.svc.RenderOverlay(context.Background(), tpl.ID)
		if err != nil {
			t.Fatalf("RenderOverlay: %v", err)
		}
		if _, _, err := image.DecodeConfig(bytes.NewReader(out)); err != nil {
			t.Fatalf("overlay is not an image: %v", err)
		}
	})

	t.Run("remote url", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(raw)
		}))
		defer srv.Close()
		tpl := seedImageTemplate(t, h, srv.URL+"/a.png")
		out, err := h.svc.RenderOverlay(context.Background(), tpl.ID)
		if err != nil {
			t.Fatalf("RenderOverlay: %v", err)
		}
		if len(out) == 0 {
			t.Fatalf("empty overlay")
		}
	})

	t.Run("unknown template", func(t *testing.T) {
		if _, err := h.svc.RenderOverlay(context.Background(), uuid.New()); !errors.Is(err, game.ErrNotFound) {
			t.Fatalf("want ErrNotFound, got %v", err)
		}
	})
}
