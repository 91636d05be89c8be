package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/datatypes"

	types "github.com/yungbote/brainforge-backend/internal/domain"
	"github.com/yungbote/brainforge-backend/internal/domain/game"
	"github.com/yungbote/brainforge-backend/internal/modules/spotdiff"
	"github.com/yungbote/brainforge-backend/internal/observability"
	"github.com/yungbote/brainforge-backend/internal/platform/gcp"
	"github.com/yungbote/brainforge-backend/internal/platform/logger"
	"github.com/yungbote/brainforge-backend/internal/platform/openai"
)

// PuzzleGenerator produces a new, unsaved template: planned differences, an
// image pair sized for the difficulty, and both images uploaded to the store.
type PuzzleGenerator interface {
	Generate(ctx context.Context, difficulty game.Difficulty) (*types.PuzzleTemplate, error)
	// Discard removes uploaded images for a template that was never persisted.
	Discard(ctx context.Context, tpl *types.PuzzleTemplate)
}

type puzzleGenerator struct {
	log     *logger.Logger
	planner *spotdiff.Planner
	images  openai.ImageClient
	store   gcp.ImageStore
	metrics *observability.Metrics
}

func NewPuzzleGenerator(
	log *logger.Logger,
	planner *spotdiff.Planner,
	images openai.ImageClient,
	store gcp.ImageStore,
	metrics *observability.Metrics,
) PuzzleGenerator {
	if store == nil {
		store = gcp.InlineStore{}
	}
	return &puzzleGenerator{
		log:     log.With("service", "PuzzleGenerator"),
		planner: planner,
		images:  images,
		store:   store,
		metrics: metrics,
	}
}

func (g *puzzleGenerator) Generate(ctx context.Context, difficulty game.Difficulty) (tpl *types.PuzzleTemplate, err error) {
	ctx, span := observability.StartSpan(ctx, "spotdiff.generate",
		attribute.String("spotdiff.difficulty", difficulty.String()))
	start := time.Now()
	defer func() {
		outcome := "success"
		if err != nil {
			outcome = "failure"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		g.metrics.ObserveGeneration(difficulty.String(), outcome, time.Since(start))
		span.End()
	}()

	if g.images == nil {
		return nil, fmt.Errorf("%w: %v", game.ErrGenerationFailure, openai.ErrNotConfigured)
	}
	plan, err := g.planner.Plan(difficulty)
	if err != nil {
		return nil, err
	}

	original, err := g.images.GenerateImage(ctx, plan.ScenePrompt(), "")
	if err != nil {
		return nil, fmt.Errorf("%w: generate original image: %v", game.ErrGenerationFailure, err)
	}
	imageA, err := spotdiff.Normalize(original.Bytes, plan.Width, plan.Height)
	if err != nil {
		return nil, fmt.Errorf("%w: normalize original image: %v", game.ErrGenerationFailure, err)
	}
	edited, err := g.images.EditImage(ctx, imageA, plan.EditPrompt(), "")
	if err != nil {
		return nil, fmt.Errorf("%w: generate modified image: %v", game.ErrGenerationFailure, err)
	}
	imageB, err := spotdiff.Normalize(edited.Bytes, plan.Width, plan.Height)
	if err != nil {
		return nil, fmt.Errorf("%w: normalize modified image: %v", game.ErrGenerationFailure, err)
	}

	id := uuid.New()
	keyA := imageKey(difficulty, id, "a")
	keyB := imageKey(difficulty, id, "b")
	urlA, err := g.store.Put(ctx, keyA, imageA)
	if err != nil {
		return nil, fmt.Errorf("%w: upload original image: %v", game.ErrGenerationFailure, err)
	}
	urlB, err := g.store.Put(ctx, keyB, imageB)
	if err != nil {
		g.deleteQuietly(keyA)
		return nil, fmt.Errorf("%w: upload modified image: %v", game.ErrGenerationFailure, err)
	}

	diffs := game.CloneDifferences(plan.Differences)
	tpl = &types.PuzzleTemplate{
		ID:               id,
		Difficulty:       difficulty,
		Scene:            plan.Scene,
		ImageA:           urlA,
		ImageB:           urlB,
		ImageAKey:        keyA,
		ImageBKey:        keyB,
		Width:            plan.Width,
		Height:           plan.Height,
		Differences:      datatypes.JSONSlice[types.Difference](diffs),
		TotalDifferences: len(diffs),
		TimesPlayed:      1,
	}
	g.log.Info("Generated puzzle template",
		"template_id", id,
		"difficulty", difficulty,
		"differences", len(diffs),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return tpl, nil
}

func (g *puzzleGenerator) Discard(ctx context.Context, tpl *types.PuzzleTemplate) {
	if tpl == nil {
		return
	}
	for _, key := range []string{tpl.ImageAKey, tpl.ImageBKey} {
		if key == "" {
			continue
		}
		if err := g.store.Delete(ctx, key); err != nil {
			g.log.Warn("Failed to delete orphaned puzzle image", "key", key, "error", err)
		}
	}
}

func (g *puzzleGenerator) deleteQuietly(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := g.store.Delete(ctx, key); err != nil && !errors.Is(err, context.Canceled) {
		g.log.Warn("Failed to delete orphaned puzzle image", "key", key, "error", err)
	}
}

func imageKey(difficulty game.Difficulty, id uuid.UUID, side string) string {
	return fmt.Sprintf("spot-difference/%s/%s/%s.png", difficulty, id, side)
}
