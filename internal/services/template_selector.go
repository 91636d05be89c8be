package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/brainforge-backend/internal/data/repos"
	types "github.com/yungbote/brainforge-backend/internal/domain"
	"github.com/yungbote/brainforge-backend/internal/domain/game"
	"github.com/yungbote/brainforge-backend/internal/modules/spotdiff"
	"github.com/yungbote/brainforge-backend/internal/observability"
	"github.com/yungbote/brainforge-backend/internal/platform/dbctx"
	"github.com/yungbote/brainforge-backend/internal/platform/logger"
)

const (
	AcquirePathReused    = "reused"
	AcquirePathGenerated = "generated"
)

// TemplateSelector hands out a template the user has not solved yet,
// generating a fresh one only when every cached template is exhausted.
type TemplateSelector interface {
	Acquire(ctx context.Context, userID uuid.UUID, difficulty game.Difficulty) (*types.PuzzleTemplate, bool, error)
}

type templateSelector struct {
	log               *logger.Logger
	templates         repos.PuzzleTemplateRepo
	solved            repos.SolvedRecordRepo
	generator         PuzzleGenerator
	rng               *spotdiff.Rand
	generationTimeout time.Duration
	metrics           *observability.Metrics
}

func NewTemplateSelector(
	log *logger.Logger,
	templates repos.PuzzleTemplateRepo,
	solved repos.SolvedRecordRepo,
	generator PuzzleGenerator,
	rng *spotdiff.Rand,
	generationTimeout time.Duration,
	metrics *observability.Metrics,
) TemplateSelector {
	if rng == nil {
		rng = spotdiff.NewTimeRand()
	}
	if generationTimeout <= 0 {
		generationTimeout = 180 * time.Second
	}
	return &templateSelector{
		log:               log.With("service", "TemplateSelector"),
		templates:         templates,
		solved:            solved,
		generator:         generator,
		rng:               rng,
		generationTimeout: generationTimeout,
		metrics:           metrics,
	}
}

// Acquire reports reused=true when the template came from the cache.
// The play counter bump on the fast path is not transactional.
func (s *templateSelector) Acquire(ctx context.Context, userID uuid.UUID, difficulty game.Difficulty) (*types.PuzzleTemplate, bool, error) {
	dbc := dbctx.New(ctx)
	solved, err := s.solved.ListTemplateIDs(dbc, userID, difficulty)
	if err != nil {
		return nil, false, fmt.Errorf("list solved templates: %w", err)
	}
	candidates, err := s.templates.ListCandidateIDs(dbc, difficulty, solved)
	if err != nil {
		return nil, false, fmt.Errorf("list candidate templates: %w", err)
	}

	if len(candidates) > 0 {
		id := candidates[s.rng.Intn(len(candidates))]
		if err := s.templates.IncrementTimesPlayed(dbc, id); err != nil {
			return nil, false, fmt.Errorf("increment times played: %w", err)
		}
		tpl, err := s.templates.GetByID(dbc, id)
		if err != nil {
			return nil, false, fmt.Errorf("load template: %w", err)
		}
		if tpl == nil {
			return nil, false, fmt.Errorf("%w: template %s", game.ErrNotFound, id)
		}
		s.metrics.IncAcquisition(difficulty.String(), AcquirePathReused)
		return tpl, true, nil
	}

	tpl, err := s.generate(ctx, difficulty)
	if err != nil {
		return nil, false, err
	}
	s.metrics.IncAcquisition(difficulty.String(), AcquirePathGenerated)
	return tpl, false, nil
}

func (s *templateSelector) generate(ctx context.Context, difficulty game.Difficulty) (*types.PuzzleTemplate, error) {
	if s.generator == nil {
		return nil, fmt.Errorf("%w: no puzzle generator configured", game.ErrGenerationFailure)
	}
	genCtx, cancel := context.WithTimeout(ctx, s.generationTimeout)
	defer cancel()

	tpl, err := s.generator.Generate(genCtx, difficulty)
	if err != nil {
		s.log.Warn("Puzzle generation failed", "difficulty", difficulty, "error", err)
		if errors.Is(err, game.ErrGenerationFailure) || errors.Is(err, game.ErrInvalidArgument) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", game.ErrGenerationFailure, err)
	}
	tpl.TimesPlayed = 1
	if err := s.templates.Create(dbctx.New(ctx), tpl); err != nil {
		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 10*time.Second)
		s.generator.Discard(cleanupCtx, tpl)
		cleanupCancel()
		return nil, fmt.Errorf("insert generated template: %w", err)
	}
	return tpl, nil
}
