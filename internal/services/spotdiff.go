package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/datatypes"

	"github.com/yungbote/brainforge-backend/internal/config"
	"github.com/yungbote/brainforge-backend/internal/data/repos"
	types "github.com/yungbote/brainforge-backend/internal/domain"
	domainagg "github.com/yungbote/brainforge-backend/internal/domain/aggregates"
	"github.com/yungbote/brainforge-backend/internal/domain/game"
	"github.com/yungbote/brainforge-backend/internal/modules/spotdiff"
	"github.com/yungbote/brainforge-backend/internal/observability"
	"github.com/yungbote/brainforge-backend/internal/platform/dbctx"
	"github.com/yungbote/brainforge-backend/internal/platform/logger"
	"github.com/yungbote/brainforge-backend/internal/platform/rediscache"
)

type StartPuzzleResult struct {
	SessionID        uuid.UUID       `json:"session_id"`
	TemplateID       uuid.UUID       `json:"template_id"`
	Difficulty       game.Difficulty `json:"difficulty"`
	Scene            string          `json:"scene"`
	ImageA           string          `json:"image1"`
	ImageB           string          `json:"image2"`
	TotalDifferences int             `json:"total_differences"`
	FoundCount       int             `json:"found_count"`
	Reused           bool            `json:"reused"`
}

type CheckClickResult struct {
	Hit              bool             `json:"correct"`
	FoundCount       int              `json:"found_count"`
	TotalDifferences int              `json:"total_differences"`
	Completed        bool             `json:"completed"`
	Zone             string           `json:"difference_area,omitempty"`
	ElapsedSeconds   *float64         `json:"time_taken,omitempty"`
	Progress         *ProgressSummary `json:"progress,omitempty"`
}

type SessionState struct {
	SessionID        uuid.UUID       `json:"session_id"`
	TemplateID       uuid.UUID       `json:"template_id"`
	Difficulty       game.Difficulty `json:"difficulty"`
	FoundAreas       []string        `json:"found_areas"`
	FoundCount       int             `json:"found_count"`
	TotalDifferences int             `json:"total_differences"`
	Completed        bool            `json:"completed"`
	ElapsedSeconds   float64         `json:"elapsed_seconds"`
	StartedAt        time.Time       `json:"started_at"`
	EndedAt          *time.Time      `json:"ended_at,omitempty"`
}

type SpotDifferenceService interface {
	StartPuzzle(ctx context.Context, userID uuid.UUID, difficulty string) (StartPuzzleResult, error)
	CheckClick(ctx context.Context, userID, sessionID uuid.UUID, xPercent, yPercent float64) (CheckClickResult, error)
	GetSession(ctx context.Context, userID, sessionID uuid.UUID) (SessionState, error)
	RenderOverlay(ctx context.Context, templateID uuid.UUID) ([]byte, error)
}

type spotDifferenceService struct {
	log        *logger.Logger
	cfg        config.GameConfig
	selector   TemplateSelector
	templates  repos.PuzzleTemplateRepo
	sessions   repos.GameSessionRepo
	clicks     domainagg.SpotDiffSessionAggregate
	cache      rediscache.LeaderboardCache
	metrics    *observability.Metrics
	httpClient *http.Client
	now        func() time.Time
}

func NewSpotDifferenceService(
	log *logger.Logger,
	cfg config.GameConfig,
	selector TemplateSelector,
	templates repos.PuzzleTemplateRepo,
	sessions repos.GameSessionRepo,
	clicks domainagg.SpotDiffSessionAggregate,
	cache rediscache.LeaderboardCache,
	metrics *observability.Metrics,
) SpotDifferenceService {
	if cache == nil {
		cache = rediscache.Noop{}
	}
	return &spotDifferenceService{
		log:        log.With("service", "SpotDifferenceService"),
		cfg:        cfg,
		selector:   selector,
		templates:  templates,
		sessions:   sessions,
		clicks:     clicks,
		cache:      cache,
		metrics:    metrics,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		now:        time.Now,
	}
}

func (s *spotDifferenceService) StartPuzzle(ctx context.Context, userID uuid.UUID, difficulty string) (StartPuzzleResult, error) {
	d, err := game.ParseDifficulty(difficulty)
	if err != nil {
		return StartPuzzleResult{}, err
	}
	if userID == uuid.Nil {
		return StartPuzzleResult{}, fmt.Errorf("%w: missing user", game.ErrInvalidArgument)
	}
	ctx, span := observability.StartSpan(ctx, "spotdiff.start_puzzle",
		attribute.String("spotdiff.difficulty", d.String()))
	defer span.End()

	tpl, reused, err := s.selector.Acquire(ctx, userID, d)
	if err != nil {
		span.RecordError(err)
		return StartPuzzleResult{}, err
	}

	sess := &types.GameSession{
		UserID:           userID,
		TemplateID:       tpl.ID,
		Difficulty:       tpl.Difficulty,
		Differences:      datatypes.JSONSlice[types.Difference](game.CloneDifferences(tpl.Differences)),
		TotalDifferences: tpl.TotalDifferences,
		StartedAt:        s.now().UTC(),
	}
	if err := s.sessions.Create(dbctx.New(ctx), sess); err != nil {
		return StartPuzzleResult{}, fmt.Errorf("create session: %w", err)
	}
	span.SetAttributes(attribute.String("spotdiff.session_id", sess.ID.String()), attribute.Bool("spotdiff.reused", reused))
	s.log.Debug("Started spot-the-difference session",
		"session_id", sess.ID,
		"template_id", tpl.ID,
		"difficulty", d,
		"reused", reused,
	)

	return StartPuzzleResult{
		SessionID:        sess.ID,
		TemplateID:       tpl.ID,
		Difficulty:       tpl.Difficulty,
		Scene:            tpl.Scene,
		ImageA:           tpl.ImageA,
		ImageB:           tpl.ImageB,
		TotalDifferences: tpl.TotalDifferences,
		FoundCount:       0,
		Reused:           reused,
	}, nil
}

// CheckClick retries lost compare-and-set races a bounded number of times.
// A retry re-reads the session, so a click that raced the final hit sees
// the session as completed.
func (s *spotDifferenceService) CheckClick(ctx context.Context, userID, sessionID uuid.UUID, xPercent, yPercent float64) (CheckClickResult, error) {
	if err := spotdiff.ValidateCoordinates(xPercent, yPercent); err != nil {
		return CheckClickResult{}, err
	}
	exerciseID := s.cfg.SpotDifference.ExerciseID
	policy := s.cfg.Policy(exerciseID)

	var (
		res domainagg.ResolveClickResult
		err error
	)
	for attempt := 1; attempt <= maxAggregateAttempts; attempt++ {
		res, err = s.clicks.ResolveClick(ctx, domainagg.ResolveClickInput{
			SessionID:     sessionID,
			UserID:        userID,
			XPercent:      xPercent,
			YPercent:      yPercent,
			ExerciseID:    exerciseID,
			LowerIsBetter: policy.LowerIsBetter,
			At:            s.now().UTC(),
		})
		if err == nil || !domainagg.Retryable(err) {
			break
		}
		s.metrics.IncAggregateRetry(domainagg.SpotDiffSessionAggregateContract.Name)
	}
	if err != nil {
		if domainagg.Retryable(err) {
			s.metrics.IncClick("conflict")
			s.log.Warn("Click not registered after retries", "session_id", sessionID, "error", err)
		}
		return CheckClickResult{}, gameError(err)
	}

	out := CheckClickResult{
		Hit:              res.Hit,
		FoundCount:       res.FoundCount,
		TotalDifferences: res.TotalDifferences,
		Completed:        res.Completed,
		Zone:             res.Zone,
	}
	if !res.Hit {
		s.metrics.IncClick("miss")
		return out, nil
	}
	s.metrics.IncClick("hit")
	if res.Completed {
		elapsed := res.ElapsedSeconds
		out.ElapsedSeconds = &elapsed
		if res.Progress != nil {
			summary := summaryFromSnapshot(*res.Progress)
			out.Progress = &summary
		}
		s.metrics.IncCompletion(res.Difficulty)
		s.metrics.IncResult(exerciseID)
		invalidateLeaderboard(ctx, s.log, s.cache, exerciseID)
		s.log.Info("Spot-the-difference session completed",
			"session_id", sessionID,
			"elapsed_seconds", elapsed,
		)
	}
	return out, nil
}

func (s *spotDifferenceService) GetSession(ctx context.Context, userID, sessionID uuid.UUID) (SessionState, error) {
	sess, err := s.sessions.GetByID(dbctx.New(ctx), sessionID)
	if err != nil {
		return SessionState{}, fmt.Errorf("load session: %w", err)
	}
	if sess == nil || sess.UserID != userID {
		return SessionState{}, fmt.Errorf("%w: session %s", game.ErrNotFound, sessionID)
	}
	return SessionState{
		SessionID:        sess.ID,
		TemplateID:       sess.TemplateID,
		Difficulty:       sess.Difficulty,
		FoundAreas:       sess.FoundAreas(),
		FoundCount:       sess.FoundCount,
		TotalDifferences: sess.TotalDifferences,
		Completed:        sess.Completed,
		ElapsedSeconds:   sess.ElapsedSeconds(s.now().UTC()),
		StartedAt:        sess.StartedAt,
		EndedAt:          sess.EndedAt,
	}, nil
}

// RenderOverlay draws the template's difference zones over its original image.
func (s *spotDifferenceService) RenderOverlay(ctx context.Context, templateID uuid.UUID) ([]byte, error) {
	tpl, err := s.templates.GetByID(dbctx.New(ctx), templateID)
	if err != nil {
		return nil, fmt.Errorf("load template: %w", err)
	}
	if tpl == nil {
		return nil, fmt.Errorf("%w: template %s", game.ErrNotFound, templateID)
	}
	base, err := s.loadImage(ctx, tpl.ImageA)
	if err != nil {
		return nil, fmt.Errorf("load template image: %w", err)
	}
	return spotdiff.RenderOverlay(base, tpl.Differences)
}

func (s *spotDifferenceService) loadImage(ctx context.Context, ref string) ([]byte, error) {
	if strings.HasPrefix(ref, "data:") {
		comma := strings.Index(ref, ",")
		if comma < 0 || !strings.Contains(ref[:comma], ";base64") {
			return nil, fmt.Errorf("unsupported data url")
		}
		return base64.StdEncoding.DecodeString(ref[comma+1:])
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch image: status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 32<<20))
}
