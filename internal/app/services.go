package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/brainforge-backend/internal/config"
	"github.com/yungbote/brainforge-backend/internal/data/aggregates"
	"github.com/yungbote/brainforge-backend/internal/data/repos"
	"github.com/yungbote/brainforge-backend/internal/modules/spotdiff"
	"github.com/yungbote/brainforge-backend/internal/observability"
	"github.com/yungbote/brainforge-backend/internal/platform/logger"
	"github.com/yungbote/brainforge-backend/internal/services"
)

type Services struct {
	Auth           services.AuthService
	Generator      services.PuzzleGenerator
	Selector       services.TemplateSelector
	SpotDifference services.SpotDifferenceService
	Progress       services.ProgressService
	Leaderboard    services.LeaderboardService
}

func wireServices(
	db *gorm.DB,
	log *logger.Logger,
	cfg Config,
	gameCfg config.GameConfig,
	reposet repos.Repos,
	clients Clients,
	metrics *observability.Metrics,
) Services {
	log.Info("Wiring services...")

	base := aggregates.BaseDeps{
		DB:    db,
		Log:   log,
		Hooks: aggregates.NewObservabilityHooks(metrics),
	}
	clicks := aggregates.NewSpotDiffSessionAggregate(aggregates.SpotDiffSessionAggregateDeps{
		Base:     base,
		Sessions: reposet.Sessions,
		Solved:   reposet.Solved,
		Results:  reposet.Results,
		Progress: reposet.Progress,
	})
	progressAgg := aggregates.NewProgressAggregate(aggregates.ProgressAggregateDeps{
		Base:     base,
		Results:  reposet.Results,
		Progress: reposet.Progress,
	})

	rng := spotdiff.NewTimeRand()
	planner := spotdiff.NewPlanner(gameCfg.SpotDifference, rng)
	generator := services.NewPuzzleGenerator(log, planner, clients.Images, clients.ImageStore, metrics)
	selector := services.NewTemplateSelector(log, reposet.Templates, reposet.Solved, generator, rng, cfg.GenerationTimeout, metrics)

	return Services{
		Auth:      services.NewAuthService(log, reposet.Users, cfg.JWTSecretKey),
		Generator: generator,
		Selector:  selector,
		SpotDifference: services.NewSpotDifferenceService(
			log, gameCfg, selector, reposet.Templates, reposet.Sessions, clicks, clients.Leaderboard, metrics,
		),
		Progress: services.NewProgressService(
			log, gameCfg, progressAgg, reposet.Results, reposet.Progress, clients.Leaderboard, metrics,
		),
		Leaderboard: services.NewLeaderboardService(
			log, reposet.Results, reposet.Progress, reposet.Users, clients.Leaderboard, metrics,
		),
	}
}
