package app

import (
	"context"

	apphttp "github.com/yungbote/brainforge-backend/internal/http"
	httpH "github.com/yungbote/brainforge-backend/internal/http/handlers"
	httpMW "github.com/yungbote/brainforge-backend/internal/http/middleware"
	"github.com/yungbote/brainforge-backend/internal/observability"
	"github.com/yungbote/brainforge-backend/internal/platform/logger"
)

type Handlers struct {
	Health         *httpH.HealthHandler
	SpotDifference *httpH.SpotDifferenceHandler
	Results        *httpH.ResultsHandler
	Leaderboard    *httpH.LeaderboardHandler
}

func wireHandlers(cfg Config, svcs Services, ready func(context.Context) error) Handlers {
	return Handlers{
		Health:         httpH.NewHealthHandler(ready),
		SpotDifference: httpH.NewSpotDifferenceHandler(svcs.SpotDifference, cfg.DebugOverlay),
		Results:        httpH.NewResultsHandler(svcs.Progress),
		Leaderboard:    httpH.NewLeaderboardHandler(svcs.Leaderboard),
	}
}

func wireServer(log *logger.Logger, cfg Config, svcs Services, metrics *observability.Metrics, ready func(context.Context) error) *apphttp.Server {
	handlers := wireHandlers(cfg, svcs, ready)
	return apphttp.NewServer(apphttp.RouterConfig{
		Log:                   log.With("component", "http"),
		Metrics:               metrics,
		ServiceName:           cfg.ServiceName,
		CORSOrigins:           cfg.CORSOrigins,
		AuthMiddleware:        httpMW.NewAuthMiddleware(log, svcs.Auth),
		HealthHandler:         handlers.Health,
		SpotDifferenceHandler: handlers.SpotDifference,
		ResultsHandler:        handlers.Results,
		LeaderboardHandler:    handlers.Leaderboard,
	})
}
