package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/brainforge-backend/internal/http/handlers"
	httpMW "github.com/yungbote/brainforge-backend/internal/http/middleware"
	"github.com/yungbote/brainforge-backend/internal/observability"
	"github.com/yungbote/brainforge-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	ServiceName    string
	CORSOrigins    []string
	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler         *httpH.HealthHandler
	SpotDifferenceHandler *httpH.SpotDifferenceHandler
	ResultsHandler        *httpH.ResultsHandler
	LeaderboardHandler    *httpH.LeaderboardHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}

	api := r.Group("/api")
	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Spot the difference
		if cfg.SpotDifferenceHandler != nil {
			protected.POST("/spot-difference/start", cfg.SpotDifferenceHandler.Start)
			protected.POST("/spot-difference/check", cfg.SpotDifferenceHandler.Check)
			protected.GET("/spot-difference/sessions/:id", cfg.SpotDifferenceHandler.GetSession)
			protected.GET("/spot-difference/templates/:id/overlay.png", cfg.SpotDifferenceHandler.Overlay)
		}

		// Results and progress
		if cfg.ResultsHandler != nil {
			protected.POST("/results", cfg.ResultsHandler.Record)
			protected.GET("/results/user", cfg.ResultsHandler.ListMine)
			protected.GET("/profile/stats", cfg.ResultsHandler.ProfileStats)
		}

		// Leaderboard
		if cfg.LeaderboardHandler != nil {
			protected.GET("/leaderboard/:exercise_id", cfg.LeaderboardHandler.Top)
		}
	}

	return r
}
