package observability

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/yungbote/brainforge-backend/internal/platform/envutil"
	"github.com/yungbote/brainforge-backend/internal/platform/logger"
)

type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *Gauge

	generations       *CounterVec
	generationLatency *HistogramVec
	acquisitions      *CounterVec
	clicks            *CounterVec
	completions       *CounterVec
	results           *CounterVec

	aggregateOps       *CounterVec
	aggregateLatency   *HistogramVec
	aggregateConflicts *CounterVec
	aggregateRetries   *CounterVec

	leaderboardCache *CounterVec

	dbStats   *GaugeVec
	redisUp   *Gauge
	redisPing *Gauge
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	return envutil.Bool("METRICS_ENABLED", false)
}

// Init builds the process-wide registry when METRICS_ENABLED is set.
func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = New()
		if log != nil {
			log.Info("metrics enabled")
		}
	})
	return instance
}

// New builds an unregistered registry; tests use it directly.
func New() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("bf_api_requests_total", "Total API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"bf_api_request_duration_seconds",
			"API request latency in seconds by method/route/status.",
			[]string{"method", "route", "status"},
			[]float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 120},
		),
		apiInflight: NewGauge("bf_api_inflight_requests", "In-flight API requests."),

		generations: NewCounterVec("bf_puzzle_generations_total", "Puzzle generation attempts by difficulty/outcome.", []string{"difficulty", "outcome"}),
		generationLatency: NewHistogramVec(
			"bf_puzzle_generation_duration_seconds",
			"Puzzle generation latency in seconds.",
			[]string{"difficulty", "outcome"},
			[]float64{1, 5, 10, 20, 40, 60, 90, 120, 180, 300},
		),
		acquisitions: NewCounterVec("bf_template_acquisitions_total", "Template acquisitions by difficulty/path.", []string{"difficulty", "path"}),
		clicks:       NewCounterVec("bf_clicks_total", "Click resolutions by outcome.", []string{"outcome"}),
		completions:  NewCounterVec("bf_sessions_completed_total", "Completed spot-the-difference sessions.", []string{"difficulty"}),
		results:      NewCounterVec("bf_results_recorded_total", "Result records appended by exercise.", []string{"exercise"}),

		aggregateOps: NewCounterVec("bf_aggregate_operations_total", "Aggregate writes by operation/status.", []string{"operation", "status"}),
		aggregateLatency: NewHistogramVec(
			"bf_aggregate_operation_duration_seconds",
			"Aggregate write latency in seconds.",
			[]string{"operation", "status"},
			nil,
		),
		aggregateConflicts: NewCounterVec("bf_aggregate_conflicts_total", "Aggregate writes that lost a concurrency race.", []string{"operation"}),
		aggregateRetries:   NewCounterVec("bf_aggregate_retries_total", "Aggregate writes re-attempted after losing a race.", []string{"operation"}),

		leaderboardCache: NewCounterVec("bf_leaderboard_cache_total", "Leaderboard cache lookups by result.", []string{"result"}),

		dbStats:   NewGaugeVec("bf_db_pool", "database/sql pool statistics.", []string{"stat"}),
		redisUp:   NewGauge("bf_redis_up", "1 when the last Redis ping succeeded."),
		redisPing: NewGauge("bf_redis_ping_seconds", "Latency of the last Redis ping."),
	}
}

func (m *Metrics) StartServer(ctx context.Context, log *logger.Logger, addr string) {
	if m == nil {
		return
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           http.HandlerFunc(m.WriteHTTP),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = srv.Shutdown(shutdownCtx)
		cancel()
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if log != nil {
				log.Error("metrics server failed", "error", err, "addr", addr)
			}
		}
	}()
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

type promWriter interface {
	WritePrometheus(w io.Writer) error
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, c := range []promWriter{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.generations, m.generationLatency, m.acquisitions,
		m.clicks, m.completions, m.results,
		m.aggregateOps, m.aggregateLatency, m.aggregateConflicts, m.aggregateRetries,
		m.leaderboardCache,
		m.dbStats, m.redisUp, m.redisPing,
	} {
		if err := c.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	if status == "" {
		status = "0"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route, status)
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveGeneration(difficulty, outcome string, dur time.Duration) {
	if m == nil {
		return
	}
	m.generations.Inc(difficulty, outcome)
	m.generationLatency.Observe(dur.Seconds(), difficulty, outcome)
}

// IncAcquisition counts a template acquisition; path is "reused" or "generated".
func (m *Metrics) IncAcquisition(difficulty, path string) {
	if m == nil {
		return
	}
	m.acquisitions.Inc(difficulty, path)
}

func (m *Metrics) IncClick(outcome string) {
	if m == nil {
		return
	}
	m.clicks.Inc(outcome)
}

func (m *Metrics) IncCompletion(difficulty string) {
	if m == nil {
		return
	}
	m.completions.Inc(difficulty)
}

func (m *Metrics) IncResult(exercise string) {
	if m == nil {
		return
	}
	m.results.Inc(exercise)
}

func (m *Metrics) ObserveAggregateOperation(name, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.aggregateOps.Inc(name, status)
	m.aggregateLatency.Observe(dur.Seconds(), name, status)
}

func (m *Metrics) IncAggregateConflict(name string) {
	if m == nil {
		return
	}
	m.aggregateConflicts.Inc(name)
}

func (m *Metrics) IncAggregateRetry(name string) {
	if m == nil {
		return
	}
	m.aggregateRetries.Inc(name)
}

// IncLeaderboardCache counts a lookup; result is "hit", "miss" or "error".
func (m *Metrics) IncLeaderboardCache(result string) {
	if m == nil {
		return
	}
	m.leaderboardCache.Inc(result)
}
