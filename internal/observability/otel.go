package observability

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/brainforge-backend/internal/platform/envutil"
	"github.com/yungbote/brainforge-backend/internal/platform/logger"
)

const (
	tracerName         = "brainforge"
	defaultSampleRatio = 0.1
	exportBatchTimeout = 5 * time.Second
)

type OtelConfig struct {
	ServiceName string
	Environment string
	Version     string
}

// exportSettings is the OTEL_* environment, read once at init.
type exportSettings struct {
	enabled  bool
	endpoint string
	insecure bool
	headers  map[string]string
	ratio    float64
}

func exportSettingsFromEnv() exportSettings {
	return exportSettings{
		enabled:  envutil.Bool("OTEL_ENABLED", false),
		endpoint: envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		insecure: envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
		headers:  parseHeaderPairs(envutil.List("OTEL_EXPORTER_OTLP_HEADERS")),
		ratio:    parseSampleRatio(envutil.String("OTEL_SAMPLER_RATIO", "")),
	}
}

var (
	tracingOnce     sync.Once
	tracingShutdown func(context.Context) error
)

// InitOTel installs the global tracer provider when OTEL_ENABLED is set.
// The returned shutdown func is nil when tracing is off.
func InitOTel(ctx context.Context, log *logger.Logger, cfg OtelConfig) func(context.Context) error {
	tracingOnce.Do(func() {
		settings := exportSettingsFromEnv()
		if !settings.enabled {
			return
		}
		tp := newTracerProvider(ctx, log, cfg, settings)
		otel.SetTracerProvider(tp)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))
		tracingShutdown = tp.Shutdown
		if log != nil {
			log.Info("Tracing enabled", "service", serviceNameOr(cfg.ServiceName), "endpoint", settings.endpoint, "ratio", settings.ratio)
		}
	})
	return tracingShutdown
}

// StartSpan starts a span on the global provider; with tracing off that
// provider is a no-op.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name, trace.WithAttributes(attrs...))
}

func newTracerProvider(ctx context.Context, log *logger.Logger, cfg OtelConfig, settings exportSettings) *sdktrace.TracerProvider {
	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceNameKey.String(serviceNameOr(cfg.ServiceName)),
		semconv.ServiceVersionKey.String(strings.TrimSpace(cfg.Version)),
		attribute.String("deployment.environment", strings.TrimSpace(cfg.Environment)),
	))
	if err != nil && log != nil {
		log.Warn("Tracing resource incomplete", "error", err)
	}
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(settings.ratio))),
		sdktrace.WithResource(res),
	}
	exporter, err := newSpanExporter(ctx, settings)
	switch {
	case err != nil:
		if log != nil {
			log.Warn("Span exporter unavailable, spans are dropped", "error", err)
		}
	case settings.endpoint == "" && log != nil:
		log.Warn("No OTLP endpoint set, spans go to stdout")
	}
	if exporter != nil {
		opts = append(opts, sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(exportBatchTimeout)))
	}
	return sdktrace.NewTracerProvider(opts...)
}

func newSpanExporter(ctx context.Context, settings exportSettings) (sdktrace.SpanExporter, error) {
	if settings.endpoint == "" {
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	}
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(settings.endpoint)}
	if settings.insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if len(settings.headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(settings.headers))
	}
	return otlptracehttp.New(ctx, opts...)
}

func serviceNameOr(name string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return tracerName
}

// parseSampleRatio clamps to [0,1]; unset or unparsable gives the default.
func parseSampleRatio(raw string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return defaultSampleRatio
	}
	return min(max(f, 0), 1)
}

// parseHeaderPairs turns "k=v" items into a map, skipping malformed ones.
func parseHeaderPairs(pairs []string) map[string]string {
	var out map[string]string
	for _, pair := range pairs {
		key, val, ok := strings.Cut(pair, "=")
		key, val = strings.TrimSpace(key), strings.TrimSpace(val)
		if !ok || key == "" || val == "" {
			continue
		}
		if out == nil {
			out = map[string]string{}
		}
		out[key] = val
	}
	return out
}
