package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/yungbote/brainforge-backend/internal/platform/envutil"
)

// Logger is a key/value structured logger backed by zap.
type Logger struct {
	s      *zap.SugaredLogger
	redact bool
}

// New builds a logger for mode. "prod"/"production" writes JSON at info,
// "test"/"nop" discards everything, anything else writes the development
// console at debug. LOG_LEVEL overrides the level; LOG_REDACT=false turns
// off masking of sensitive values.
func New(mode string) (*Logger, error) {
	redact := envutil.Bool("LOG_REDACT", true)

	var cfg zap.Config
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "test", "nop":
		return &Logger{s: zap.NewNop().Sugar(), redact: redact}, nil
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	if lvl := strings.TrimSpace(os.Getenv("LOG_LEVEL")); lvl != "" {
		level, err := zap.ParseAtomicLevel(lvl)
		if err != nil {
			return nil, fmt.Errorf("LOG_LEVEL: %w", err)
		}
		cfg.Level = level
	}

	z, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{s: z.Sugar(), redact: redact}, nil
}

func (l *Logger) Debug(msg string, kv ...any) { l.s.Debugw(msg, l.fields(kv)...) }
func (l *Logger) Info(msg string, kv ...any)  { l.s.Infow(msg, l.fields(kv)...) }
func (l *Logger) Warn(msg string, kv ...any)  { l.s.Warnw(msg, l.fields(kv)...) }
func (l *Logger) Error(msg string, kv ...any) { l.s.Errorw(msg, l.fields(kv)...) }
func (l *Logger) Fatal(msg string, kv ...any) { l.s.Fatalw(msg, l.fields(kv)...) }

func (l *Logger) With(kv ...any) *Logger {
	return &Logger{s: l.s.With(l.fields(kv)...), redact: l.redact}
}

func (l *Logger) Sync() { _ = l.s.Sync() }

const redacted = "[REDACTED]"

var sensitiveKeyParts = []string{
	"token", "authorization", "password", "secret", "cookie", "api_key", "apikey", "email",
}

// fields masks the value of every sensitive key. The caller's slice is not modified.
func (l *Logger) fields(kv []any) []any {
	if !l.redact || len(kv) < 2 {
		return kv
	}
	var out []any
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok || !sensitive(key) {
			continue
		}
		if out == nil {
			out = append([]any(nil), kv...)
		}
		out[i+1] = redacted
	}
	if out == nil {
		return kv
	}
	return out
}

func sensitive(key string) bool {
	key = strings.ToLower(key)
	for _, part := range sensitiveKeyParts {
		if strings.Contains(key, part) {
			return true
		}
	}
	return false
}
