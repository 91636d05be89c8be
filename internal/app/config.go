package app

import (
	"os"
	"strings"
	"time"

	"github.com/yungbote/brainforge-backend/internal/data/db"
	"github.com/yungbote/brainforge-backend/internal/platform/envutil"
	"github.com/yungbote/brainforge-backend/internal/platform/logger"
)

type Config struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration

	DB db.Config

	JWTSecretKey string
	CORSOrigins  []string

	ExercisesConfigPath string
	GenerationTimeout   time.Duration
	DebugOverlay        bool

	MetricsEnabled bool
	MetricsAddr    string

	ServiceName string
	Environment string
	Version     string
}

func LoadConfig(log *logger.Logger) Config {
	return Config{
		HTTPAddr:        getEnv(log, "HTTP_ADDR", ":8080"),
		ShutdownTimeout: getEnvSeconds(log, "SHUTDOWN_TIMEOUT_SECONDS", 15*time.Second),
		DB: db.Config{
			Driver:           getEnv(log, "DB_DRIVER", db.DriverPostgres),
			PostgresHost:     getEnv(log, "POSTGRES_HOST", "localhost"),
			PostgresPort:     getEnv(log, "POSTGRES_PORT", "5432"),
			PostgresUser:     getEnv(log, "POSTGRES_USER", "postgres"),
			PostgresPassword: envutil.String("POSTGRES_PASSWORD", ""),
			PostgresName:     getEnv(log, "POSTGRES_NAME", "brainforge"),
			SQLitePath:       getEnv(log, "SQLITE_PATH", "brainforge.db"),
		},
		JWTSecretKey:        getEnv(log, "JWT_SECRET_KEY", "defaultsecret"),
		CORSOrigins:         envutil.List("CORS_ORIGINS"),
		ExercisesConfigPath: envutil.String("EXERCISES_CONFIG_PATH", ""),
		GenerationTimeout:   getEnvSeconds(log, "GENERATION_TIMEOUT_SECONDS", 180*time.Second),
		DebugOverlay:        envutil.Bool("SPOTDIFF_DEBUG_OVERLAY", false),
		MetricsEnabled:      envutil.Bool("METRICS_ENABLED", false),
		MetricsAddr:         getEnv(log, "METRICS_ADDR", ":9090"),
		ServiceName:         getEnv(log, "OTEL_SERVICE_NAME", "brainforge"),
		Environment:         getEnv(log, "APP_ENV", "development"),
		Version:             envutil.String("APP_VERSION", ""),
	}
}

// getEnv reads name and logs when the default is used.
func getEnv(log *logger.Logger, name, def string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	if log != nil {
		log.Debug("Environment variable not set, using default", "key", name, "default", def)
	}
	return def
}

func getEnvSeconds(log *logger.Logger, name string, def time.Duration) time.Duration {
	if strings.TrimSpace(os.Getenv(name)) == "" && log != nil {
		log.Debug("Environment variable not set, using default", "key", name, "default", def.String())
	}
	return envutil.Seconds(name, def)
}
