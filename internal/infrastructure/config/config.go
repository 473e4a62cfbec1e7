package config

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,       default=8080"`
	Env       string `env:"ENV,        default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL,  default=info"`
	LogPretty bool   `env:"LOG_PRETTY, default=false"`
	DataDir   string `env:"DATA_DIR,   default=data"`

	Bucket    BucketConfig
	Match     MatchConfig
	Pipeline  PipelineConfig
	Collector CollectorConfig
	Weather   WeatherConfig
	Backup    BackupConfig
	Postgres  PostgresConfig
	Mongo     MongoConfig
	Redis     RedisConfig
}

// BucketConfig defines the fixed temperature partition. Changing the bands
// is a configuration change, not a code change.
type BucketConfig struct {
	FloorC   float64 `env:"BUCKET_FLOOR_C,   default=0"`
	CeilingC float64 `env:"BUCKET_CEILING_C, default=40"`
	WidthC   float64 `env:"BUCKET_WIDTH_C,   default=10"`
}

type MatchConfig struct {
	// MaxTimeGap bounds how far in time a matched observation may be from
	// the shipment start. Zero disables the bound.
	MaxTimeGap time.Duration `env:"MATCH_MAX_TIME_GAP, default=0"`
	// FallbackRadiusKm enables nearest-city matching for shipments whose
	// start city has no observations. Zero disables it.
	FallbackRadiusKm float64 `env:"MATCH_FALLBACK_RADIUS_KM, default=0"`
}

type PipelineConfig struct {
	NormalizePerKm bool          `env:"PIPELINE_NORMALIZE_PER_KM, default=false"`
	LockTTL        time.Duration `env:"PIPELINE_LOCK_TTL,         default=15m"`
}

type CollectorConfig struct {
	TargetHour int    `env:"COLLECTOR_TARGET_HOUR, default=12"`
	Workers    int    `env:"COLLECTOR_WORKERS,     default=4"`
	// LagDays accounts for the archive API's publication delay: the
	// scheduled collection targets today minus LagDays.
	LagDays  int    `env:"COLLECTOR_LAG_DAYS, default=5"`
	Schedule string `env:"COLLECTOR_SCHEDULE, default=03:00"`
}

type WeatherConfig struct {
	BaseURL string        `env:"WEATHER_API_URL, default=https://archive-api.open-meteo.com/v1/archive"`
	Timeout time.Duration `env:"WEATHER_API_TIMEOUT, default=10s"`
}

type BackupConfig struct {
	URL string `env:"BACKUP_URL"`
}

type PostgresConfig struct {
	Host     string `env:"POSTGRES_HOST,     default=localhost"`
	Port     int    `env:"POSTGRES_PORT,     default=5432"`
	User     string `env:"POSTGRES_USER,     default=postgres"`
	Password string `env:"POSTGRES_PASSWORD"`
	Database string `env:"POSTGRES_DB,       default=shipments_db"`
	SSLMode  string `env:"POSTGRES_SSLMODE,  default=disable"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=fuelfacts"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from the environment. A local .env file is
// loaded first when present, mirroring the original deployment's
// config.env; missing files are fine.
func Load(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
