package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "production"

	EnvAppEnv   = "STOCKLANE_APP_ENV"
	EnvPort     = "STOCKLANE_APP_PORT"
	EnvDBDSN    = "STOCKLANE_DB_DSN"
	EnvRedisURL = "STOCKLANE_REDIS_URL"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Numbering    NumberingConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOCKLANE_APP_ENV" required:"true"`
	Port         string `envconfig:"STOCKLANE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"STOCKLANE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOCKLANE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"STOCKLANE_DB_DSN"`

	Host     string `envconfig:"STOCKLANE_DB_HOST"`
	Port     int    `envconfig:"STOCKLANE_DB_PORT" default:"5432"`
	User     string `envconfig:"STOCKLANE_DB_USER"`
	Password string `envconfig:"STOCKLANE_DB_PASSWORD"`
	Name     string `envconfig:"STOCKLANE_DB_NAME"`
	SSLMode  string `envconfig:"STOCKLANE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STOCKLANE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STOCKLANE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STOCKLANE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOCKLANE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return fmt.Errorf("database DSN or host/user/name settings are required")
	}
	dsn := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.Name,
	}
	query := dsn.Query()
	query.Set("sslmode", d.SSLMode)
	dsn.RawQuery = query.Encode()
	d.DSN = dsn.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"STOCKLANE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"STOCKLANE_REDIS_ADDR"`
	Password     string        `envconfig:"STOCKLANE_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOCKLANE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOCKLANE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOCKLANE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOCKLANE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOCKLANE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOCKLANE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// NumberingConfig controls human-readable document number generation.
type NumberingConfig struct {
	TransferPrefix string `envconfig:"STOCKLANE_NUMBERING_TRANSFER_PREFIX" default:"TRF"`
	PackingPrefix  string `envconfig:"STOCKLANE_NUMBERING_PACKING_PREFIX" default:"PCK"`
	SequenceWidth  int    `envconfig:"STOCKLANE_NUMBERING_SEQUENCE_WIDTH" default:"4"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"STOCKLANE_FEATURE_AUTO_MIGRATE" default:"false"`
}
