package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/multierr"
)

const (
	EnvPrefix = "KERALACART"

	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

// Environment variable names shared with tests and deploy tooling.
const (
	EnvAppEnv     = "KERALACART_APP_ENV"
	EnvPort       = "KERALACART_APP_PORT"
	EnvDBDSN      = "KERALACART_DB_DSN"
	EnvDBHost     = "KERALACART_DB_HOST"
	EnvDBUser     = "KERALACART_DB_USER"
	EnvDBName     = "KERALACART_DB_NAME"
	EnvRedisURL   = "KERALACART_REDIS_URL"
	EnvJWTSecret  = "KERALACART_JWT_SECRET"
	EnvJWTIssuer  = "KERALACART_JWT_ISSUER"
	EnvJWTExpMins = "KERALACART_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Orders       OrdersConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var errs error
	if err := c.DB.ensureDSN(); err != nil {
		errs = multierr.Append(errs, err)
	}
	if c.Orders.AssemblyRetries < 1 {
		errs = multierr.Append(errs, fmt.Errorf("%s must be at least 1", "KERALACART_ORDERS_ASSEMBLY_RETRIES"))
	}
	return errs
}

type AppConfig struct {
	Env          string `envconfig:"KERALACART_APP_ENV" required:"true"`
	Port         string `envconfig:"KERALACART_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"KERALACART_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"KERALACART_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"KERALACART_DB_DSN"`
	Driver string `envconfig:"KERALACART_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"KERALACART_DB_HOST"`
	LegacyPort     int    `envconfig:"KERALACART_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"KERALACART_DB_USER"`
	LegacyPassword string `envconfig:"KERALACART_DB_PASSWORD"`
	LegacyName     string `envconfig:"KERALACART_DB_NAME"`
	LegacySSLMode  string `envconfig:"KERALACART_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"KERALACART_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"KERALACART_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"KERALACART_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"KERALACART_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"KERALACART_REDIS_URL" required:"true"`
	Address      string        `envconfig:"KERALACART_REDIS_ADDR"`
	Password     string        `envconfig:"KERALACART_REDIS_PASSWORD"`
	DB           int           `envconfig:"KERALACART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"KERALACART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"KERALACART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"KERALACART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"KERALACART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"KERALACART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"KERALACART_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"KERALACART_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"KERALACART_JWT_EXPIRATION_MINUTES" required:"true"`
}

// OrdersConfig tunes the order assembly retry behaviour.
type OrdersConfig struct {
	AssemblyRetries int `envconfig:"KERALACART_ORDERS_ASSEMBLY_RETRIES" default:"3"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"KERALACART_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   "/" + db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
