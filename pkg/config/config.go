package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "despensa"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv  = "DESPENSA_APP_ENV"
	EnvDBDSN   = "DESPENSA_DB_DSN"
	EnvDBHost  = "DESPENSA_DB_HOST"
	EnvDBUser  = "DESPENSA_DB_USER"
	EnvDBName  = "DESPENSA_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
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
	Env          string `envconfig:"DESPENSA_APP_ENV" required:"true"`
	Port         string `envconfig:"DESPENSA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"DESPENSA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"DESPENSA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"DESPENSA_DB_DSN"`
	Driver string `envconfig:"DESPENSA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"DESPENSA_DB_HOST"`
	LegacyPort     int    `envconfig:"DESPENSA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"DESPENSA_DB_USER"`
	LegacyPassword string `envconfig:"DESPENSA_DB_PASSWORD"`
	LegacyName     string `envconfig:"DESPENSA_DB_NAME"`
	LegacySSLMode  string `envconfig:"DESPENSA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"DESPENSA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DESPENSA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DESPENSA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"DESPENSA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"DESPENSA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"DESPENSA_REDIS_ADDR"`
	Password     string        `envconfig:"DESPENSA_REDIS_PASSWORD"`
	DB           int           `envconfig:"DESPENSA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"DESPENSA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DESPENSA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DESPENSA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DESPENSA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"DESPENSA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// JWTConfig describes how access tokens minted by the external identity
// provider are verified. The API never issues credentials itself.
type JWTConfig struct {
	Secret string `envconfig:"DESPENSA_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"DESPENSA_JWT_ISSUER" required:"true"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"DESPENSA_AUTO_MIGRATE" default:"false"`
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
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
