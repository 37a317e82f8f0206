package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Points       PointsConfig
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
	Env          string `envconfig:"ECOPOINTS_APP_ENV" required:"true"`
	Port         string `envconfig:"ECOPOINTS_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"ECOPOINTS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ECOPOINTS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"ECOPOINTS_DB_DSN"`

	Host     string `envconfig:"ECOPOINTS_DB_HOST"`
	Port     int    `envconfig:"ECOPOINTS_DB_PORT" default:"5432"`
	User     string `envconfig:"ECOPOINTS_DB_USER"`
	Password string `envconfig:"ECOPOINTS_DB_PASSWORD"`
	Name     string `envconfig:"ECOPOINTS_DB_NAME"`
	SSLMode  string `envconfig:"ECOPOINTS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ECOPOINTS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ECOPOINTS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ECOPOINTS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ECOPOINTS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ECOPOINTS_REDIS_URL"`
	Address      string        `envconfig:"ECOPOINTS_REDIS_ADDR"`
	Password     string        `envconfig:"ECOPOINTS_REDIS_PASSWORD"`
	DB           int           `envconfig:"ECOPOINTS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ECOPOINTS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ECOPOINTS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ECOPOINTS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ECOPOINTS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ECOPOINTS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"ECOPOINTS_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"ECOPOINTS_JWT_ISSUER" default:"ecopoints"`
	ExpirationMinutes int    `envconfig:"ECOPOINTS_JWT_EXPIRATION_MINUTES" default:"480"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"ECOPOINTS_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"ECOPOINTS_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"ECOPOINTS_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"ECOPOINTS_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"ECOPOINTS_ARGON_KEY_LEN" default:"32"`
}

type PointsConfig struct {
	// RankingPointsPerKg is the illustrative conversion factor shown on
	// leaderboards. It is a display estimate, not a ledger rule.
	RankingPointsPerKg int           `envconfig:"ECOPOINTS_RANKING_POINTS_PER_KG" default:"10"`
	ExchangeIdemTTL    time.Duration `envconfig:"ECOPOINTS_EXCHANGE_IDEMPOTENCY_TTL" default:"168h"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"ECOPOINTS_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range requiredDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
