package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Calendar      CalendarConfig
	FeatureFlags  FeatureFlagsConfig
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
	Env          string `envconfig:"SALONFLOW_APP_ENV" required:"true"`
	Port         string `envconfig:"SALONFLOW_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SALONFLOW_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SALONFLOW_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SALONFLOW_DB_DSN"`
	Driver string `envconfig:"SALONFLOW_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SALONFLOW_DB_HOST"`
	LegacyPort     int    `envconfig:"SALONFLOW_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SALONFLOW_DB_USER"`
	LegacyPassword string `envconfig:"SALONFLOW_DB_PASSWORD"`
	LegacyName     string `envconfig:"SALONFLOW_DB_NAME"`
	LegacySSLMode  string `envconfig:"SALONFLOW_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SALONFLOW_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SALONFLOW_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SALONFLOW_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SALONFLOW_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SALONFLOW_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SALONFLOW_REDIS_ADDR"`
	Password     string        `envconfig:"SALONFLOW_REDIS_PASSWORD"`
	DB           int           `envconfig:"SALONFLOW_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SALONFLOW_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SALONFLOW_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SALONFLOW_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SALONFLOW_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SALONFLOW_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SALONFLOW_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SALONFLOW_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"SALONFLOW_JWT_EXPIRATION_MINUTES" required:"true"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SALONFLOW_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SALONFLOW_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SALONFLOW_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SALONFLOW_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SALONFLOW_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"SALONFLOW_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginUsernameLimit int           `envconfig:"SALONFLOW_AUTH_RATE_LIMIT_LOGIN_USERNAME_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"SALONFLOW_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

// CalendarConfig drives the paired calendar event defaults and the external
// provider endpoint used by the synchronizer.
type CalendarConfig struct {
	ProviderBaseURL      string        `envconfig:"SALONFLOW_CALENDAR_PROVIDER_BASE_URL" default:"https://www.googleapis.com/calendar/v3"`
	ProviderToken        string        `envconfig:"SALONFLOW_CALENDAR_PROVIDER_TOKEN"`
	ProviderTimeout      time.Duration `envconfig:"SALONFLOW_CALENDAR_PROVIDER_TIMEOUT" default:"10s"`
	TimeZone             string        `envconfig:"SALONFLOW_CALENDAR_TIMEZONE" default:"America/Caracas"`
	DefaultDurationHours int           `envconfig:"SALONFLOW_CALENDAR_DEFAULT_DURATION_HOURS" default:"1"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"SALONFLOW_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SALONFLOW_AUTO_MIGRATE" default:"false"`
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
