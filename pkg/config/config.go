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
	Identity      IdentityConfig
	Cookies       CookieConfig
	Store         StoreConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	GCP           GCPConfig
	GCS           GCSConfig
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
	Env          string   `envconfig:"RESTO_APP_ENV" required:"true"`
	Port         string   `envconfig:"RESTO_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"RESTO_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"RESTO_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"RESTO_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"RESTO_DB_DSN"`
	Driver string `envconfig:"RESTO_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"RESTO_DB_HOST"`
	LegacyPort     int    `envconfig:"RESTO_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"RESTO_DB_USER"`
	LegacyPassword string `envconfig:"RESTO_DB_PASSWORD"`
	LegacyName     string `envconfig:"RESTO_DB_NAME"`
	LegacySSLMode  string `envconfig:"RESTO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"RESTO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"RESTO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"RESTO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"RESTO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"RESTO_REDIS_URL"`
	Address      string        `envconfig:"RESTO_REDIS_ADDR"`
	Password     string        `envconfig:"RESTO_REDIS_PASSWORD"`
	DB           int           `envconfig:"RESTO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"RESTO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"RESTO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"RESTO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"RESTO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"RESTO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// IdentityConfig wires the external identity provider (GoTrue-compatible API).
type IdentityConfig struct {
	URL            string        `envconfig:"RESTO_IDENTITY_URL" required:"true"`
	AnonKey        string        `envconfig:"RESTO_IDENTITY_ANON_KEY" required:"true"`
	ServiceRoleKey string        `envconfig:"RESTO_IDENTITY_SERVICE_ROLE_KEY"`
	JWTSecret      string        `envconfig:"RESTO_IDENTITY_JWT_SECRET"`
	RequestTimeout time.Duration `envconfig:"RESTO_IDENTITY_REQUEST_TIMEOUT" default:"10s"`
}

// CookieConfig controls the session and store-selection cookies.
type CookieConfig struct {
	AccessTokenTTL  time.Duration `envconfig:"RESTO_COOKIE_ACCESS_TTL" default:"168h"`
	RefreshTokenTTL time.Duration `envconfig:"RESTO_COOKIE_REFRESH_TTL" default:"720h"`
	StoreSelectTTL  time.Duration `envconfig:"RESTO_COOKIE_STORE_SELECT_TTL" default:"168h"`
}

// StoreConfig carries tenant resolution fallbacks.
type StoreConfig struct {
	DefaultSlug string `envconfig:"RESTO_DEFAULT_STORE_SLUG" default:"main"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"RESTO_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"RESTO_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"RESTO_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"RESTO_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"RESTO_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow       time.Duration `envconfig:"RESTO_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit   int           `envconfig:"RESTO_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit      int           `envconfig:"RESTO_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RefreshWindow     time.Duration `envconfig:"RESTO_AUTH_RATE_LIMIT_REFRESH_WINDOW" default:"1m"`
	RefreshIPLimit    int           `envconfig:"RESTO_AUTH_RATE_LIMIT_REFRESH_IP_LIMIT" default:"30"`
	RefreshEmailLimit int           `envconfig:"RESTO_AUTH_RATE_LIMIT_REFRESH_EMAIL_LIMIT" default:"0"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"RESTO_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"RESTO_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"RESTO_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"RESTO_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName string `envconfig:"RESTO_GCS_BUCKET_NAME"`
}

// Enabled reports whether object storage is configured for this deployment.
func (g GCSConfig) Enabled() bool {
	return strings.TrimSpace(g.BucketName) != ""
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
