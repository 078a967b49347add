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
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	GCS          GCSConfig
	Stripe       StripeConfig
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
	Env          string `envconfig:"TUNEWAVE_APP_ENV" required:"true"`
	Port         string `envconfig:"TUNEWAVE_APP_PORT" required:"true"`
	BaseURL      string `envconfig:"TUNEWAVE_APP_BASE_URL" default:"http://localhost:3000"`
	LogLevel     string `envconfig:"TUNEWAVE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TUNEWAVE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"TUNEWAVE_DB_DSN"`
	Driver string `envconfig:"TUNEWAVE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"TUNEWAVE_DB_HOST"`
	LegacyPort     int    `envconfig:"TUNEWAVE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"TUNEWAVE_DB_USER"`
	LegacyPassword string `envconfig:"TUNEWAVE_DB_PASSWORD"`
	LegacyName     string `envconfig:"TUNEWAVE_DB_NAME"`
	LegacySSLMode  string `envconfig:"TUNEWAVE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TUNEWAVE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TUNEWAVE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TUNEWAVE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TUNEWAVE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TUNEWAVE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"TUNEWAVE_REDIS_ADDR"`
	Password     string        `envconfig:"TUNEWAVE_REDIS_PASSWORD"`
	DB           int           `envconfig:"TUNEWAVE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TUNEWAVE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TUNEWAVE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TUNEWAVE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TUNEWAVE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TUNEWAVE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"TUNEWAVE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"TUNEWAVE_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"TUNEWAVE_JWT_EXPIRATION_MINUTES" required:"true"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"TUNEWAVE_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"TUNEWAVE_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"TUNEWAVE_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"TUNEWAVE_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	SongBucket        string        `envconfig:"TUNEWAVE_GCS_SONG_BUCKET" default:"tunewave-songs"`
	ImageBucket       string        `envconfig:"TUNEWAVE_GCS_IMAGE_BUCKET" default:"tunewave-images"`
	UploadURLExpiry   time.Duration `envconfig:"TUNEWAVE_GCS_UPLOAD_URL_EXPIRY" default:"15m"`
	DownloadURLExpiry time.Duration `envconfig:"TUNEWAVE_GCS_DOWNLOAD_URL_EXPIRY" default:"1h"`
}

type StripeConfig struct {
	APIKey             string        `envconfig:"TUNEWAVE_STRIPE_API_KEY"`
	Secret             string        `envconfig:"TUNEWAVE_STRIPE_WEBHOOK_SECRET"`
	Env                string        `envconfig:"TUNEWAVE_STRIPE_ENV" default:"test"`
	PortalReturnPath   string        `envconfig:"TUNEWAVE_STRIPE_PORTAL_RETURN_PATH" default:"/account"`
	CheckoutSuccessURL string        `envconfig:"TUNEWAVE_STRIPE_CHECKOUT_SUCCESS_PATH" default:"/account"`
	CheckoutCancelURL  string        `envconfig:"TUNEWAVE_STRIPE_CHECKOUT_CANCEL_PATH" default:"/"`
	WebhookEventTTL    time.Duration `envconfig:"TUNEWAVE_STRIPE_WEBHOOK_EVENT_TTL" default:"720h"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
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
