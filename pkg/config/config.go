package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "PROPNEST"

	AppEnvDev  = "dev"
	AppEnvProd = "production"

	EnvAppEnv             = "PROPNEST_APP_ENV"
	EnvPort               = "PROPNEST_APP_PORT"
	EnvDBDSN              = "PROPNEST_DB_DSN"
	EnvDBHost             = "PROPNEST_DB_HOST"
	EnvDBUser             = "PROPNEST_DB_USER"
	EnvDBName             = "PROPNEST_DB_NAME"
	EnvRedisURL           = "PROPNEST_REDIS_URL"
	EnvJWTSecret          = "PROPNEST_JWT_SECRET"
	EnvJWTIssuer          = "PROPNEST_JWT_ISSUER"
	EnvJWTExpMins         = "PROPNEST_JWT_EXPIRATION_MINUTES"
	EnvGCPProjectID       = "PROPNEST_GCP_PROJECT_ID"
	EnvPubSubDomainTopic  = "PROPNEST_PUBSUB_DOMAIN_TOPIC"
	EnvPubSubDomainSub    = "PROPNEST_PUBSUB_DOMAIN_SUBSCRIPTION"
	EnvPubSubNotifTopic   = "PROPNEST_PUBSUB_NOTIFICATION_TOPIC"
	EnvPubSubNotifSub     = "PROPNEST_PUBSUB_NOTIFICATION_SUBSCRIPTION"
	EnvCronSweepInterval  = "PROPNEST_CRON_INTERVAL"
	EnvDashboardDueWindow = "PROPNEST_DASHBOARD_DUE_WINDOW_DAYS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Cron         CronConfig
	Dashboard    DashboardConfig
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
	Env          string `envconfig:"PROPNEST_APP_ENV" required:"true"`
	Port         string `envconfig:"PROPNEST_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"PROPNEST_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PROPNEST_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"PROPNEST_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"PROPNEST_DB_DSN"`
	Driver string `envconfig:"PROPNEST_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PROPNEST_DB_HOST"`
	LegacyPort     int    `envconfig:"PROPNEST_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PROPNEST_DB_USER"`
	LegacyPassword string `envconfig:"PROPNEST_DB_PASSWORD"`
	LegacyName     string `envconfig:"PROPNEST_DB_NAME"`
	LegacySSLMode  string `envconfig:"PROPNEST_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PROPNEST_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PROPNEST_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PROPNEST_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PROPNEST_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	TxTimeout       time.Duration `envconfig:"PROPNEST_DB_TX_TIMEOUT" default:"10s"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PROPNEST_REDIS_URL" required:"true"`
	Address      string        `envconfig:"PROPNEST_REDIS_ADDR"`
	Password     string        `envconfig:"PROPNEST_REDIS_PASSWORD"`
	DB           int           `envconfig:"PROPNEST_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PROPNEST_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PROPNEST_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PROPNEST_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PROPNEST_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PROPNEST_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"PROPNEST_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"PROPNEST_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"PROPNEST_JWT_EXPIRATION_MINUTES" required:"true"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"PROPNEST_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"PROPNEST_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"PROPNEST_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"PROPNEST_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	DomainTopic              string `envconfig:"PROPNEST_PUBSUB_DOMAIN_TOPIC" required:"true"`
	DomainSubscription       string `envconfig:"PROPNEST_PUBSUB_DOMAIN_SUBSCRIPTION" required:"true"`
	NotificationTopic        string `envconfig:"PROPNEST_PUBSUB_NOTIFICATION_TOPIC" default:"pn-notification-events"`
	NotificationSubscription string `envconfig:"PROPNEST_PUBSUB_NOTIFICATION_SUBSCRIPTION" required:"true"`
}

type OutboxConfig struct {
	BatchSize      int           `envconfig:"PROPNEST_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int           `envconfig:"PROPNEST_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int           `envconfig:"PROPNEST_OUTBOX_MAX_ATTEMPTS" default:"10"`
	Retention      time.Duration `envconfig:"PROPNEST_OUTBOX_RETENTION" default:"720h"`
}

type CronConfig struct {
	Interval     time.Duration `envconfig:"PROPNEST_CRON_INTERVAL" default:"1h"`
	LockTTL      time.Duration `envconfig:"PROPNEST_CRON_LOCK_TTL" default:"65m"`
	SweepBatch   int           `envconfig:"PROPNEST_CRON_SWEEP_BATCH" default:"500"`
	DueWindowDay int           `envconfig:"PROPNEST_CRON_DUE_WINDOW_DAYS" default:"0"`
}

type DashboardConfig struct {
	DueWindowDays     int `envconfig:"PROPNEST_DASHBOARD_DUE_WINDOW_DAYS" default:"7"`
	BounceWindowDays  int `envconfig:"PROPNEST_DASHBOARD_BOUNCE_WINDOW_DAYS" default:"7"`
	UpcomingListLimit int `envconfig:"PROPNEST_DASHBOARD_UPCOMING_LIMIT" default:"10"`
	DepositListLimit  int `envconfig:"PROPNEST_DASHBOARD_DEPOSIT_LIMIT" default:"10"`
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
