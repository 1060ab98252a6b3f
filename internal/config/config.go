package config

import (
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/shivanshukushwah/worknest-backend/pkg/logger"
)

const ConfigTagName = "env"
const ConfigDefaultTagName = "default"

var config *Config

// Config holds every environment-driven setting. Only this struct may be
// used to read configuration; no direct access to env or any other
// config source should be made elsewhere.
type Config struct {
	AppEnv   string `env:"APP_ENV" default:"dev"`
	AppName  string `env:"APP_NAME" default:"worknest"`
	AppDebug bool   `env:"APP_DEBUG" default:"1"`

	HttpListenAddr            string `env:"HTTP_LISTEN_ADDR" validation:"mustExists"`
	HttpServerReadTimeout     int    `env:"HTTP_SERVER_READ_TIMEOUT"`
	HttpServerWriteTimeout    int    `env:"HTTP_SERVER_WRITE_TIMEOUT"`
	HttpServerReadBufferSize  int    `env:"HTTP_SERVER_READ_BUFFER_SIZE"`
	HttpServerWriteBufferSize int    `env:"HTTP_SERVER_WRITE_BUFFER_SIZE"`

	PostgresReadHost     string `env:"POSTGRES_READ_HOST"`
	PostgresReadPort     string `env:"POSTGRES_READ_PORT"`
	PostgresReadUser     string `env:"POSTGRES_READ_USER"`
	PostgresReadPassword string `env:"POSTGRES_READ_PASSWORD"`
	PostgresReadDatabase string `env:"POSTGRES_READ_DBNAME"`

	PostgresWriteHost     string `env:"POSTGRES_WRITE_HOST"`
	PostgresWritePort     string `env:"POSTGRES_WRITE_PORT"`
	PostgresWriteUser     string `env:"POSTGRES_WRITE_USER"`
	PostgresWritePassword string `env:"POSTGRES_WRITE_PASSWORD"`
	PostgresWriteDatabase string `env:"POSTGRES_WRITE_DBNAME"`

	RedisAddr               string `env:"REDIS_ADDR"`
	RedisUsername           string `env:"REDIS_USER"`
	RedisPassword           string `env:"REDIS_PASS"`
	RedisDatabase           int    `env:"REDIS_DATABASE"`
	RedisUniversalKeyPrefix string `env:"REDIS_UNIVERSAL_KEY_PREFIX"`

	PromNamespace string `env:"PROM_NAMESPACE"`

	LogLevel []string `env:"LOG_LEVEL"`

	// Platform economics.
	CommissionRate float64 `env:"PLATFORM_COMMISSION_RATE" default:"0.05"`
	// Wallet credited with commissions. Zero means no platform user is
	// configured and the commission transaction is booked against the
	// employer's own wallet (employer-taxed-self).
	PlatformUserID int64 `env:"PLATFORM_USER_ID"`

	// Shortlist scheduler.
	ShortlistInterval time.Duration `env:"SHORTLIST_INTERVAL" default:"60s"`
	ShortlistBatch    int           `env:"SHORTLIST_BATCH" default:"100"`

	// Notification outbox dispatcher.
	OutboxInterval time.Duration `env:"OUTBOX_INTERVAL" default:"5s"`
	OutboxBatch    int           `env:"OUTBOX_BATCH" default:"200"`

	// Remote profile inspection (feature flag).
	EnableRemoteProfileInspection bool   `env:"ENABLE_REMOTE_PROFILE_INSPECTION"`
	GithubToken                   string `env:"GITHUB_TOKEN"`
	// When set, the on-time submission award is withheld for jobs whose
	// duration does not parse as a day count instead of being granted
	// unconditionally.
	StrictOnTimeAward bool `env:"STRICT_ON_TIME_AWARD"`

	QueueName              string        `env:"QUEUE_NAME" default:"worknest:notifications"`
	QueueConsumerGroup     string        `env:"QUEUE_CONSUMER_GROUP"`
	QueueConsumerName      string        `env:"QUEUE_CONSUMER_NAME"`
	QueueMaxRetries        int           `env:"QUEUE_MAX_RETRIES"`
	QueueVisibilityTimeout time.Duration `env:"QUEUE_VISIBILITY_TIMEOUT"`
	QueuePollInterval      time.Duration `env:"QUEUE_POLL_INTERVAL"`
	QueueBatchSize         int64         `env:"QUEUE_BATCH_SIZE"`
	QueueMaxLen            int64         `env:"QUEUE_MAX_LEN"`
	QueueEnableDLQ         bool          `env:"QUEUE_ENABLE_DLQ"`

	InspectionQueueName string `env:"INSPECTION_QUEUE_NAME" default:"worknest:inspections"`

	// Push/SMS notification providers consumed by the dispatcher.
	ProviderPrimaryUrl   string `env:"PROVIDER_PRIMARY_URL"`
	ProviderSecondaryUrl string `env:"PROVIDER_SECONDARY_URL"`
	ProviderBackupUrl    string `env:"PROVIDER_BACKUP_URL"`
}

func Load(path string) error {
	logger.Info("loading configs..", "path", path)
	c := &Config{}
	var err error
	if path != "" {
		logger.Info("trying to publish env from file", "path", path)
		err = godotenv.Load(path)
		if err != nil {
			return errors.New("failed to load configuration file " + path + " error: " + err.Error())
		}
	}

	_, err = env.UnmarshalFromEnviron(c)

	if err != nil {
		return errors.New("failed to map env variables to Configuration object " + " error: " + err.Error())
	}

	config = c
	return nil
}

func Get() *Config {
	if config == nil {
		logger.Panic("Config is not initialized")
	}
	return config
}

// Set replaces the active configuration. Intended for tests.
func Set(c *Config) {
	config = c
}
