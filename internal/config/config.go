package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	// DebugModeEnv is the environment variable for debug mode.
	DebugModeEnv = "DEBUG_MODE"

	// DBHostEnv is the environment variable for database host.
	DBHostEnv = "DB_HOST"

	// DBPortEnv is the environment variable for database port.
	DBPortEnv = "DB_PORT"

	// DBUserEnv is the environment variable for database user.
	DBUserEnv = "DB_USER"

	// DBPassEnv is the environment variable for database password.
	DBPassEnv = "DB_PASS"

	// DBNameEnv is the environment variable for database name.
	DBNameEnv = "DB_NAME"

	// MigrationsPathEnv is the environment variable for the migrations directory.
	MigrationsPathEnv = "MIGRATIONS_PATH"

	// HTTPServerPortEnv is the environment variable for HTTP server port.
	HTTPServerPortEnv = "HTTP_SERVER_PORT"

	// MetricsServerPortEnv is the environment variable for metrics server port.
	MetricsServerPortEnv = "METRICS_SERVER_PORT"

	// EnvFilePath is the environment variable for .env file path (only for local/test environment).
	EnvFilePath = "ENV_PATH"

	// DefaultEnvFilePath is the default path to the .env file.
	DefaultEnvFilePath = ".env"

	// AWSRegionEnv is the environment variable for AWS region.
	AWSRegionEnv = "AWS_REGION"

	// AWSEndpointEnv is the environment variable for AWS endpoint.
	AWSEndpointEnv = "AWS_ENDPOINT"

	// SQSQueueURLEnv is the environment variable for SQS queue URL.
	SQSQueueURLEnv = "SQS_QUEUE_URL"

	// EventsTopicEnv is the environment variable for the lifecycle events topic.
	EventsTopicEnv = "EVENTS_TOPIC"

	// ImageBucketEnv is the environment variable for the product image bucket.
	ImageBucketEnv = "PRODUCT_IMAGE_BUCKET_NAME"

	// MaxImageBytesEnv is the environment variable for the upload size cap.
	MaxImageBytesEnv = "MAX_IMAGE_BYTES"

	// InventoryBaseURLEnv is the environment variable for the inventory service base URL.
	InventoryBaseURLEnv = "INVENTORY_SERVICE_BASE_URL"

	// GenerationAPIURLEnv is the environment variable for the chat completion API base URL.
	GenerationAPIURLEnv = "OPENAI_API_URL"

	// GenerationAPIKeyEnv is the environment variable for the chat completion API key.
	GenerationAPIKeyEnv = "OPENAI_API_KEY"

	// GenerationModelEnv is the environment variable for the chat completion model.
	GenerationModelEnv = "OPENAI_MODEL"

	// GenerationTimeoutEnv bounds a single generation call.
	GenerationTimeoutEnv = "GENERATION_TIMEOUT"

	// GenerationRateEnv is the allowed number of generation calls per second.
	GenerationRateEnv = "GENERATION_RATE_PER_SEC"

	// CallTimeoutEnv bounds every store, broker, object store and inventory call.
	CallTimeoutEnv = "CALL_TIMEOUT"

	// OutboxIntervalEnv is the polling interval of the outbox worker.
	OutboxIntervalEnv = "OUTBOX_INTERVAL"
)

const (
	DefaultMigrationsPath    = "migrations"
	DefaultEventsTopic       = "products"
	DefaultImageBucket       = "product-images"
	DefaultMaxImageBytes     = 10 << 20
	DefaultInventoryBaseURL  = "http://localhost:3001"
	DefaultGenerationAPIURL  = "https://api.openai.com/v1"
	DefaultGenerationModel   = "gpt-4o-mini"
	DefaultGenerationTimeout = 30 * time.Second
	DefaultGenerationRate    = 2
	DefaultCallTimeout       = 10 * time.Second
	DefaultOutboxInterval    = 30 * time.Second
)

var (
	// ErrMissingConfig is returned when required configuration values are missing.
	ErrMissingConfig = errors.New("missing config data")
)

// Config represents the application configuration.
type Config struct {
	DebugMode     bool
	Database      DB
	HTTPServer    Server
	MetricsServer Server
	AWS           AWSConfig
	Inventory     Inventory
	Generation    Generation
	CallTimeout   time.Duration
	Outbox        Outbox
}

// AWSConfig represents AWS-specific configuration settings.
type AWSConfig struct {
	Region        string
	Endpoint      string
	SQSQueueURL   string
	EventsTopic   string
	ImageBucket   string
	MaxImageBytes int64
}

// DB represents database configuration settings.
type DB struct {
	Host           string
	User           string
	Password       string
	Name           string
	Port           string
	MigrationsPath string
}

// Server represents server configuration settings.
type Server struct {
	Port string
}

// Inventory represents the inventory lookup settings.
type Inventory struct {
	BaseURL string
}

// Generation represents the chat completion settings.
type Generation struct {
	APIURL     string
	APIKey     string
	Model      string
	Timeout    time.Duration
	RatePerSec float64
}

// Outbox represents the outbox worker settings.
type Outbox struct {
	Interval time.Duration
}

func allNonEmpty(keyValues map[string]string) error {
	for key, value := range keyValues {
		if value == "" {
			slog.Error("configuration validation failed", slog.String("key", key), slog.String("error", "value is empty"))
			return fmt.Errorf("%w for key: %s", ErrMissingConfig, key)
		}
	}
	return nil
}

func allNumbers(keyValues map[string]string) error {
	for key, value := range keyValues {
		_, err := strconv.Atoi(value)
		if err != nil {
			slog.Error("configuration validation failed", slog.String("key", key), slog.String("value", value), slog.String("error", err.Error()))
			return fmt.Errorf("invalid number for key %s: %w", key, err)
		}
	}
	return nil
}

func allPositive(keyValues map[string]float64) error {
	for key, value := range keyValues {
		if value <= 0 {
			slog.Error("configuration validation failed", slog.String("key", key), slog.Float64("value", value))
			return fmt.Errorf("value for key %s must be positive", key)
		}
	}
	return nil
}

func (c *Config) validate() error {
	// Validate database configuration
	if err := allNonEmpty(map[string]string{
		DBHostEnv: c.Database.Host,
		DBUserEnv: c.Database.User,
		DBNameEnv: c.Database.Name,
	}); err != nil {
		return fmt.Errorf("database configuration incomplete: %w", err)
	}

	// Validate server ports
	if err := allNonEmpty(map[string]string{
		HTTPServerPortEnv:    c.HTTPServer.Port,
		MetricsServerPortEnv: c.MetricsServer.Port,
	}); err != nil {
		return fmt.Errorf("server port configuration incomplete: %w", err)
	}

	// Validate port numbers
	if err := allNumbers(map[string]string{
		DBPortEnv:            c.Database.Port,
		HTTPServerPortEnv:    c.HTTPServer.Port,
		MetricsServerPortEnv: c.MetricsServer.Port,
	}); err != nil {
		return fmt.Errorf("invalid port number: %w", err)
	}

	// Validate AWS configuration
	if err := allNonEmpty(map[string]string{
		SQSQueueURLEnv: c.AWS.SQSQueueURL,
		ImageBucketEnv: c.AWS.ImageBucket,
		EventsTopicEnv: c.AWS.EventsTopic,
	}); err != nil {
		return fmt.Errorf("AWS configuration incomplete: %w", err)
	}

	if err := allPositive(map[string]float64{
		MaxImageBytesEnv:     float64(c.AWS.MaxImageBytes),
		GenerationRateEnv:    c.Generation.RatePerSec,
		GenerationTimeoutEnv: c.Generation.Timeout.Seconds(),
		CallTimeoutEnv:       c.CallTimeout.Seconds(),
		OutboxIntervalEnv:    c.Outbox.Interval.Seconds(),
	}); err != nil {
		return fmt.Errorf("invalid limits: %w", err)
	}

	return nil
}

func getEnvAsBool(name string, defaultValue bool) bool {
	if val, err := strconv.ParseBool(os.Getenv(name)); err == nil {
		return val
	}
	return defaultValue
}

func getEnv(name, defaultValue string) string {
	if val := os.Getenv(name); val != "" {
		return val
	}
	return defaultValue
}

func getEnvAsInt64(name string, defaultValue int64) int64 {
	if val, err := strconv.ParseInt(os.Getenv(name), 10, 64); err == nil {
		return val
	}
	return defaultValue
}

func getEnvAsFloat(name string, defaultValue float64) float64 {
	if val, err := strconv.ParseFloat(os.Getenv(name), 64); err == nil {
		return val
	}
	return defaultValue
}

func getEnvAsDuration(name string, defaultValue time.Duration) time.Duration {
	if val, err := time.ParseDuration(os.Getenv(name)); err == nil {
		return val
	}
	return defaultValue
}

// ApplyEnvFile loads environment variables from the specified .env files.
func ApplyEnvFile(files ...string) error {
	err := godotenv.Load(files...)
	if err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// LoadFromEnv loads configuration from environment variables and validates it.
func LoadFromEnv() (*Config, error) {
	envPath := os.Getenv(EnvFilePath)
	if envPath == "" {
		envPath = DefaultEnvFilePath
	}
	err := ApplyEnvFile(envPath)
	if err != nil {
		// just log the error, maybe all envs are set in another way
		slog.Info("failed to load from .env", slog.Any("err", err))
	}

	conf := &Config{
		DebugMode: getEnvAsBool(DebugModeEnv, false),
		Database: DB{
			Host:           os.Getenv(DBHostEnv),
			User:           os.Getenv(DBUserEnv),
			Password:       os.Getenv(DBPassEnv),
			Name:           os.Getenv(DBNameEnv),
			Port:           os.Getenv(DBPortEnv),
			MigrationsPath: getEnv(MigrationsPathEnv, DefaultMigrationsPath),
		},
		HTTPServer: Server{
			Port: os.Getenv(HTTPServerPortEnv),
		},
		MetricsServer: Server{
			Port: os.Getenv(MetricsServerPortEnv),
		},
		AWS: AWSConfig{
			Region:        os.Getenv(AWSRegionEnv),
			Endpoint:      os.Getenv(AWSEndpointEnv),
			SQSQueueURL:   os.Getenv(SQSQueueURLEnv),
			EventsTopic:   getEnv(EventsTopicEnv, DefaultEventsTopic),
			ImageBucket:   getEnv(ImageBucketEnv, DefaultImageBucket),
			MaxImageBytes: getEnvAsInt64(MaxImageBytesEnv, DefaultMaxImageBytes),
		},
		Inventory: Inventory{
			BaseURL: getEnv(InventoryBaseURLEnv, DefaultInventoryBaseURL),
		},
		Generation: Generation{
			APIURL:     getEnv(GenerationAPIURLEnv, DefaultGenerationAPIURL),
			APIKey:     os.Getenv(GenerationAPIKeyEnv),
			Model:      getEnv(GenerationModelEnv, DefaultGenerationModel),
			Timeout:    getEnvAsDuration(GenerationTimeoutEnv, DefaultGenerationTimeout),
			RatePerSec: getEnvAsFloat(GenerationRateEnv, DefaultGenerationRate),
		},
		CallTimeout: getEnvAsDuration(CallTimeoutEnv, DefaultCallTimeout),
		Outbox: Outbox{
			Interval: getEnvAsDuration(OutboxIntervalEnv, DefaultOutboxInterval),
		},
	}

	if conf.Generation.APIKey == "" {
		slog.Info("generation API key is not set, requests are sent without authorization")
	}

	if err := conf.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return conf, nil
}
