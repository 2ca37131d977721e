package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config is the process-wide configuration, loaded once at startup
type Config struct {
	Port      string `env:"PORT" envDefault:"8080"`
	BasePath  string `env:"BASE_PATH" envDefault:"/ads-proposal-api"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile   string `env:"LOG_FILE"`
	SentryDSN string `env:"SENTRY_DSN"`
	Env       string `env:"APP_ENV" envDefault:"development"`

	Database  DatabaseConfig
	Safeguard SafeguardConfig
	Impact    ImpactConfig
	Sweep     SweepConfig
	RabbitMQ  RabbitMQConfig
	Chatwork  ChatworkConfig
	Platform  PlatformConfig
	Auth      AuthConfig
}

// DatabaseConfig holds the PostgreSQL connection parameters
type DatabaseConfig struct {
	Host     string `env:"DB_HOST"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER"`
	Password string `env:"DB_PASSWORD"`
	Name     string `env:"DB_NAME"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
}

// DSN builds the postgres connection string
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// Validate checks that the required connection fields are present
func (c DatabaseConfig) Validate() error {
	if c.Host == "" || c.Port == "" || c.User == "" || c.Password == "" || c.Name == "" {
		return fmt.Errorf("missing required database environment variables. Please check your .env file")
	}
	return nil
}

// SafeguardConfig bounds what an approval may change automatically
type SafeguardConfig struct {
	MaxChangesPerApproval int     `env:"MAX_CHANGES_PER_APPROVAL" envDefault:"10"`
	MaxBudgetChangePct    float64 `env:"MAX_BUDGET_CHANGE_PCT" envDefault:"20.0"`
	RollbackWindowHours   int     `env:"ROLLBACK_WINDOW_HOURS" envDefault:"24"`
}

// RollbackWindow returns the rollback window as a duration
func (c SafeguardConfig) RollbackWindow() time.Duration {
	return time.Duration(c.RollbackWindowHours) * time.Hour
}

// ImpactConfig controls after-snapshot collection
type ImpactConfig struct {
	AfterSnapshotMinDays int `env:"IMPACT_AFTER_MIN_DAYS" envDefault:"7"`
	CollectConcurrency   int `env:"IMPACT_COLLECT_CONCURRENCY" envDefault:"4"`
}

// SweepConfig controls the periodic sweep task
type SweepConfig struct {
	Enabled       bool          `env:"SWEEP_ENABLED" envDefault:"true"`
	Interval      time.Duration `env:"SWEEP_INTERVAL" envDefault:"24h"`
	CleanupDryRun bool          `env:"SWEEP_CLEANUP_DRY_RUN" envDefault:"false"`
}

// RabbitMQConfig holds the broker connection used for proposal events
type RabbitMQConfig struct {
	Enabled bool   `env:"RABBITMQ_ENABLED" envDefault:"false"`
	Host    string `env:"RABBITMQ_HOST" envDefault:"localhost"`
	Port    string `env:"RABBITMQ_PORT" envDefault:"5672"`
	User    string `env:"RABBITMQ_USER" envDefault:"guest"`
	Pass    string `env:"RABBITMQ_PASS" envDefault:"guest"`
	Queue   string `env:"RABBITMQ_QUEUE" envDefault:"proposal_events"`
}

// URL builds the AMQP connection URL
func (c RabbitMQConfig) URL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/", c.User, c.Pass, c.Host, c.Port)
}

// ChatworkConfig holds the Chatwork room that receives execution reports
type ChatworkConfig struct {
	APIToken string        `env:"CHATWORK_API_TOKEN"`
	RoomID   string        `env:"CHATWORK_ROOM_ID"`
	BaseURL  string        `env:"CHATWORK_BASE_URL" envDefault:"https://api.chatwork.com/v2"`
	Timeout  time.Duration `env:"CHATWORK_TIMEOUT" envDefault:"10s"`
}

// Enabled reports whether Chatwork delivery is configured
func (c ChatworkConfig) Enabled() bool {
	return c.APIToken != "" && c.RoomID != ""
}

// PlatformConfig selects and configures the mutation gateway
type PlatformConfig struct {
	Type              string        `env:"ADS_PLATFORM_TYPE" envDefault:"dryrun"`
	BaseURL           string        `env:"ADS_BRIDGE_URL"`
	APIToken          string        `env:"ADS_BRIDGE_TOKEN"`
	CustomerID        string        `env:"ADS_CUSTOMER_ID"`
	RequestsPerSecond float64       `env:"ADS_BRIDGE_RPS" envDefault:"5"`
	Timeout           time.Duration `env:"ADS_BRIDGE_TIMEOUT" envDefault:"30s"`
}

// AuthConfig holds reviewer token and orchestrator key settings
type AuthConfig struct {
	JWTSecret           string        `env:"JWT_SECRET"`
	TokenTTL            time.Duration `env:"JWT_TOKEN_TTL" envDefault:"12h"`
	OrchestratorKeyHash string        `env:"ORCHESTRATOR_API_KEY_HASH"`
}

// Load reads .env (if present) and parses the environment into a Config
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
