// internal/infrastructure/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Notifier kinds
const (
	NotifierGmail = "gmail"
	NotifierSMTP  = "smtp"
	NotifierNone  = "none"
)

// Config holds all configuration for the application
type Config struct {
	// App
	AppVersion string `yaml:"app_version"`

	// Server
	Port               string        `yaml:"port" validate:"required,numeric"`
	ReadTimeout        time.Duration `yaml:"read_timeout"`
	WriteTimeout       time.Duration `yaml:"write_timeout"`
	CORSAllowedOrigins []string      `yaml:"cors_allowed_origins"`

	// PostgreSQL
	DatabaseURL         string        `yaml:"database_url" validate:"required"`
	DBConnectMaxElapsed time.Duration `yaml:"db_connect_max_elapsed"`

	// MongoDB (refresh run log, optional)
	MongoURI      string `yaml:"mongo_uri"`
	MongoDB       string `yaml:"mongo_db"`
	MongoUser     string `yaml:"mongo_user"`
	MongoPassword string `yaml:"mongo_password"`

	// Provider
	RapidAPIHost    string        `yaml:"rapidapi_host" validate:"required"`
	RapidAPIKey     string        `yaml:"rapidapi_key" validate:"required"`
	ProviderBaseURL string        `yaml:"provider_base_url" validate:"omitempty,url"`
	ProviderTimeout time.Duration `yaml:"provider_timeout" validate:"gt=0"`

	// Refresh job
	RefreshRegions     []string      `yaml:"refresh_regions" validate:"required,min=1,dive,required"`
	RefreshInterval    time.Duration `yaml:"refresh_interval" validate:"gte=1s"`
	WorkerCount        int           `yaml:"worker_count" validate:"gte=1"`
	QueueSize          int           `yaml:"queue_size" validate:"gte=1"`
	LiveStatusCacheTTL time.Duration `yaml:"live_status_cache_ttl"`

	// Notification
	Notifier          string `yaml:"notifier" validate:"oneof=gmail smtp none"`
	GmailClientID     string `yaml:"gmail_client_id" validate:"required_if=Notifier gmail"`
	GmailClientSecret string `yaml:"gmail_client_secret" validate:"required_if=Notifier gmail"`
	GmailRefreshToken string `yaml:"gmail_refresh_token" validate:"required_if=Notifier gmail"`
	SMTPServer        string `yaml:"smtp_server" validate:"required_if=Notifier smtp"`
	SMTPPort          int    `yaml:"smtp_port"`
	EmailSender       string `yaml:"email_sender" validate:"required_unless=Notifier none"`
	EmailPassword     string `yaml:"email_password"`
	EmailReceiver     string `yaml:"email_receiver" validate:"required_unless=Notifier none"`
}

// ProviderURL returns the base URL of the train data provider
func (c *Config) ProviderURL() string {
	if c.ProviderBaseURL != "" {
		return strings.TrimRight(c.ProviderBaseURL, "/")
	}
	return "https://" + c.RapidAPIHost
}

// defaultConfig returns the configuration used when nothing is set
func defaultConfig() *Config {
	return &Config{
		AppVersion:          "1.0.0",
		Port:                "8080",
		ReadTimeout:         30 * time.Second,
		WriteTimeout:        30 * time.Second,
		CORSAllowedOrigins:  []string{"*"},
		DBConnectMaxElapsed: 2 * time.Minute,
		MongoDB:             "railcast",
		ProviderTimeout:     15 * time.Second,
		RefreshRegions:      []string{"goa"},
		RefreshInterval:     10 * time.Minute,
		WorkerCount:         2,
		QueueSize:           32,
		LiveStatusCacheTTL:  time.Minute,
		Notifier:            NotifierSMTP,
		SMTPPort:            587,
	}
}

// LoadConfig loads configuration from an optional YAML file and environment variables.
// Environment variables take precedence over the file.
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := defaultConfig()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, config); err != nil {
			return nil, err
		}
	}

	applyEnv(config)

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

func loadFile(path string, config *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(c *Config) {
	c.AppVersion = getEnv("APP_VERSION", c.AppVersion)
	c.Port = getEnv("PORT", c.Port)
	c.ReadTimeout = getEnvAsDuration("READ_TIMEOUT", c.ReadTimeout)
	c.WriteTimeout = getEnvAsDuration("WRITE_TIMEOUT", c.WriteTimeout)
	c.CORSAllowedOrigins = getEnvAsList("CORS_ALLOWED_ORIGINS", c.CORSAllowedOrigins)

	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.DBConnectMaxElapsed = getEnvAsDuration("DB_CONNECT_MAX_ELAPSED", c.DBConnectMaxElapsed)

	c.MongoURI = getEnv("MONGODB_DSN", c.MongoURI)
	c.MongoDB = getEnv("MONGO_DB", c.MongoDB)
	c.MongoUser = getEnv("MONGO_USER", c.MongoUser)
	c.MongoPassword = getEnv("MONGO_PASSWORD", c.MongoPassword)

	c.RapidAPIHost = getEnv("RAPIDAPI_HOST", c.RapidAPIHost)
	c.RapidAPIKey = getEnv("RAPIDAPI_KEY", c.RapidAPIKey)
	c.ProviderBaseURL = getEnv("PROVIDER_BASE_URL", c.ProviderBaseURL)
	c.ProviderTimeout = getEnvAsDuration("PROVIDER_TIMEOUT", c.ProviderTimeout)

	c.RefreshRegions = getEnvAsList("REFRESH_REGIONS", c.RefreshRegions)
	c.RefreshInterval = getEnvAsDuration("REFRESH_INTERVAL", c.RefreshInterval)
	c.WorkerCount = getEnvAsInt("WORKER_COUNT", c.WorkerCount)
	c.QueueSize = getEnvAsInt("QUEUE_SIZE", c.QueueSize)
	c.LiveStatusCacheTTL = getEnvAsDuration("LIVE_STATUS_CACHE_TTL", c.LiveStatusCacheTTL)

	c.Notifier = strings.ToLower(getEnv("NOTIFIER", c.Notifier))
	c.GmailClientID = getEnv("GMAIL_CLIENT_ID", c.GmailClientID)
	c.GmailClientSecret = getEnv("GMAIL_CLIENT_SECRET", c.GmailClientSecret)
	c.GmailRefreshToken = getEnv("GMAIL_REFRESH_TOKEN", c.GmailRefreshToken)
	c.SMTPServer = getEnv("SMTP_SERVER", c.SMTPServer)
	c.SMTPPort = getEnvAsInt("SMTP_PORT", c.SMTPPort)
	c.EmailSender = getEnv("EMAIL_SENDER", c.EmailSender)
	c.EmailPassword = getEnv("EMAIL_PASSWORD", c.EmailPassword)
	c.EmailReceiver = getEnv("EMAIL_RECEIVER", c.EmailReceiver)
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("90s", "10m") or a plain number of seconds
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(valueStr); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
