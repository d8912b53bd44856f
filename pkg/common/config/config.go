package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Fe2Far/fiap-challenge4/pkg/common/logger"
	"gopkg.in/yaml.v3"
)

const configPathEnv = "DSS_CONFIG"

type Config struct {
	// Server
	ServerPort      string        `yaml:"server_port"`
	ServerHost      string        `yaml:"server_host"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxRequestBody  int64         `yaml:"max_request_body"`
	RateLimitRPS    int           `yaml:"rate_limit_rps"`
	RateLimitBurst  int           `yaml:"rate_limit_burst"`

	// Artifacts
	PipelinePath     string `yaml:"pipeline_path"`
	LabelEncoderPath string `yaml:"label_encoder_path"`
	DatasetPath      string `yaml:"dataset_path"`
	ONNXLibraryPath  string `yaml:"onnx_library_path"`

	// UI
	DefaultLanguage string        `yaml:"default_language"`
	SessionBackend  string        `yaml:"session_backend"`
	SessionTTL      time.Duration `yaml:"session_ttl"`
	CookieSecure    bool          `yaml:"cookie_secure"`

	// Redis
	RedisHost     string `yaml:"redis_host"`
	RedisPort     string `yaml:"redis_port"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	// Database
	AuditEnabled     bool   `yaml:"audit_enabled"`
	PostgresHost     string `yaml:"postgres_host"`
	PostgresPort     string `yaml:"postgres_port"`
	PostgresUser     string `yaml:"postgres_user"`
	PostgresPassword string `yaml:"postgres_password"`
	PostgresDB       string `yaml:"postgres_db"`
	PostgresSSLMode  string `yaml:"postgres_sslmode"`

	// Kafka
	EventsEnabled bool     `yaml:"events_enabled"`
	KafkaBrokers  []string `yaml:"kafka_brokers"`
	EventsTopic   string   `yaml:"events_topic"`

	// Observability
	LogLevel    string `yaml:"log_level"`
	SentryDSN   string `yaml:"sentry_dsn"`
	Environment string `yaml:"environment"`
}

// Load builds the configuration from defaults, an optional YAML file named by
// DSS_CONFIG and finally environment variables, in that order of precedence.
func Load() *Config {
	cfg := defaults()

	if path := os.Getenv(configPathEnv); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			logger.Log.WithError(err).WithField("path", path).Warn("config file ignored, using defaults")
		}
	}

	cfg.applyEnv()
	return cfg
}

func defaults() *Config {
	return &Config{
		ServerPort:      "8501",
		ServerHost:      "0.0.0.0",
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    30 * time.Second,
		ShutdownTimeout: 30 * time.Second,
		MaxRequestBody:  1 << 20,
		RateLimitRPS:    20,
		RateLimitBurst:  40,

		PipelinePath:     "artifacts/pipeline_obesidade.json",
		LabelEncoderPath: "artifacts/label_encoder.json",
		DatasetPath:      "data/Obesity.csv",

		DefaultLanguage: "pt-BR",
		SessionBackend:  "memory",
		SessionTTL:      12 * time.Hour,

		RedisHost: "localhost",
		RedisPort: "6379",

		PostgresHost:    "localhost",
		PostgresPort:    "5432",
		PostgresUser:    "dss",
		PostgresDB:      "dss",
		PostgresSSLMode: "disable",

		KafkaBrokers: []string{"localhost:9092"},
		EventsTopic:  "diagnosis-events",

		LogLevel:    "info",
		Environment: "development",
	}
}

func (c *Config) mergeFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(raw, c)
}

func (c *Config) applyEnv() {
	c.ServerPort = getEnv("SERVER_PORT", c.ServerPort)
	c.ServerHost = getEnv("SERVER_HOST", c.ServerHost)
	c.ReadTimeout = getDuration("READ_TIMEOUT", c.ReadTimeout)
	c.WriteTimeout = getDuration("WRITE_TIMEOUT", c.WriteTimeout)
	c.ShutdownTimeout = getDuration("SHUTDOWN_TIMEOUT", c.ShutdownTimeout)
	c.MaxRequestBody = int64(getIntEnv("MAX_REQUEST_BODY_BYTES", int(c.MaxRequestBody)))
	c.RateLimitRPS = getIntEnv("RATE_LIMIT_RPS", c.RateLimitRPS)
	c.RateLimitBurst = getIntEnv("RATE_LIMIT_BURST", c.RateLimitBurst)

	c.PipelinePath = getEnv("PIPELINE_PATH", c.PipelinePath)
	c.LabelEncoderPath = getEnv("LABEL_ENCODER_PATH", c.LabelEncoderPath)
	c.DatasetPath = getEnv("DATASET_PATH", c.DatasetPath)
	c.ONNXLibraryPath = getEnv("ONNX_LIBRARY_PATH", c.ONNXLibraryPath)

	c.DefaultLanguage = getEnv("DEFAULT_LANGUAGE", c.DefaultLanguage)
	c.SessionBackend = strings.ToLower(getEnv("SESSION_BACKEND", c.SessionBackend))
	c.SessionTTL = getDuration("SESSION_TTL", c.SessionTTL)
	c.CookieSecure = getBoolEnv("COOKIE_SECURE", c.CookieSecure)

	c.RedisHost = getEnv("REDIS_HOST", c.RedisHost)
	c.RedisPort = getEnv("REDIS_PORT", c.RedisPort)
	c.RedisPassword = getEnv("REDIS_PASSWORD", c.RedisPassword)
	c.RedisDB = getIntEnv("REDIS_DB", c.RedisDB)

	c.AuditEnabled = getBoolEnv("AUDIT_ENABLED", c.AuditEnabled)
	c.PostgresHost = getEnv("POSTGRES_HOST", c.PostgresHost)
	c.PostgresPort = getEnv("POSTGRES_PORT", c.PostgresPort)
	c.PostgresUser = getEnv("POSTGRES_USER", c.PostgresUser)
	c.PostgresPassword = getEnv("POSTGRES_PASSWORD", c.PostgresPassword)
	c.PostgresDB = getEnv("POSTGRES_DB", c.PostgresDB)
	c.PostgresSSLMode = getEnv("POSTGRES_SSLMODE", c.PostgresSSLMode)

	c.EventsEnabled = getBoolEnv("EVENTS_ENABLED", c.EventsEnabled)
	c.KafkaBrokers = getStringSliceEnv("KAFKA_BROKERS", c.KafkaBrokers)
	c.EventsTopic = getEnv("EVENTS_TOPIC", c.EventsTopic)

	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.SentryDSN = getEnv("SENTRY_DSN", c.SentryDSN)
	c.Environment = getEnv("ENVIRONMENT", c.Environment)
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getStringSliceEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
