package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppHost  string
	HTTPPort string
	AppEnv   string
	LogLevel string

	// SearchServiceURL: if set, reports are pushed to search-service for indexing (POST /search/index/report).
	SearchServiceURL string

	KafkaBrokers     []string
	KafkaTopicReport string

	// PushAPIURL is the Expo push endpoint used for admin/citizen notifications.
	PushAPIURL string

	FeedbackTTL time.Duration

	Notify struct {
		Workers   int
		QueueSize int
		Timeout   time.Duration
	}

	Storage struct {
		Endpoint        string
		Region          string
		AccessKeyID     string
		SecretAccessKey string
		Bucket          string
		PublicURL       string
		// AllowedBuckets may be chosen by upload callers in addition to Bucket.
		AllowedBuckets []string
	}

	OTel struct {
		Endpoint    string
		ServiceName string
	}

	DB struct {
		Host     string
		Port     string
		User     string
		Password string
		Database string
		SSLMode  string
	}
}

func Load() (*Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")

	cfg := &Config{
		AppHost:          getEnv("APP_HOST", "0.0.0.0"),
		HTTPPort:         firstEnv("APP_PORT", "HTTP_PORT", "8097"),
		AppEnv:           getEnv("APP_ENV", "development"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		SearchServiceURL: getEnv("SEARCH_SERVICE_URL", ""),
		KafkaBrokers:     ParseList(getEnv("KAFKA_BROKERS", "")),
		KafkaTopicReport: getEnv("KAFKA_TOPIC_REPORT", "fixora.reports"),
		PushAPIURL:       getEnv("PUSH_API_URL", "https://exp.host/--/api/v2/push/send"),
	}

	var err error
	if cfg.FeedbackTTL, err = getDuration("FEEDBACK_TTL", 7*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.Notify.Workers, err = getInt("NOTIFY_WORKERS", 4); err != nil {
		return nil, err
	}
	if cfg.Notify.QueueSize, err = getInt("NOTIFY_QUEUE_SIZE", 256); err != nil {
		return nil, err
	}
	if cfg.Notify.Timeout, err = getDuration("NOTIFY_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}

	cfg.Storage.Endpoint = getEnv("STORAGE_ENDPOINT", "")
	cfg.Storage.Region = getEnv("STORAGE_REGION", "us-east-1")
	cfg.Storage.AccessKeyID = getEnv("STORAGE_ACCESS_KEY_ID", "")
	cfg.Storage.SecretAccessKey = getEnv("STORAGE_SECRET_ACCESS_KEY", "")
	cfg.Storage.Bucket = getEnv("STORAGE_BUCKET", "reports")
	cfg.Storage.PublicURL = getEnv("STORAGE_PUBLIC_URL", "")
	cfg.Storage.AllowedBuckets = ParseList(getEnv("STORAGE_ALLOWED_BUCKETS", ""))

	cfg.OTel.Endpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	cfg.OTel.ServiceName = getEnv("OTEL_SERVICE_NAME", "fixora-service")

	cfg.DB.Host = getEnv("DB_HOST", "localhost")
	cfg.DB.Port = getEnv("DB_PORT", "5432")
	cfg.DB.User = getEnv("DB_USER", "postgres")
	cfg.DB.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.DB.Database = getEnv("DB_DATABASE", "fixora")
	cfg.DB.SSLMode = getEnv("DB_SSLMODE", "disable")
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DB.Host == "" || c.DB.Database == "" {
		return errors.New("config: DB_HOST and DB_DATABASE are required")
	}
	if c.AppEnv == "production" && c.DB.Password == "" {
		return errors.New("config: in production DB_PASSWORD is required")
	}
	if c.FeedbackTTL <= 0 {
		return errors.New("config: FEEDBACK_TTL must be positive")
	}
	if c.Notify.Workers <= 0 || c.Notify.QueueSize <= 0 {
		return errors.New("config: NOTIFY_WORKERS and NOTIFY_QUEUE_SIZE must be positive")
	}
	return nil
}

func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host, c.DB.Port, c.DB.User, c.DB.Password, c.DB.Database, c.DB.SSLMode)
}

func (c *Config) DatabaseURL() string {
	pass := url.QueryEscape(c.DB.Password)
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DB.User, pass, c.DB.Host, c.DB.Port, c.DB.Database, c.DB.SSLMode)
}

func (c *Config) Addr() string {
	return c.AppHost + ":" + c.HTTPPort
}

// ParseList splits "a, b,c" into a slice, dropping empty items.
func ParseList(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func firstEnv(keysAndDef ...string) string {
	if len(keysAndDef) == 0 {
		return ""
	}
	def := keysAndDef[len(keysAndDef)-1]
	for _, k := range keysAndDef[:len(keysAndDef)-1] {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return def
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}
