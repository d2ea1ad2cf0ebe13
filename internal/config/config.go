package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// UpstreamConfig holds settings for the transparency API client.
type UpstreamConfig struct {
	BaseURL        string
	MunicipalityID string
	UserAgent      string
	Timeout        time.Duration
	// RequestsPerSecond bounds calls against the upstream host; Burst is the token bucket size.
	RequestsPerSecond float64
	Burst             int
	// CacheTTL keeps fetched periods around so a reconcile backfill reuses the count-check fetch.
	CacheTTL time.Duration
}

// PipelineConfig controls which periods a run covers and how records are written.
type PipelineConfig struct {
	BatchSize int
	StartYear int
	// CurrentPeriod is the run's logical "now" in YYYY-MM form. Empty means the wall clock month.
	CurrentPeriod  string
	CriticalMonths []int
}

// MinIOConfig holds object storage settings for the raw payload archive.
// The archive is disabled when Endpoint is empty.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// AMQPConfig holds broker settings for period events. Disabled when URL is empty.
type AMQPConfig struct {
	URL      string
	Exchange string
	Queue    string
}

// OpsConfig holds the operational HTTP API settings.
type OpsConfig struct {
	Addr string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	LogLevel string
	Database DatabaseConfig
	Upstream UpstreamConfig
	Pipeline PipelineConfig
	MinIO    MinIOConfig
	AMQP     AMQPConfig
	Ops      OpsConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		Upstream: UpstreamConfig{
			BaseURL:           getEnv("UPSTREAM_BASE_URL", "https://transparencia.tce.sp.gov.br/api/json/despesas"),
			MunicipalityID:    getEnv("MUNICIPALITY_ID", "sao-jose-do-rio-preto"),
			UserAgent:         getEnv("UPSTREAM_USER_AGENT", "despesas-pipeline/1.0"),
			Timeout:           getEnvDuration("UPSTREAM_TIMEOUT", 30*time.Second),
			RequestsPerSecond: getEnvFloat("UPSTREAM_RPS", 1),
			Burst:             getEnvInt("UPSTREAM_BURST", 1),
			CacheTTL:          getEnvDuration("UPSTREAM_CACHE_TTL", 5*time.Minute),
		},
		Pipeline: PipelineConfig{
			BatchSize:      getEnvInt("BATCH_SIZE", 100),
			StartYear:      getEnvInt("START_YEAR", 2024),
			CurrentPeriod:  getEnv("CURRENT_PERIOD", ""),
			CriticalMonths: getEnvIntList("CRITICAL_MONTHS", []int{1}),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", "despesas-raw"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		AMQP: AMQPConfig{
			URL:      getEnv("AMQP_URL", ""),
			Exchange: getEnv("AMQP_EXCHANGE", "despesas"),
			Queue:    getEnv("AMQP_QUEUE", "period_events"),
		},
		Ops: OpsConfig{
			Addr: getEnv("OPS_ADDR", ":8080"),
		},
	}
}

// Validate checks the configuration and returns every problem found in a single error.
func (c *AppConfig) Validate() error {
	var problems []string

	if c.Upstream.MunicipalityID == "" {
		problems = append(problems, "MUNICIPALITY_ID cannot be empty")
	}
	if u, err := url.Parse(c.Upstream.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		problems = append(problems, fmt.Sprintf("invalid UPSTREAM_BASE_URL '%s'", c.Upstream.BaseURL))
	}
	if c.Upstream.Timeout <= 0 {
		problems = append(problems, "UPSTREAM_TIMEOUT must be positive")
	}
	if c.Upstream.RequestsPerSecond <= 0 {
		problems = append(problems, "UPSTREAM_RPS must be positive")
	}

	if c.Pipeline.BatchSize < 1 || c.Pipeline.BatchSize > 1000 {
		problems = append(problems, fmt.Sprintf("invalid batch size %d: must be between 1 and 1000", c.Pipeline.BatchSize))
	}
	if c.Pipeline.StartYear < 2000 {
		problems = append(problems, fmt.Sprintf("invalid START_YEAR %d", c.Pipeline.StartYear))
	}
	if c.Pipeline.CurrentPeriod != "" {
		if _, _, err := ParseYearMonth(c.Pipeline.CurrentPeriod); err != nil {
			problems = append(problems, fmt.Sprintf("invalid CURRENT_PERIOD: %v", err))
		}
	}
	for _, m := range c.Pipeline.CriticalMonths {
		if m < 1 || m > 12 {
			problems = append(problems, fmt.Sprintf("invalid critical month %d", m))
		}
	}

	if c.MinIO.Endpoint != "" && (c.MinIO.AccessKey == "" || c.MinIO.SecretKey == "") {
		problems = append(problems, "MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required when MINIO_ENDPOINT is set")
	}

	if c.AMQP.URL != "" {
		if u, err := url.Parse(c.AMQP.URL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL: %v", err))
		} else if u.Scheme != "amqp" && u.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", u.Scheme))
		}
		if c.AMQP.Exchange == "" {
			problems = append(problems, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// ParseYearMonth parses a "YYYY-MM" string.
func ParseYearMonth(s string) (int, int, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return 0, 0, fmt.Errorf("expected YYYY-MM, got %q", s)
	}
	return t.Year(), int(t.Month()), nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}

// getEnvIntList reads a comma separated list of integers; any bad entry falls back to def.
func getEnvIntList(key string, def []int) []int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []int
	for _, part := range strings.Split(v, ",") {
		i, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return def
		}
		out = append(out, i)
	}
	return out
}
