package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("DB_HOST", "test-host")
	t.Setenv("DB_MAX_OPEN_CONNS", "20")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("MUNICIPALITY_ID", "campinas")
	t.Setenv("UPSTREAM_TIMEOUT", "45s")
	t.Setenv("CRITICAL_MONTHS", "1, 7")

	cfg := Load()

	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.Equal(t, "campinas", cfg.Upstream.MunicipalityID)
	assert.Equal(t, 45*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, []int{1, 7}, cfg.Pipeline.CriticalMonths)
	assert.Equal(t, 100, cfg.Pipeline.BatchSize)
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "sao-jose-do-rio-preto", cfg.Upstream.MunicipalityID)
	assert.Equal(t, "https://transparencia.tce.sp.gov.br/api/json/despesas", cfg.Upstream.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, []int{1}, cfg.Pipeline.CriticalMonths)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *AppConfig)
		wantMsg string
	}{
		{
			name:    "empty municipality",
			mutate:  func(c *AppConfig) { c.Upstream.MunicipalityID = "" },
			wantMsg: "MUNICIPALITY_ID cannot be empty",
		},
		{
			name:    "relative base url",
			mutate:  func(c *AppConfig) { c.Upstream.BaseURL = "/despesas" },
			wantMsg: "invalid UPSTREAM_BASE_URL",
		},
		{
			name:    "batch size too large",
			mutate:  func(c *AppConfig) { c.Pipeline.BatchSize = 5000 },
			wantMsg: "invalid batch size 5000",
		},
		{
			name:    "bad current period",
			mutate:  func(c *AppConfig) { c.Pipeline.CurrentPeriod = "2026/02" },
			wantMsg: "invalid CURRENT_PERIOD",
		},
		{
			name:    "critical month out of range",
			mutate:  func(c *AppConfig) { c.Pipeline.CriticalMonths = []int{13} },
			wantMsg: "invalid critical month 13",
		},
		{
			name:    "minio without credentials",
			mutate:  func(c *AppConfig) { c.MinIO.Endpoint = "localhost:9000" },
			wantMsg: "MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required",
		},
		{
			name:    "amqp wrong scheme",
			mutate:  func(c *AppConfig) { c.AMQP.URL = "http://localhost:5672" },
			wantMsg: "must be 'amqp' or 'amqps'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Load()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestParseYearMonth(t *testing.T) {
	y, m, err := ParseYearMonth("2026-02")
	require.NoError(t, err)
	assert.Equal(t, 2026, y)
	assert.Equal(t, 2, m)

	_, _, err = ParseYearMonth("02/2026")
	assert.Error(t, err)
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	os.Setenv(key, "value")
	defer os.Unsetenv(key)

	assert.Equal(t, "value", getEnv(key, "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT", "default"))
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_BOOL_VAR"

	os.Setenv(key, "true")
	assert.True(t, getEnvBool(key, false))

	os.Setenv(key, "false")
	assert.False(t, getEnvBool(key, true))

	os.Setenv(key, "invalid")
	assert.True(t, getEnvBool(key, true))

	os.Unsetenv(key)
	assert.True(t, getEnvBool(key, true))
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_INT_VAR"

	os.Setenv(key, "123")
	assert.Equal(t, 123, getEnvInt(key, 0))

	os.Setenv(key, "invalid")
	assert.Equal(t, 10, getEnvInt(key, 10))

	os.Unsetenv(key)
	assert.Equal(t, 10, getEnvInt(key, 10))
}

func TestGetEnvIntList(t *testing.T) {
	key := "TEST_INT_LIST"

	os.Setenv(key, "1,2,3")
	assert.Equal(t, []int{1, 2, 3}, getEnvIntList(key, nil))

	os.Setenv(key, "1,x")
	assert.Equal(t, []int{9}, getEnvIntList(key, []int{9}))

	os.Unsetenv(key)
	assert.Equal(t, []int{9}, getEnvIntList(key, []int{9}))
}
