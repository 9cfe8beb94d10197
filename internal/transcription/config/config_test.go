package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terryyin/meeting-plunger/internal/transcription/config"
)

var configEnvVars = []string{
	"LOG_LEVEL", "ENVIRONMENT", "ENABLE_TESTABILITY",
	"OPENAI_API_KEY", "OPENAI_BASE_URL", "TRANSCRIPTION_MODEL", "PROVIDER_TIMEOUT",
	"PORT", "READ_TIMEOUT", "WRITE_TIMEOUT", "SHUTDOWN_TIMEOUT", "CORS_ALLOWED_ORIGINS",
	"TELEMETRY_ENABLED", "OTLP_ENDPOINT", "OTLP_INSECURE", "TRACE_STDOUT",
	"METRICS_DB_PATH", "METRICS_RETENTION_DAYS",
}

// isolateConfigEnv runs the test in an empty directory with every config
// variable unset, restoring the environment afterwards
func isolateConfigEnv(t *testing.T) string {
	dir := t.TempDir()
	t.Chdir(dir)
	for _, key := range configEnvVars {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	return dir
}

func TestLoadConfig_Defaults(t *testing.T) {
	isolateConfigEnv(t)

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.ApplicationConfig.LogLevel)
	assert.Equal(t, "development", cfg.ApplicationConfig.Environment)
	assert.True(t, cfg.ApplicationConfig.EnableTestability)

	assert.Empty(t, cfg.ProviderConfig.OpenAIAPIKey)
	assert.Equal(t, "https://api.openai.com/v1", cfg.ProviderConfig.OpenAIBaseURL)
	assert.Equal(t, "whisper-1", cfg.ProviderConfig.TranscriptionModel)
	assert.Equal(t, time.Duration(0), cfg.ProviderConfig.Timeout())

	assert.Equal(t, 8000, cfg.ServerConfig.Port)
	assert.Equal(t, 30*time.Second, cfg.ServerConfig.ReadTimeoutDuration())
	assert.Equal(t, 5*time.Minute, cfg.ServerConfig.WriteTimeoutDuration())
	assert.Equal(t, 10*time.Second, cfg.ServerConfig.ShutdownTimeoutDuration())
	assert.Equal(t, []string{"http://localhost:*"}, cfg.ServerConfig.AllowedOrigins())

	assert.True(t, cfg.TelemetryConfig.Enabled)
	assert.Empty(t, cfg.TelemetryConfig.MetricsDBPath)
	assert.Equal(t, 30*24*time.Hour, cfg.TelemetryConfig.MetricsRetention())
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-from-env")
	t.Setenv("ENABLE_TESTABILITY", "false")
	t.Setenv("PORT", "9100")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://plunger.example.com")
	t.Setenv("TELEMETRY_ENABLED", "false")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "sk-from-env", cfg.ProviderConfig.OpenAIAPIKey)
	assert.False(t, cfg.ApplicationConfig.EnableTestability)
	assert.Equal(t, 9100, cfg.ServerConfig.Port)
	assert.Equal(t, []string{"https://plunger.example.com"}, cfg.ServerConfig.AllowedOrigins())
	assert.False(t, cfg.TelemetryConfig.Enabled)
	assert.Equal(t, "whisper-1", cfg.ProviderConfig.TranscriptionModel)
}

func TestLoadConfig_DotEnvFile(t *testing.T) {
	dir := isolateConfigEnv(t)
	t.Setenv("PORT", "9200")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("TRANSCRIPTION_MODEL=whisper-large\nPORT=9300\n"), 0o600))

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "whisper-large", cfg.ProviderConfig.TranscriptionModel)
	assert.Equal(t, 9200, cfg.ServerConfig.Port, "real environment wins over .env")
}

func TestApplicationConfig_SlogLevel(t *testing.T) {
	testCases := []struct {
		level    string
		expected slog.Level
	}{
		{level: "debug", expected: slog.LevelDebug},
		{level: "INFO", expected: slog.LevelInfo},
		{level: "warn", expected: slog.LevelWarn},
		{level: "warning", expected: slog.LevelWarn},
		{level: " error ", expected: slog.LevelError},
		{level: "", expected: slog.LevelDebug},
		{level: "verbose", expected: slog.LevelDebug},
	}

	for _, tc := range testCases {
		t.Run(tc.level, func(t *testing.T) {
			cfg := config.ApplicationConfig{LogLevel: tc.level}
			assert.Equal(t, tc.expected, cfg.SlogLevel())
		})
	}
}

func TestServerConfig_AllowedOrigins(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		expected []string
	}{
		{name: "default", raw: "http://localhost:*", expected: []string{"http://localhost:*"}},
		{name: "several", raw: "http://localhost:*, https://plunger.example.com", expected: []string{"http://localhost:*", "https://plunger.example.com"}},
		{name: "blanks dropped", raw: " ,http://localhost:3000,, ", expected: []string{"http://localhost:3000"}},
		{name: "empty", raw: "", expected: nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.ServerConfig{CORSAllowedOrigins: tc.raw}
			assert.Equal(t, tc.expected, cfg.AllowedOrigins())
		})
	}
}

func TestServerConfig_Durations(t *testing.T) {
	cfg := config.ServerConfig{
		ReadTimeout:     30,
		WriteTimeout:    300,
		ShutdownTimeout: 10,
	}

	assert.Equal(t, 30*time.Second, cfg.ReadTimeoutDuration())
	assert.Equal(t, 5*time.Minute, cfg.WriteTimeoutDuration())
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeoutDuration())
}

func TestProviderConfig_Timeout(t *testing.T) {
	assert.Equal(t, time.Duration(0), config.ProviderConfig{}.Timeout(), "zero means no timeout")
	assert.Equal(t, time.Duration(0), config.ProviderConfig{ProviderTimeout: -5}.Timeout())
	assert.Equal(t, 45*time.Second, config.ProviderConfig{ProviderTimeout: 45}.Timeout())
}

func TestTelemetryConfig_MetricsRetention(t *testing.T) {
	assert.Equal(t, 30*24*time.Hour, config.TelemetryConfig{MetricsRetentionDays: 30}.MetricsRetention())
	assert.Equal(t, time.Duration(0), config.TelemetryConfig{}.MetricsRetention(), "zero keeps metrics forever")
}
