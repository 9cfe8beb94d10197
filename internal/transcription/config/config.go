package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/gosidekick/goconfig"
	"github.com/joho/godotenv"
)

type Configs struct {
	ApplicationConfig ApplicationConfig
	ProviderConfig    ProviderConfig
	ServerConfig      ServerConfig
	TelemetryConfig   TelemetryConfig
}

type ApplicationConfig struct {
	LogLevel          string `cfg:"log_level" cfgDefault:"debug"`
	Environment       string `cfg:"environment" cfgDefault:"development"`
	EnableTestability bool   `cfg:"enable_testability" cfgDefault:"true"`
}

// ProviderConfig holds the speech-to-text provider settings. The API key is
// not required at startup, it is checked on the first transcription.
type ProviderConfig struct {
	OpenAIAPIKey       string `cfg:"openai_api_key"`
	OpenAIBaseURL      string `cfg:"openai_base_url" cfgDefault:"https://api.openai.com/v1"`
	TranscriptionModel string `cfg:"transcription_model" cfgDefault:"whisper-1"`
	// Seconds, 0 disables the client timeout
	ProviderTimeout int `cfg:"provider_timeout" cfgDefault:"0"`
}

// ServerConfig holds server configuration. Timeouts are in seconds.
type ServerConfig struct {
	Port               int    `cfg:"port" cfgDefault:"8000"`
	ReadTimeout        int    `cfg:"read_timeout" cfgDefault:"30"`
	WriteTimeout       int    `cfg:"write_timeout" cfgDefault:"300"`
	ShutdownTimeout    int    `cfg:"shutdown_timeout" cfgDefault:"10"`
	CORSAllowedOrigins string `cfg:"cors_allowed_origins" cfgDefault:"http://localhost:*"`
}

type TelemetryConfig struct {
	Enabled      bool   `cfg:"telemetry_enabled" cfgDefault:"true"`
	OTLPEndpoint string `cfg:"otlp_endpoint"`
	OTLPInsecure bool   `cfg:"otlp_insecure" cfgDefault:"false"`
	TraceStdout  bool   `cfg:"trace_stdout" cfgDefault:"false"`
	// Empty disables the SQLite metrics store
	MetricsDBPath        string `cfg:"metrics_db_path"`
	MetricsRetentionDays int    `cfg:"metrics_retention_days" cfgDefault:"30"`
}

// LoadConfig loads a .env file when present, then reads the configuration
// from environment variables
func LoadConfig() (*Configs, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	var (
		appCfg       ApplicationConfig
		providerCfg  ProviderConfig
		serverCfg    ServerConfig
		telemetryCfg TelemetryConfig
	)
	if err := goconfig.Parse(&appCfg); err != nil {
		return nil, fmt.Errorf("failed to parse application config: %w", err)
	}
	if err := goconfig.Parse(&providerCfg); err != nil {
		return nil, fmt.Errorf("failed to parse provider config: %w", err)
	}
	if err := goconfig.Parse(&serverCfg); err != nil {
		return nil, fmt.Errorf("failed to parse server config: %w", err)
	}
	if err := goconfig.Parse(&telemetryCfg); err != nil {
		return nil, fmt.Errorf("failed to parse telemetry config: %w", err)
	}

	return &Configs{
		ApplicationConfig: appCfg,
		ProviderConfig:    providerCfg,
		ServerConfig:      serverCfg,
		TelemetryConfig:   telemetryCfg,
	}, nil
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to debug
func (c ApplicationConfig) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}

func (c ProviderConfig) Timeout() time.Duration {
	return seconds(c.ProviderTimeout)
}

// AllowedOrigins splits CORS_ALLOWED_ORIGINS on commas, dropping blanks
func (c ServerConfig) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.CORSAllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

func (c ServerConfig) ReadTimeoutDuration() time.Duration {
	return seconds(c.ReadTimeout)
}

func (c ServerConfig) WriteTimeoutDuration() time.Duration {
	return seconds(c.WriteTimeout)
}

func (c ServerConfig) ShutdownTimeoutDuration() time.Duration {
	return seconds(c.ShutdownTimeout)
}

// MetricsRetention is how long SQLite metrics are kept, 0 keeps them forever
func (c TelemetryConfig) MetricsRetention() time.Duration {
	if c.MetricsRetentionDays <= 0 {
		return 0
	}
	return time.Duration(c.MetricsRetentionDays) * 24 * time.Hour
}

func seconds(n int) time.Duration {
	if n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second
}
