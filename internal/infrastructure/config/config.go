package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
	LogLevel    string `koanf:"log_level"`

	Server       ServerConfig       `koanf:"server"`
	LogStore     LogStoreConfig     `koanf:"log_store"`
	Notification NotificationConfig `koanf:"notification"`
	Identity     IdentityConfig     `koanf:"identity"`
	Archive      ArchiveConfig      `koanf:"archive"`
	Telemetry    TelemetryConfig    `koanf:"telemetry"`
	RateLimit    RateLimitConfig    `koanf:"rate_limit"`
}

type ServerConfig struct {
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// LogStoreConfig points at the OpenSearch-compatible log store.
type LogStoreConfig struct {
	URL            string        `koanf:"url"`
	Username       string        `koanf:"username"`
	Password       string        `koanf:"password"`
	Index          string        `koanf:"index"`
	TimestampField string        `koanf:"timestamp_field"`
	Timeout        time.Duration `koanf:"timeout"`
}

// NotificationConfig points at the notification platform API.
type NotificationConfig struct {
	BaseURL        string        `koanf:"base_url"`
	SearchPageSize int           `koanf:"search_page_size"`
	Timeout        time.Duration `koanf:"timeout"`
}

// IdentityConfig points at the deanonymization endpoints. Person and
// organization lookups are configured independently.
type IdentityConfig struct {
	EnsureRecipientURL string        `koanf:"ensure_recipient_url"`
	TaxIDLookupURL     string        `koanf:"tax_id_lookup_url"`
	OrgLookupURL       string        `koanf:"org_lookup_url"`
	EncodedIpaURL      string        `koanf:"encoded_ipa_url"`
	Timeout            time.Duration `koanf:"timeout"`
}

type ArchiveConfig struct {
	WorkDir     string `koanf:"work_dir"`
	CSVPageSize int    `koanf:"csv_page_size"`
	LogFileName string `koanf:"log_file_name"`
}

type TelemetryConfig struct {
	Enabled       bool          `koanf:"enabled"`
	OTLPEndpoint  string        `koanf:"otlp_endpoint"`
	SamplingRate  float64       `koanf:"sampling_rate"`
	ExportTimeout time.Duration `koanf:"export_timeout"`
	BatchTimeout  time.Duration `koanf:"batch_timeout"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	Burst             int     `koanf:"burst"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")

	defaults := &Config{
		Version:     "dev",
		Environment: "development",
		LogLevel:    "info",
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    5 * time.Minute,
			ShutdownTimeout: 30 * time.Second,
		},
		LogStore: LogStoreConfig{
			Index:          "pn-logs",
			TimestampField: "@timestamp",
			Timeout:        60 * time.Second,
		},
		Notification: NotificationConfig{
			SearchPageSize: 100,
			Timeout:        60 * time.Second,
		},
		Identity: IdentityConfig{
			Timeout: 30 * time.Second,
		},
		Archive: ArchiveConfig{
			WorkDir:     os.TempDir(),
			CSVPageSize: 1000,
			LogFileName: "logs.txt",
		},
		Telemetry: TelemetryConfig{
			Enabled:       false,
			OTLPEndpoint:  "localhost:4317",
			SamplingRate:  1.0,
			ExportTimeout: 30 * time.Second,
			BatchTimeout:  5 * time.Second,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 20,
			Burst:             40,
		},
	}

	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	// Environment overrides: LE_SERVER__PORT -> server.port. Double
	// underscore separates nesting so keys like log_store survive.
	if err := k.Load(env.Provider("LE_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "LE_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}
