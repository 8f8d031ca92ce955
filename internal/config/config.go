package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	LogLevel string
	API      APIConfig
	Search   SearchConfig
	Export   ExportConfig
}

// APIConfig represents the Peek-a-Peak backend connection configuration
type APIConfig struct {
	BaseURL        string
	UploadsBaseURL string
	Timeout        time.Duration
	CookiePath     string
}

// SearchConfig tunes the peak search behavior
type SearchConfig struct {
	Debounce  time.Duration
	CacheTTL  time.Duration
	CacheSize int
	Limit     int
}

// ExportConfig represents the S3 archive export configuration
type ExportConfig struct {
	Endpoint     string
	Region       string
	Bucket       string
	AccessKey    string
	SecretKey    string
	UseSSL       bool
	Prefix       string
	Concurrency  int
	Resume       bool
	JournalPath  string
	SkipExisting bool
	DryRun       bool
}

// New creates a new configuration with default values
func New() *Config {
	return &Config{
		LogLevel: "info",
		API: APIConfig{
			BaseURL:        "http://localhost:8000/api",
			UploadsBaseURL: "http://localhost:8000/uploads/",
			Timeout:        30 * time.Second,
		},
		Search: SearchConfig{
			Debounce:  300 * time.Millisecond,
			CacheTTL:  5 * time.Minute,
			CacheSize: 64,
			Limit:     8,
		},
		Export: ExportConfig{
			Region:       "us-east-1",
			UseSSL:       true,
			Concurrency:  4,
			Resume:       true,
			SkipExisting: true,
		},
	}
}

// Load reads configuration from the given file (optional) and the
// PEEKCTL_* environment, layered over New() defaults.
func Load(path string) (*Config, error) {
	cfg := New()

	v := viper.New()
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("api.base_url", cfg.API.BaseURL)
	v.SetDefault("api.uploads_base_url", cfg.API.UploadsBaseURL)
	v.SetDefault("api.timeout", cfg.API.Timeout)
	v.SetDefault("api.cookie_path", cfg.API.CookiePath)
	v.SetDefault("search.debounce", cfg.Search.Debounce)
	v.SetDefault("search.cache_ttl", cfg.Search.CacheTTL)
	v.SetDefault("search.cache_size", cfg.Search.CacheSize)
	v.SetDefault("search.limit", cfg.Search.Limit)
	v.SetDefault("export.endpoint", cfg.Export.Endpoint)
	v.SetDefault("export.region", cfg.Export.Region)
	v.SetDefault("export.bucket", cfg.Export.Bucket)
	v.SetDefault("export.access_key", cfg.Export.AccessKey)
	v.SetDefault("export.secret_key", cfg.Export.SecretKey)
	v.SetDefault("export.use_ssl", cfg.Export.UseSSL)
	v.SetDefault("export.prefix", cfg.Export.Prefix)
	v.SetDefault("export.concurrency", cfg.Export.Concurrency)
	v.SetDefault("export.resume", cfg.Export.Resume)
	v.SetDefault("export.journal_path", cfg.Export.JournalPath)
	v.SetDefault("export.skip_existing", cfg.Export.SkipExisting)

	v.SetEnvPrefix("PEEKCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName(".peekctl")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	cfg.LogLevel = v.GetString("log_level")
	cfg.API.BaseURL = v.GetString("api.base_url")
	cfg.API.UploadsBaseURL = v.GetString("api.uploads_base_url")
	cfg.API.Timeout = v.GetDuration("api.timeout")
	cfg.API.CookiePath = v.GetString("api.cookie_path")
	cfg.Search.Debounce = v.GetDuration("search.debounce")
	cfg.Search.CacheTTL = v.GetDuration("search.cache_ttl")
	cfg.Search.CacheSize = v.GetInt("search.cache_size")
	cfg.Search.Limit = v.GetInt("search.limit")
	cfg.Export.Endpoint = v.GetString("export.endpoint")
	cfg.Export.Region = v.GetString("export.region")
	cfg.Export.Bucket = v.GetString("export.bucket")
	cfg.Export.AccessKey = v.GetString("export.access_key")
	cfg.Export.SecretKey = v.GetString("export.secret_key")
	cfg.Export.UseSSL = v.GetBool("export.use_ssl")
	cfg.Export.Prefix = v.GetString("export.prefix")
	cfg.Export.Concurrency = v.GetInt("export.concurrency")
	cfg.Export.Resume = v.GetBool("export.resume")
	cfg.Export.JournalPath = v.GetString("export.journal_path")
	cfg.Export.SkipExisting = v.GetBool("export.skip_existing")

	return cfg, nil
}
