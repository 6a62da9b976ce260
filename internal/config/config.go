// Package config handles configuration loading for derivx.
// It supports YAML config files with .env and environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	API        APIConfig        `mapstructure:"api"        yaml:"api"        json:"api"`
	Data       DataConfig       `mapstructure:"data"       yaml:"data"       json:"data"`
	Pricing    PricingConfig    `mapstructure:"pricing"    yaml:"pricing"    json:"pricing"`
	Volatility VolatilityConfig `mapstructure:"volatility" yaml:"volatility" json:"volatility"`
	Logging    LoggingConfig    `mapstructure:"logging"    yaml:"logging"    json:"logging"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host              string   `mapstructure:"host"                yaml:"host"                json:"host"`
	Port              int      `mapstructure:"port"                yaml:"port"                json:"port"`
	CORSOrigins       []string `mapstructure:"cors_origins"        yaml:"cors_origins"        json:"cors_origins"`
	RequestTimeoutSec int      `mapstructure:"request_timeout_sec" yaml:"request_timeout_sec" json:"request_timeout_sec"`
}

// Addr returns host:port for the listener.
func (a APIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

// DataConfig holds OHLCV data source and cache settings.
type DataConfig struct {
	Source            string   `mapstructure:"source"             yaml:"source"             json:"source"` // "file" or "s3"
	Dir               string   `mapstructure:"dir"                yaml:"dir"                json:"dir"`
	CacheTTL          int      `mapstructure:"cache_ttl"          yaml:"cache_ttl"          json:"cache_ttl"`      // seconds, 0 = never expire
	CacheMaxCost      int64    `mapstructure:"cache_max_cost"     yaml:"cache_max_cost"     json:"cache_max_cost"` // total candles held
	Preload           []string `mapstructure:"preload"            yaml:"preload"            json:"preload"`
	ConcurrentFetches int      `mapstructure:"concurrent_fetches" yaml:"concurrent_fetches" json:"concurrent_fetches"`
	S3                S3Config `mapstructure:"s3"                 yaml:"s3"                 json:"s3"`
}

// S3Config holds settings for an S3-compatible bucket of OHLCV files.
type S3Config struct {
	Endpoint          string `mapstructure:"endpoint"            yaml:"endpoint"            json:"endpoint"`
	Region            string `mapstructure:"region"              yaml:"region"              json:"region"`
	Bucket            string `mapstructure:"bucket"              yaml:"bucket"              json:"bucket"`
	Prefix            string `mapstructure:"prefix"              yaml:"prefix"              json:"prefix"`
	AccessKey         string `mapstructure:"access_key"          yaml:"access_key"          json:"-"`
	SecretKey         string `mapstructure:"secret_key"          yaml:"secret_key"          json:"-"`
	UseSSL            bool   `mapstructure:"use_ssl"             yaml:"use_ssl"             json:"use_ssl"`
	ForcePathStyle    bool   `mapstructure:"force_path_style"    yaml:"force_path_style"    json:"force_path_style"`
	RequestsPerSecond int    `mapstructure:"requests_per_second" yaml:"requests_per_second" json:"requests_per_second"`
}

// PricingConfig holds request defaults and limits for the pricing endpoints.
type PricingConfig struct {
	DefaultNumPoints     int     `mapstructure:"default_num_points"     yaml:"default_num_points"     json:"default_num_points"`
	MaxNumPoints         int     `mapstructure:"max_num_points"         yaml:"max_num_points"         json:"max_num_points"`
	DefaultRatePct       float64 `mapstructure:"default_rate_pct"       yaml:"default_rate_pct"       json:"default_rate_pct"`
	DefaultVolatilityPct float64 `mapstructure:"default_volatility_pct" yaml:"default_volatility_pct" json:"default_volatility_pct"`
	DefaultDays          float64 `mapstructure:"default_days"           yaml:"default_days"           json:"default_days"`
}

// VolatilityConfig holds estimator defaults.
type VolatilityConfig struct {
	Period int    `mapstructure:"period" yaml:"period" json:"period"`
	Method string `mapstructure:"method" yaml:"method" json:"method"` // "historical" or "parkinson"
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"  json:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format" json:"format"` // "text" or "json"
}

// Data source kinds.
const (
	SourceFile = "file"
	SourceS3   = "s3"
)

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.derivx/config.yaml (home directory)
//  3. /etc/derivx/config.yaml (system)
//
// A .env file in the working directory is loaded first if present.
// Environment variables override config file values.
// Format: DERIVX_<SECTION>_<KEY>, e.g., DERIVX_DATA_DIR
func Load() (*Config, error) {
	loadDotEnv()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".derivx"))
	v.AddConfigPath("/etc/derivx")

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadDotEnv()

	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	return decode(v)
}

// Validate checks settings that would otherwise fail late at startup.
func (c *Config) Validate() error {
	if c.API.Port <= 0 || c.API.Port > 65535 {
		return fmt.Errorf("api.port out of range: %d", c.API.Port)
	}
	switch c.Data.Source {
	case SourceFile:
		if c.Data.Dir == "" {
			return errors.New("data.dir is required for the file source")
		}
	case SourceS3:
		if c.Data.S3.Bucket == "" || c.Data.S3.Region == "" {
			return errors.New("data.s3.bucket and data.s3.region are required for the s3 source")
		}
	default:
		return fmt.Errorf("unknown data.source %q (want %q or %q)", c.Data.Source, SourceFile, SourceS3)
	}
	if c.Data.CacheMaxCost <= 0 {
		return fmt.Errorf("data.cache_max_cost must be positive, got %d", c.Data.CacheMaxCost)
	}
	if c.Pricing.MaxNumPoints < 1 {
		return fmt.Errorf("pricing.max_num_points must be at least 1, got %d", c.Pricing.MaxNumPoints)
	}
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("DERIVX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Override sensitive values from environment
	overrideFromEnv(&cfg)

	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"*"})
	v.SetDefault("api.request_timeout_sec", 30)

	// Data defaults
	v.SetDefault("data.source", SourceFile)
	v.SetDefault("data.dir", "./data")
	v.SetDefault("data.cache_ttl", 300) // 5 minutes
	v.SetDefault("data.cache_max_cost", 5_000_000)
	v.SetDefault("data.preload", []string{})
	v.SetDefault("data.concurrent_fetches", 4)
	v.SetDefault("data.s3.region", "us-east-1")
	v.SetDefault("data.s3.use_ssl", true)
	v.SetDefault("data.s3.force_path_style", false)
	v.SetDefault("data.s3.requests_per_second", 20)

	// Pricing defaults
	v.SetDefault("pricing.default_num_points", 200)
	v.SetDefault("pricing.max_num_points", 10000)
	v.SetDefault("pricing.default_rate_pct", 5.0)
	v.SetDefault("pricing.default_volatility_pct", 20.0)
	v.SetDefault("pricing.default_days", 30.0)

	// Volatility defaults
	v.SetDefault("volatility.period", 30)
	v.SetDefault("volatility.method", "historical")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// overrideFromEnv explicitly reads sensitive keys from environment variables.
func overrideFromEnv(cfg *Config) {
	if key := os.Getenv("DERIVX_DATA_S3_ACCESS_KEY"); key != "" {
		cfg.Data.S3.AccessKey = key
	}
	if key := os.Getenv("DERIVX_DATA_S3_SECRET_KEY"); key != "" {
		cfg.Data.S3.SecretKey = key
	}
}

// loadDotEnv loads ./.env into the process environment without
// overriding variables that are already set. A missing file is fine.
func loadDotEnv() {
	_ = godotenv.Load()
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
