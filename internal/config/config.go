package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	Port      string
	DBPath    string
	JWTSecret string

	LogLevel  string
	LogFormat string

	// Registered model names resolved through the registry
	GeoModel  string
	TempModel string
	PCAModel  string

	Hotspot   HotspotConfig
	RateLimit RateLimitConfig
}

// HotspotConfig 热点计算默认参数
type HotspotConfig struct {
	TopN         int
	SampleSize   int // 0 = 全量
	SampleSeed   int64
	ExcludeNoise bool
}

// RateLimitConfig controls the per-client API limiter
type RateLimitConfig struct {
	RPS   float64 // <= 0 disables the limiter
	Burst int
}

// Keys are also the environment variable names.
const (
	KeyPort                = "PORT"
	KeyDBPath              = "DB_PATH"
	KeyJWTSecret           = "JWT_SECRET"
	KeyLogLevel            = "LOG_LEVEL"
	KeyLogFormat           = "LOG_FORMAT"
	KeyGeoModel            = "GEO_MODEL"
	KeyTempModel           = "TEMP_MODEL"
	KeyPCAModel            = "PCA_MODEL"
	KeyHotspotTopN         = "HOTSPOT_TOP_N"
	KeyHotspotSampleSize   = "HOTSPOT_SAMPLE_SIZE"
	KeyHotspotSampleSeed   = "HOTSPOT_SAMPLE_SEED"
	KeyHotspotExcludeNoise = "HOTSPOT_EXCLUDE_NOISE"
	KeyRateLimitRPS        = "RATE_LIMIT_RPS"
	KeyRateLimitBurst      = "RATE_LIMIT_BURST"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

// SetDefaults registers the default of every key on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyPort, ":8080")
	v.SetDefault(KeyDBPath, "./data/patroliq.db")
	v.SetDefault(KeyJWTSecret, defaultJWTSecret)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyGeoModel, "geo-dbscan")
	v.SetDefault(KeyTempModel, "temporal-kmeans")
	v.SetDefault(KeyPCAModel, "crime-pca")
	v.SetDefault(KeyHotspotTopN, 10)
	v.SetDefault(KeyHotspotSampleSize, 10000)
	v.SetDefault(KeyHotspotSampleSeed, 42)
	v.SetDefault(KeyHotspotExcludeNoise, false)
	v.SetDefault(KeyRateLimitRPS, 20.0)
	v.SetDefault(KeyRateLimitBurst, 40)
}

// New returns a viper instance with defaults and environment lookup.
// Callers may bind command-line flags on it before calling FromViper.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	return v
}

// Load 加载配置
func Load() (*Config, error) {
	return FromViper(New())
}

// FromViper builds and validates a Config from v
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:      v.GetString(KeyPort),
		DBPath:    v.GetString(KeyDBPath),
		JWTSecret: v.GetString(KeyJWTSecret),
		LogLevel:  v.GetString(KeyLogLevel),
		LogFormat: v.GetString(KeyLogFormat),
		GeoModel:  v.GetString(KeyGeoModel),
		TempModel: v.GetString(KeyTempModel),
		PCAModel:  v.GetString(KeyPCAModel),
		Hotspot: HotspotConfig{
			TopN:         v.GetInt(KeyHotspotTopN),
			SampleSize:   v.GetInt(KeyHotspotSampleSize),
			SampleSeed:   v.GetInt64(KeyHotspotSampleSeed),
			ExcludeNoise: v.GetBool(KeyHotspotExcludeNoise),
		},
		RateLimit: RateLimitConfig{
			RPS:   v.GetFloat64(KeyRateLimitRPS),
			Burst: v.GetInt(KeyRateLimitBurst),
		},
	}

	if !strings.Contains(cfg.Port, ":") {
		cfg.Port = ":" + cfg.Port
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("%s must not be empty", KeyDBPath)
	}
	if c.Hotspot.TopN <= 0 {
		return fmt.Errorf("%s must be positive, got %d", KeyHotspotTopN, c.Hotspot.TopN)
	}
	if c.Hotspot.SampleSize < 0 {
		return fmt.Errorf("%s must not be negative, got %d", KeyHotspotSampleSize, c.Hotspot.SampleSize)
	}
	if c.RateLimit.RPS > 0 && c.RateLimit.Burst <= 0 {
		return fmt.Errorf("%s must be positive when rate limiting is on", KeyRateLimitBurst)
	}
	return nil
}

// UsesDefaultSecret reports whether JWT_SECRET was left at its placeholder
func (c *Config) UsesDefaultSecret() bool {
	return c.JWTSecret == defaultJWTSecret
}
