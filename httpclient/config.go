package httpclient

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/status-im/fetch-common/cache"
	"github.com/status-im/fetch-common/retry"
	"github.com/status-im/fetch-common/throttle"
)

// Cache backend selectors for Config.CacheBackend
const (
	BackendDisk   = "disk"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendNone   = "none"
)

// Config is the full client configuration, loadable from YAML
type Config struct {
	// CacheBackend selects the cache store: "disk", "memory", "redis" or
	// "none". Empty behaves as "none".
	CacheBackend string             `yaml:"cache_backend" json:"cache_backend"`
	Disk         cache.DiskConfig   `yaml:"disk" json:"disk"`
	Memory       cache.MemoryConfig `yaml:"memory" json:"memory"`
	Redis        cache.RedisConfig  `yaml:"redis" json:"redis"`

	// CourtesyDelay is the minimum delay between requests to one host.
	// Defaults to throttle.DefaultDelay; set DisableThrottle to turn
	// pacing off entirely.
	CourtesyDelay   time.Duration `yaml:"courtesy_delay" json:"courtesy_delay"`
	DisableThrottle bool          `yaml:"disable_throttle" json:"disable_throttle"`

	Retry     retry.Policy     `yaml:"retry" json:"retry"`
	Transport TransportOptions `yaml:"transport" json:"transport"`

	// UserAgent is injected when a request doesn't carry one.
	UserAgent string `yaml:"user_agent" json:"user_agent"`
	// IgnoredHeaders are excluded from fingerprint computation. Nil means
	// the default set (User-Agent).
	IgnoredHeaders []string `yaml:"ignored_headers" json:"ignored_headers"`

	MaxRedirects     int  `yaml:"max_redirects" json:"max_redirects"`
	DisableRedirects bool `yaml:"disable_redirects" json:"disable_redirects"`
	// AllowErrorResponses returns responses with a non-retryable error
	// status to the caller instead of failing the request.
	AllowErrorResponses bool `yaml:"allow_error_responses" json:"allow_error_responses"`
}

func (c *Config) ApplyDefaults() {
	if c.CacheBackend == "" {
		c.CacheBackend = BackendNone
	}
	if c.CourtesyDelay == 0 && !c.DisableThrottle {
		c.CourtesyDelay = throttle.DefaultDelay
	}
	if c.DisableThrottle {
		c.CourtesyDelay = 0
	}
	if c.MaxRedirects == 0 {
		c.MaxRedirects = 10
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	c.Retry.ApplyDefaults()
	c.Transport.ApplyDefaults()
}

// Validate reports configuration errors that ApplyDefaults cannot repair
func (c *Config) Validate() error {
	switch c.CacheBackend {
	case BackendDisk:
		if c.Disk.Dir == "" {
			return fmt.Errorf("cache_backend %q requires disk.dir", c.CacheBackend)
		}
	case BackendRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("cache_backend %q requires redis.url", c.CacheBackend)
		}
	case BackendMemory, BackendNone, "":
	default:
		return fmt.Errorf("unknown cache_backend %q", c.CacheBackend)
	}
	if c.Retry.Multiplier != 0 && c.Retry.Multiplier <= 1 {
		return fmt.Errorf("retry.multiplier must be greater than 1, got %v", c.Retry.Multiplier)
	}
	return nil
}

// LoadConfig reads and validates a YAML config file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()

	return &cfg, nil
}
