package cache

import "time"

// DiskConfig represents the on-disk store configuration
type DiskConfig struct {
	Dir string `yaml:"dir" json:"dir"`
	// MaxAge bounds how old a replayed entry may be. Zero means entries
	// remain valid indefinitely until explicitly cleared.
	MaxAge        time.Duration `yaml:"max_age" json:"max_age"`
	PruneInterval time.Duration `yaml:"prune_interval" json:"prune_interval"`
}

func (c *DiskConfig) ApplyDefaults() {
	if c.PruneInterval == 0 {
		c.PruneInterval = 15 * time.Minute
	}
}

// MemoryConfig represents the in-memory (explicitly ephemeral) store
// configuration
type MemoryConfig struct {
	Enabled      bool `yaml:"enabled" json:"enabled"`
	SizeMB       int  `yaml:"size_mb" json:"size_mb"`
	MaxEntrySize int  `yaml:"max_entry_size" json:"max_entry_size"`
	Shards       int  `yaml:"shards" json:"shards"` // must be power of 2
}

func (c *MemoryConfig) ApplyDefaults() {
	if c.SizeMB == 0 {
		c.SizeMB = 100
	}
	if c.MaxEntrySize == 0 {
		c.MaxEntrySize = 1048576
	}
	if c.Shards == 0 {
		c.Shards = 256 // power of 2
	}
}

// RedisConfig represents the Redis-backed store configuration
type RedisConfig struct {
	URL        string           `yaml:"url" json:"url"`
	Connection ConnectionConfig `yaml:"connection" json:"connection"`
	Keepalive  KeepaliveConfig  `yaml:"keepalive" json:"keepalive"`
	// TTL applied to stored entries. Zero means no expiry, matching the
	// replay-forever default of the other backends.
	TTL time.Duration `yaml:"ttl" json:"ttl"`
}

func (c *RedisConfig) ApplyDefaults() {
	if c.Connection.ConnectTimeout == 0 {
		c.Connection.ConnectTimeout = 1000 * time.Millisecond
	}
	if c.Connection.SendTimeout == 0 {
		c.Connection.SendTimeout = 1000 * time.Millisecond
	}
	if c.Connection.ReadTimeout == 0 {
		c.Connection.ReadTimeout = 1000 * time.Millisecond
	}

	if c.Keepalive.PoolSize == 0 {
		c.Keepalive.PoolSize = 10
	}
	if c.Keepalive.MaxIdleTimeout == 0 {
		c.Keepalive.MaxIdleTimeout = 10000 * time.Millisecond
	}
}

type ConnectionConfig struct {
	ConnectTimeout time.Duration `yaml:"connect_timeout" json:"connect_timeout"`
	SendTimeout    time.Duration `yaml:"send_timeout" json:"send_timeout"`
	ReadTimeout    time.Duration `yaml:"read_timeout" json:"read_timeout"`
}

// KeepaliveConfig represents connection pool settings
type KeepaliveConfig struct {
	PoolSize       int           `yaml:"pool_size" json:"pool_size"` // max connections in pool
	MaxIdleTimeout time.Duration `yaml:"max_idle_timeout" json:"max_idle_timeout"`
}

// MultiConfig configures the tiered store composition
type MultiConfig struct {
	EnablePropagation bool `yaml:"enable_propagation" json:"enable_propagation"`
}
