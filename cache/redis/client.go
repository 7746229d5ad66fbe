package redis

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/go-redis/redis/v8"

	"github.com/status-im/fetch-common/cache"
	"github.com/status-im/fetch-common/logging"
)

// NewClient dials a Redis server described by a redis:// URL and verifies
// the connection with a ping before returning.
func NewClient(cfg *cache.RedisConfig, logger logging.Logger) (Client, error) {
	cfg.ApplyDefaults()
	if logger == nil {
		logger = logging.Noop{}
	}

	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	host := parsedURL.Hostname()
	port := parsedURL.Port()
	if port == "" {
		port = "6379"
	}

	redisOpts := &redis.Options{
		Addr:         fmt.Sprintf("%s:%s", host, port),
		DialTimeout:  cfg.Connection.ConnectTimeout,
		ReadTimeout:  cfg.Connection.ReadTimeout,
		WriteTimeout: cfg.Connection.SendTimeout,
		PoolSize:     cfg.Keepalive.PoolSize,
		IdleTimeout:  cfg.Keepalive.MaxIdleTimeout,
	}

	if parsedURL.User != nil {
		if password, ok := parsedURL.User.Password(); ok {
			redisOpts.Password = password
		}
	}

	if len(parsedURL.Path) > 1 {
		if db, err := strconv.Atoi(parsedURL.Path[1:]); err == nil {
			redisOpts.DB = db
		}
	}

	client := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Connection.ConnectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", redisOpts.Addr, err)
	}

	logger.Info("Connected to Redis",
		"address", redisOpts.Addr,
		"connect_timeout", cfg.Connection.ConnectTimeout,
		"pool_size", cfg.Keepalive.PoolSize)

	return client, nil
}
