package config

// Redis backs two concerns: in-flight import sessions (parsed rows,
// column mapping and diff waiting for a coordinator to apply them) and
// the token bucket guarding spreadsheet uploads.  The limiter degrades
// gracefully without Redis, but sessions cannot, so main treats a nil
// client as fatal.

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient builds a client from the environment and verifies the
// connection with a short ping.  Recognised variables:
//
//	REDIS_URL – full redis:// or rediss:// URL; wins over everything below
//	REDIS_HOST, REDIS_PORT – assembled into host:port
//	REDIS_ADDR – host:port shorthand (default localhost:6379)
//	REDIS_PASSWORD, REDIS_DB – credentials and database number
//	REDIS_TLS – enable TLS when set to a truthy value
//
// Returns nil when the server cannot be reached; callers decide whether
// that is fatal.
func NewRedisClient() *redis.Client {
	opts := redisOptions()
	if opts == nil {
		return nil
	}
	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil
	}
	return client
}

func redisOptions() *redis.Options {
	if url := envStr("REDIS_URL", ""); url != "" {
		opts, err := redis.ParseURL(url)
		if err != nil {
			return nil
		}
		return opts
	}
	addr := envStr("REDIS_ADDR", "localhost:6379")
	if host := envStr("REDIS_HOST", ""); host != "" {
		addr = host + ":" + envStr("REDIS_PORT", "6379")
	}
	opts := &redis.Options{
		Addr:     addr,
		Password: envStr("REDIS_PASSWORD", ""),
		DB:       envInt("REDIS_DB", 0),
	}
	if envBool("REDIS_TLS", false) {
		opts.TLSConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return opts
}
