package config

// Redis backs three things in this service: the booking Session Store, the
// token-bucket rate limiter and the room-listing response cache.  Connection
// parameters come from REDIS_* variables.

import (
    "context"
    "crypto/tls"
    "fmt"
    "os"
    "strings"
    "time"

    "github.com/redis/go-redis/v9"
)

// RedisOptions builds client options from the environment:
//   REDIS_ADDR           host:port (REDIS_HOST + REDIS_PORT take precedence)
//   REDIS_PASSWORD       optional password
//   REDIS_DB             database number (default 0)
//   REDIS_TLS            enable TLS when "true" or "1"
func RedisOptions() *redis.Options {
    addr := envStr("REDIS_ADDR", "localhost:6379")
    if host, port := os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT"); host != "" && port != "" {
        addr = host + ":" + port
    }
    opts := &redis.Options{
        Addr:     addr,
        Password: os.Getenv("REDIS_PASSWORD"),
        DB:       envInt("REDIS_DB", 0),
    }
    if v := os.Getenv("REDIS_TLS"); strings.EqualFold(v, "true") || v == "1" {
        opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
    }
    return opts
}

// NewRedisClient connects and pings Redis with a short timeout.  The session
// store cannot work without Redis, so unlike the limiter and cache (which
// degrade to pass-through on a nil client) the caller decides what a failure
// means.
func NewRedisClient(ctx context.Context) (*redis.Client, error) {
    client := redis.NewClient(RedisOptions())
    pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
    defer cancel()
    if err := client.Ping(pingCtx).Err(); err != nil {
        _ = client.Close()
        return nil, fmt.Errorf("redis ping %s: %w", client.Options().Addr, err)
    }
    return client, nil
}
