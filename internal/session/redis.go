package session

import (
    "context"
    "fmt"
    "time"

    "github.com/redis/go-redis/v9"
)

// RedisStore keeps each session as a Redis hash under prefix:sessionID.
// Every Save refreshes the TTL, so an abandoned draft disappears TTL after
// its last step.
type RedisStore struct {
    rdb    redis.Cmdable
    prefix string
    ttl    time.Duration
}

// NewRedisStore builds a RedisStore.  A non-positive ttl disables expiry.
func NewRedisStore(rdb redis.Cmdable, prefix string, ttl time.Duration) *RedisStore {
    if prefix == "" {
        prefix = "hb:session"
    }
    return &RedisStore{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) key(sessionID string) string { return s.prefix + ":" + sessionID }

func (s *RedisStore) Load(ctx context.Context, sessionID string) (map[string]string, error) {
    fields, err := s.rdb.HGetAll(ctx, s.key(sessionID)).Result()
    if err != nil {
        return nil, fmt.Errorf("load session: %w", err)
    }
    if fields == nil {
        fields = map[string]string{}
    }
    return fields, nil
}

func (s *RedisStore) Save(ctx context.Context, sessionID string, fields map[string]string) error {
    key := s.key(sessionID)
    _, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
        p.Del(ctx, key)
        if len(fields) == 0 {
            return nil
        }
        values := make(map[string]interface{}, len(fields))
        for k, v := range fields {
            values[k] = v
        }
        p.HSet(ctx, key, values)
        if s.ttl > 0 {
            p.Expire(ctx, key, s.ttl)
        }
        return nil
    })
    if err != nil {
        return fmt.Errorf("save session: %w", err)
    }
    return nil
}

func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
    if err := s.rdb.Del(ctx, s.key(sessionID)).Err(); err != nil {
        return fmt.Errorf("clear session: %w", err)
    }
    return nil
}
