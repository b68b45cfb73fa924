package livestatus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig configures the Redis-backed board.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
	Prefix   string
}

// RedisBoard stores statuses as JSON strings with a TTL, so a learner
// whose process dies disappears from the board on its own.
type RedisBoard struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisBoard connects and pings the server.
func NewRedisBoard(ctx context.Context, cfg RedisConfig) (*RedisBoard, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis: address is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 2 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Addr, err)
	}
	return newRedisBoard(client, cfg), nil
}

func newRedisBoard(client *redis.Client, cfg RedisConfig) *RedisBoard {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 3 * time.Minute
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "quizwatch:live:"
	}
	return &RedisBoard{client: client, ttl: ttl, prefix: prefix}
}

func (b *RedisBoard) key(userID string) string { return b.prefix + userID }

func (b *RedisBoard) Put(ctx context.Context, st Status) error {
	if st.UpdatedAt.IsZero() {
		st.UpdatedAt = time.Now().UTC()
	}
	val, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode live status: %w", err)
	}
	if err := b.client.Set(ctx, b.key(st.UserID), val, b.ttl).Err(); err != nil {
		return fmt.Errorf("set live status: %w", err)
	}
	return nil
}

func (b *RedisBoard) Get(ctx context.Context, userID string) (*Status, error) {
	raw, err := b.client.Get(ctx, b.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get live status: %w", err)
	}
	var st Status
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("decode live status: %w", err)
	}
	return &st, nil
}

func (b *RedisBoard) Clear(ctx context.Context, userID string) error {
	if err := b.client.Del(ctx, b.key(userID)).Err(); err != nil {
		return fmt.Errorf("clear live status: %w", err)
	}
	return nil
}

func (b *RedisBoard) Close() error { return b.client.Close() }
