package broadcast

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// kv is the part of *redis.Client the sink uses.
type kv interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// RedisSink stores the latest hourly cost of each owner as JSON.
type RedisSink struct {
	client kv
	prefix string
	ttl    time.Duration
}

// NewRedisSink wraps a client. A zero ttl keeps values forever.
func NewRedisSink(client kv, prefix string, ttl time.Duration) *RedisSink {
	return &RedisSink{client: client, prefix: prefix, ttl: ttl}
}

// DialRedis connects and pings the server.
func DialRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func (s *RedisSink) key(owner string) string {
	return s.prefix + ":" + owner
}

func (s *RedisSink) PublishHourlyCost(ctx context.Context, cost HourlyCost) error {
	body, err := cost.encode()
	if err != nil {
		return fmt.Errorf("marshal hourly cost: %w", err)
	}
	if err := s.client.Set(ctx, s.key(cost.Owner), body, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RedisSink) Get(ctx context.Context, owner string) (HourlyCost, error) {
	body, err := s.client.Get(ctx, s.key(owner)).Bytes()
	if errors.Is(err, redis.Nil) {
		return HourlyCost{}, ErrNotPublished
	}
	if err != nil {
		return HourlyCost{}, fmt.Errorf("redis get: %w", err)
	}
	var cost HourlyCost
	if err := json.Unmarshal(body, &cost); err != nil {
		return HourlyCost{}, fmt.Errorf("unmarshal hourly cost: %w", err)
	}
	return cost, nil
}
