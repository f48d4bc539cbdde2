package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	roleStore  = "store"
	rolePubSub = "pubsub"
)

// RedisClients keeps pub/sub on its own connection so that a blocked
// subscriber never stalls session reads or queue pushes.
type RedisClients struct {
	Store  *redis.Client
	PubSub *redis.Client
}

// NewRedisClients dials one client per role from the same URL. Each client
// names itself "quiz-<role>" so the two show up separately in CLIENT LIST.
func NewRedisClients(redisURL string) (*RedisClients, error) {
	base, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := dialRole(ctx, base, roleStore)
	if err != nil {
		return nil, err
	}
	pubsub, err := dialRole(ctx, base, rolePubSub)
	if err != nil {
		store.Close()
		return nil, err
	}

	return &RedisClients{Store: store, PubSub: pubsub}, nil
}

func roleOptions(base *redis.Options, role string) *redis.Options {
	opt := *base
	opt.ClientName = "quiz-" + role
	return &opt
}

func dialRole(ctx context.Context, base *redis.Options, role string) (*redis.Client, error) {
	client := redis.NewClient(roleOptions(base, role))
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis (%s): %w", role, err)
	}
	return client, nil
}

func (r *RedisClients) Close() {
	r.Store.Close()
	r.PubSub.Close()
}
