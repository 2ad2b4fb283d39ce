package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClients holds the two connections the backend needs: one for
// token/key storage, one dedicated to pub/sub (a subscribed connection
// cannot issue regular commands).
type RedisClients struct {
	Store  *redis.Client
	PubSub *redis.Client
}

func NewRedisClients(redisURL string) (*RedisClients, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	storeClient := redis.NewClient(opt)
	if err := storeClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis (store): %w", err)
	}

	pubsubOpt := *opt
	pubsubClient := redis.NewClient(&pubsubOpt)
	if err := pubsubClient.Ping(ctx).Err(); err != nil {
		storeClient.Close()
		return nil, fmt.Errorf("failed to ping Redis (pubsub): %w", err)
	}

	return &RedisClients{
		Store:  storeClient,
		PubSub: pubsubClient,
	}, nil
}

func (r *RedisClients) Close() {
	r.Store.Close()
	r.PubSub.Close()
}
