// Package redis holds the Redis backed notifier and idempotency store.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const serviceName = "marketplace"

// NewClient connects to addr and checks the connection with PING.
func NewClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", addr, err)
	}
	return client, nil
}

func generateKey(operation, key string) string {
	return fmt.Sprintf("%s:%s:%s", serviceName, operation, key)
}
