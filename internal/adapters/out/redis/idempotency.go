package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"

	"github.com/redis/go-redis/v9"
)

// DefaultKeyTTL is how long a checkout key stays bound.
const DefaultKeyTTL = 24 * time.Hour

// IdempotencyStore binds checkout keys with SET NX so that concurrent
// replicas agree on a single order per key.
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = DefaultKeyTTL
	}
	return &IdempotencyStore{client: client, ttl: ttl}
}

func idempotencyKey(scope kernel.UUID, key string) string {
	return generateKey("checkout", scope.String()+":"+key)
}

func (s *IdempotencyStore) Reserve(
	ctx context.Context,
	scope kernel.UUID,
	key string,
	orderID kernel.UUID,
) (kernel.UUID, bool, error) {
	redisKey := idempotencyKey(scope, key)

	// The bound key may expire between SETNX and GET; one more round settles it.
	for range 2 {
		ok, err := s.client.SetNX(ctx, redisKey, orderID.String(), s.ttl).Result()
		if err != nil {
			return kernel.UUID{}, false, err
		}
		if ok {
			return orderID, true, nil
		}

		bound, err := s.client.Get(ctx, redisKey).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return kernel.UUID{}, false, err
		}

		id, err := kernel.UUIDFromString(bound)
		if err != nil {
			return kernel.UUID{}, false, errs.NewIntegrityErrorWithCause("idempotency key",
				fmt.Errorf("%s holds %q: %w", redisKey, bound, err))
		}
		return id, false, nil
	}

	return kernel.UUID{}, false, fmt.Errorf("idempotency key %s keeps expiring", redisKey)
}

func (s *IdempotencyStore) Release(ctx context.Context, scope kernel.UUID, key string) error {
	return s.client.Del(ctx, idempotencyKey(scope, key)).Err()
}
