package memory

import (
	"context"
	"sync"

	"marketplace/internal/core/domain/model/kernel"
)

type idempotencyKey struct {
	scope kernel.UUID
	key   string
}

// IdempotencyStore keeps checkout keys for the life of the process.
type IdempotencyStore struct {
	mu   sync.Mutex
	keys map[idempotencyKey]kernel.UUID
}

func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{keys: make(map[idempotencyKey]kernel.UUID)}
}

func (s *IdempotencyStore) Reserve(
	_ context.Context,
	scope kernel.UUID,
	key string,
	orderID kernel.UUID,
) (kernel.UUID, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := idempotencyKey{scope: scope, key: key}
	if bound, ok := s.keys[k]; ok {
		return bound, false, nil
	}
	s.keys[k] = orderID
	return orderID, true, nil
}

func (s *IdempotencyStore) Release(_ context.Context, scope kernel.UUID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, idempotencyKey{scope: scope, key: key})
	return nil
}
