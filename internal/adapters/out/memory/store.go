// Package memory implements the engine's outbound ports in process. It backs
// STORAGE_DRIVER=memory and the concurrency tests; the semantics mirror the
// PostgreSQL adapters, including the version check on order updates.
package memory

import (
	"cmp"
	"slices"
	"sync"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/domain/model/party"
)

// Store holds committed state. Orders are kept as snapshots so that no caller
// ever shares a mutable aggregate with the store. It is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	orders  map[kernel.UUID]order.Snapshot
	parties map[kernel.UUID]party.Params
}

func NewStore() *Store {
	return &Store{
		orders:  make(map[kernel.UUID]order.Snapshot),
		parties: make(map[kernel.UUID]party.Params),
	}
}

func (s *Store) order(id kernel.UUID) (order.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.orders[id]
	return snap, ok
}

func (s *Store) party(id kernel.UUID) (party.Params, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.parties[id]
	return p, ok
}

// orderSnapshots returns every committed order; the caller filters.
func (s *Store) orderSnapshots() []order.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]order.Snapshot, 0, len(s.orders))
	for _, snap := range s.orders {
		out = append(out, snap)
	}
	return out
}

func (s *Store) partySnapshots() []party.Params {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]party.Params, 0, len(s.parties))
	for _, p := range s.parties {
		out = append(out, p)
	}
	return out
}

// putPartyLocked keeps the stored snapshot when it is newer than p.
func (s *Store) putPartyLocked(p party.Params) {
	if stored, ok := s.parties[p.ID]; ok && stored.UpdatedAt.After(p.UpdatedAt) {
		return
	}
	s.parties[p.ID] = p
}

func compareIDs(a, b kernel.UUID) int {
	return cmp.Compare(a.String(), b.String())
}

func sortParties(ps []*party.Party) {
	slices.SortFunc(ps, func(a, b *party.Party) int { return compareIDs(a.ID(), b.ID()) })
}
