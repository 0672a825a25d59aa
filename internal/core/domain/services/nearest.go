package services

import (
	"container/heap"
	"iter"
	"math"

	"marketplace/internal/core/domain/model/kernel"
)

// Ranked pairs an item with its great-circle distance from the search origin.
type Ranked[T any] struct {
	Item       T
	DistanceKm float64
}

// Nearest yields the items located within radiusKm of origin, nearest first.
// Items without a location are skipped. Distances are computed up front; the
// ordering is produced lazily from a heap so that a caller taking a short
// prefix does not pay for sorting the rest. Equal distances keep input order.
func Nearest[T any](origin kernel.GeoPoint, radiusKm float64, items []T, locate func(T) *kernel.GeoPoint) iter.Seq[Ranked[T]] {
	return func(yield func(Ranked[T]) bool) {
		if math.IsNaN(radiusKm) || radiusKm < 0 {
			return
		}

		h := make(rankHeap[T], 0, len(items))
		for i, it := range items {
			loc := locate(it)
			if loc == nil {
				continue
			}
			within, d, err := origin.WithinRadius(*loc, radiusKm)
			if err != nil || !within {
				continue
			}
			h = append(h, rankEntry[T]{ranked: Ranked[T]{Item: it, DistanceKm: d}, order: i})
		}
		heap.Init(&h)

		for h.Len() > 0 {
			e := heap.Pop(&h).(rankEntry[T]) //nolint:forcetypeassert // heap only holds rankEntry
			if !yield(e.ranked) {
				return
			}
		}
	}
}

type rankEntry[T any] struct {
	ranked Ranked[T]
	order  int
}

type rankHeap[T any] []rankEntry[T]

func (h rankHeap[T]) Len() int { return len(h) }

func (h rankHeap[T]) Less(i, j int) bool {
	if h[i].ranked.DistanceKm != h[j].ranked.DistanceKm {
		return h[i].ranked.DistanceKm < h[j].ranked.DistanceKm
	}
	return h[i].order < h[j].order
}

func (h rankHeap[T]) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *rankHeap[T]) Push(x any) {
	*h = append(*h, x.(rankEntry[T])) //nolint:forcetypeassert // heap only holds rankEntry
}

func (h *rankHeap[T]) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}
