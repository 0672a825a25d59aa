package memory

import (
	"context"
	"sync"

	"marketplace/internal/core/ports"
	"marketplace/internal/pkg/errs"
)

// Catalog is a fixed set of priceable items, used when no catalog service is
// configured and in tests.
type Catalog struct {
	mu    sync.RWMutex
	items map[string]ports.CatalogItem
}

func NewCatalog(items ...ports.CatalogItem) *Catalog {
	c := &Catalog{items: make(map[string]ports.CatalogItem, len(items))}
	for _, it := range items {
		c.items[it.ID] = it
	}
	return c
}

func (c *Catalog) Put(item ports.CatalogItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[item.ID] = item
}

func (c *Catalog) GetPriceableItem(_ context.Context, id string) (ports.CatalogItem, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	item, ok := c.items[id]
	if !ok {
		return ports.CatalogItem{}, errs.NewObjectNotFoundError("catalogItem", id)
	}
	return item, nil
}
