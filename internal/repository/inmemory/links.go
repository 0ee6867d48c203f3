package inmemory

import (
	"sync"
	"time"

	"patron-crm-go/internal/domain/graph"
)

// InMemoryLinkCache keeps pending household links with a per-entry TTL.
type InMemoryLinkCache struct {
	mu    sync.RWMutex
	items map[string]linkItem
	now   func() time.Time
}

type linkItem struct {
	value     *graph.HouseholdLink
	expiresAt time.Time
}

func NewInMemoryLinkCache() *InMemoryLinkCache {
	return &InMemoryLinkCache{
		items: make(map[string]linkItem),
		now:   time.Now,
	}
}

func (c *InMemoryLinkCache) Get(id string) (*graph.HouseholdLink, bool) {
	now := c.now()

	c.mu.RLock()
	item, ok := c.items[id]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if !item.expiresAt.After(now) {
		c.mu.Lock()
		item, ok = c.items[id]
		if ok && !item.expiresAt.After(now) {
			delete(c.items, id)
		}
		c.mu.Unlock()
		return nil, false
	}

	return item.value.Clone(), true
}

func (c *InMemoryLinkCache) Set(link *graph.HouseholdLink, ttl time.Duration) {
	if link == nil {
		return
	}
	if ttl <= 0 {
		c.Delete(link.ID)
		return
	}

	c.mu.Lock()
	c.items[link.ID] = linkItem{
		value:     link.Clone(),
		expiresAt: c.now().Add(ttl),
	}
	c.mu.Unlock()
}

func (c *InMemoryLinkCache) Delete(id string) {
	c.mu.Lock()
	delete(c.items, id)
	c.mu.Unlock()
}

// Len counts entries that have not expired yet.
func (c *InMemoryLinkCache) Len() int {
	now := c.now()

	c.mu.RLock()
	defer c.mu.RUnlock()
	count := 0
	for _, item := range c.items {
		if item.expiresAt.After(now) {
			count++
		}
	}
	return count
}

func (c *InMemoryLinkCache) Clear() {
	c.mu.Lock()
	c.items = make(map[string]linkItem)
	c.mu.Unlock()
}
