package eventtype

import "sync"

// ConnectionCache remembers which platforms were found connected while a
// creation flow is open.
type ConnectionCache struct {
	mu        sync.Mutex
	connected map[Platform]bool
}

func NewConnectionCache() *ConnectionCache {
	return &ConnectionCache{connected: make(map[Platform]bool)}
}

func (c *ConnectionCache) Connected(p Platform) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected[p]
}

func (c *ConnectionCache) MarkConnected(p Platform) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected[p] = true
}

func (c *ConnectionCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.connected)
}
