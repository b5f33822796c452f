package storage

import "sync"

// MemCache is an in-memory snapshot cache for tests and ephemeral sessions.
type MemCache struct {
	mu sync.RWMutex
	m  map[string][]byte
}

func NewMemCache() *MemCache {
	return &MemCache{m: map[string][]byte{}}
}

func (c *MemCache) Put(key string, data []byte) error {
	cp := make([]byte, len(data))
	copy(cp, data)
	c.mu.Lock()
	c.m[key] = cp
	c.mu.Unlock()
	return nil
}

func (c *MemCache) Get(key string) ([]byte, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	data, ok := c.m[key]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, true, nil
}

func (c *MemCache) Delete(key string) error {
	c.mu.Lock()
	delete(c.m, key)
	c.mu.Unlock()
	return nil
}
