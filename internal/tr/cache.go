package tr

import "sync"

// Cache memoises Tr results. It belongs to one Template and is reset
// whenever the template's content or resources change.
type Cache struct {
	mu sync.RWMutex
	m  map[string]string
}

func NewCache() *Cache {
	return &Cache{m: make(map[string]string)}
}

func (c *Cache) Get(s string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.m[s]
	return v, ok
}

func (c *Cache) Put(s, translated string) {
	c.mu.Lock()
	c.m[s] = translated
	c.mu.Unlock()
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}

func (c *Cache) Reset() {
	c.mu.Lock()
	c.m = make(map[string]string)
	c.mu.Unlock()
}
