package cache

// Cache is an LRU cache with a hard limit. When an insertion exceeds the
// limit, the least recently used entry is evicted.
type Cache[K comparable, V any] struct {
	entries map[K]*entry[K, V]
	order   *lruList[K]
	limit   int
	onEvict func(K, V)
	stats   Stats
}

type entry[K comparable, V any] struct {
	value V
	node  *lruNode[K]
}

// New creates a cache holding at most limit entries; 0 means unlimited.
// onEvict, if non-nil, receives every value that leaves the cache.
func New[K comparable, V any](limit int, onEvict func(K, V)) *Cache[K, V] {
	return &Cache[K, V]{
		entries: make(map[K]*entry[K, V]),
		order:   newLRUList[K](),
		limit:   limit,
		onEvict: onEvict,
	}
}

// Get returns the value for key and marks it most recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	e, ok := c.entries[key]
	if !ok {
		c.stats.Misses++
		var zero V
		return zero, false
	}
	c.stats.Hits++
	c.order.MoveToFront(e.node)
	return e.value, true
}

// GetOrCreate returns the cached value for key or stores the result of
// create. A failed create stores nothing.
func (c *Cache[K, V]) GetOrCreate(key K, create func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := create()
	if err != nil {
		return v, err
	}
	c.Set(key, v)
	return v, nil
}

// Set stores value under key, replacing and evicting any previous value.
func (c *Cache[K, V]) Set(key K, value V) {
	if old, ok := c.entries[key]; ok {
		c.order.MoveToFront(old.node)
		prev := old.value
		old.value = value
		c.evicted(key, prev)
		return
	}
	c.entries[key] = &entry[K, V]{value: value, node: c.order.PushFront(key)}
	for c.limit > 0 && len(c.entries) > c.limit {
		oldest, _ := c.order.RemoveOldest()
		e := c.entries[oldest]
		delete(c.entries, oldest)
		c.stats.Evictions++
		c.evicted(oldest, e.value)
	}
}

// Delete removes key. It reports whether the key was present.
func (c *Cache[K, V]) Delete(key K) bool {
	e, ok := c.entries[key]
	if !ok {
		return false
	}
	c.order.Remove(e.node)
	delete(c.entries, key)
	c.evicted(key, e.value)
	return true
}

// DeleteFunc removes every entry for which match returns true and
// returns how many were removed.
func (c *Cache[K, V]) DeleteFunc(match func(K, V) bool) int {
	var n int
	for key, e := range c.entries {
		if match(key, e.value) {
			c.order.Remove(e.node)
			delete(c.entries, key)
			c.evicted(key, e.value)
			n++
		}
	}
	return n
}

// Clear removes every entry.
func (c *Cache[K, V]) Clear() {
	for key, e := range c.entries {
		c.evicted(key, e.value)
	}
	c.entries = make(map[K]*entry[K, V])
	c.order.Clear()
}

// Len returns the number of entries.
func (c *Cache[K, V]) Len() int { return len(c.entries) }

// Limit returns the entry limit, 0 if unlimited.
func (c *Cache[K, V]) Limit() int { return c.limit }

// Stats returns cache statistics.
func (c *Cache[K, V]) Stats() Stats {
	s := c.stats
	s.Len = len(c.entries)
	return s
}

func (c *Cache[K, V]) evicted(key K, value V) {
	if c.onEvict != nil {
		c.onEvict(key, value)
	}
}

// Stats contains cache statistics.
type Stats struct {
	// Len is the current number of entries.
	Len int
	// Hits and Misses count Get lookups, including those from GetOrCreate.
	Hits   uint64
	Misses uint64
	// Evictions counts entries dropped to stay within the limit.
	Evictions uint64
}
