package cache

import (
	"sync"
	"time"
)

// Timed is a cache that invalidates elements on a timer basis. It is safe for
// concurrent use.
type Timed[V any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	cache   map[string]element[V]
	onEvict func(key string, value V)
}

// element holds a timestamped value to save.
type element[V any] struct {
	value    V
	creation time.Time
}

// NewTimed creates a new Timed cache where elements will be invalidated after
// a time in cache corresponding to TTL.
func NewTimed[V any](ttl time.Duration) *Timed[V] {
	return &Timed[V]{
		ttl:   ttl,
		cache: make(map[string]element[V]),
	}
}

// OnEvict registers f to be called with every element dropped for expiring.
// It runs without the cache locked.
func (c *Timed[V]) OnEvict(f func(key string, value V)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onEvict = f
}

func (c *Timed[V]) evicted(key string, value V) {
	c.mu.Lock()
	f := c.onEvict
	c.mu.Unlock()
	if f != nil {
		f(key, value)
	}
}

// Set assigns a value to a key.
func (c *Timed[V]) Set(key string, val V) {
	c.set(key, val, time.Now())
}

func (c *Timed[V]) set(key string, val V, t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[key] = element[V]{
		value:    val,
		creation: t,
	}
}

// Get retrieves a value for a key. The value may not exist or have expired, in
// which case ok will be false.
func (c *Timed[V]) Get(key string) (value V, ok bool) {
	return c.get(key, time.Now())
}

func (c *Timed[V]) get(key string, t time.Time) (value V, ok bool) {
	c.mu.Lock()
	el, ok := c.cache[key]
	if !ok {
		c.mu.Unlock()
		return value, false
	}

	// in memory elements might still be invalid
	if elapsed := t.Sub(el.creation); elapsed > c.ttl {
		delete(c.cache, key)
		c.mu.Unlock()
		c.evicted(key, el.value)
		return value, false
	}

	c.mu.Unlock()
	return el.value, true
}

// Touch resets the age of key, keeping an idle entry alive. It reports whether
// the key was present and unexpired.
func (c *Timed[V]) Touch(key string) bool {
	return c.touch(key, time.Now())
}

func (c *Timed[V]) touch(key string, t time.Time) bool {
	c.mu.Lock()
	el, ok := c.cache[key]
	if !ok {
		c.mu.Unlock()
		return false
	}
	if t.Sub(el.creation) > c.ttl {
		delete(c.cache, key)
		c.mu.Unlock()
		c.evicted(key, el.value)
		return false
	}
	el.creation = t
	c.cache[key] = el
	c.mu.Unlock()
	return true
}

// Sweep drops every expired element and returns how many were removed.
func (c *Timed[V]) Sweep() int {
	return c.sweep(time.Now())
}

func (c *Timed[V]) sweep(t time.Time) int {
	c.mu.Lock()
	gone := make(map[string]V)
	for key, el := range c.cache {
		if t.Sub(el.creation) > c.ttl {
			delete(c.cache, key)
			gone[key] = el.value
		}
	}
	c.mu.Unlock()

	for key, value := range gone {
		c.evicted(key, value)
	}
	return len(gone)
}

// Len is the number of stored elements, expired or not.
func (c *Timed[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cache)
}
