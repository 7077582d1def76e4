package store

import "sync"

// collection is the mutable local mirror of one backend collection resource.
// Every entity in it came from a server response; the five mutation paths
// below are the only way in. The version counter bumps on every mutation so
// observers can cheaply detect change and re-read via a snapshot.
type collection[E any] struct {
	mu      sync.RWMutex
	items   []E
	version uint64
	idOf    func(E) int
}

func newCollection[E any](idOf func(E) int) *collection[E] {
	return &collection[E]{idOf: idOf}
}

// snapshot returns a copy of the current items in server-given order.
func (c *collection[E]) snapshot() []E {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]E, len(c.items))
	copy(out, c.items)
	return out
}

func (c *collection[E]) currentVersion() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

func (c *collection[E]) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// replaceAll swaps in a whole server response, preserving its order.
func (c *collection[E]) replaceAll(items []E) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append([]E(nil), items...)
	c.version++
}

// insertFront puts a newly created entity at index 0 (most-recent-first).
func (c *collection[E]) insertFront(e E) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append([]E{e}, c.items...)
	c.version++
}

// replaceByID swaps the entry with e's id in place, keeping its index.
// Reports whether an entry was found.
func (c *collection[E]) replaceByID(e E) bool {
	id := c.idOf(e)
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, item := range c.items {
		if c.idOf(item) == id {
			c.items[i] = e
			c.version++
			return true
		}
	}
	return false
}

// removeByID deletes the entry with the given id, shifting later entries up.
// Reports whether an entry was found.
func (c *collection[E]) removeByID(id int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, item := range c.items {
		if c.idOf(item) == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			c.version++
			return true
		}
	}
	return false
}

// getByID returns the cached entry with the given id, if present.
func (c *collection[E]) getByID(id int) (E, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, item := range c.items {
		if c.idOf(item) == id {
			return item, true
		}
	}
	var zero E
	return zero, false
}

// find returns the first cached entry matching pred.
func (c *collection[E]) find(pred func(E) bool) (E, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, item := range c.items {
		if pred(item) {
			return item, true
		}
	}
	var zero E
	return zero, false
}
