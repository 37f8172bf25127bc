package discovery

import (
	"errors"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ErrInvalidCapacity is returned when a Deduplicator capacity is less than 1.
var ErrInvalidCapacity = errors.New("discovery: capacity must be at least 1")

// Deduplicator is a bounded recency cache of device identities.
// It is safe for concurrent use.
type Deduplicator struct {
	cache *lru.Cache[string, struct{}]
}

// NewDeduplicator creates a Deduplicator holding at most capacity identities.
func NewDeduplicator(capacity int) (*Deduplicator, error) {
	if capacity < 1 {
		return nil, ErrInvalidCapacity
	}

	cache, err := lru.New[string, struct{}](capacity)
	if err != nil {
		return nil, err
	}

	return &Deduplicator{cache: cache}, nil
}

// Observe records id and reports whether it was already present.
//
// A present id is promoted to most recently used. A novel id is inserted as most
// recently used, evicting the least recently used one when the cache is full.
func (d *Deduplicator) Observe(id string) bool {
	found, _ := d.cache.ContainsOrAdd(id, struct{}{})
	if found {
		d.cache.Get(id)
	}

	return found
}

// Forget removes id so its next observation counts as novel.
func (d *Deduplicator) Forget(id string) {
	d.cache.Remove(id)
}

// Reset clears all entries.
func (d *Deduplicator) Reset() {
	d.cache.Purge()
}

// Len returns the number of tracked identities.
func (d *Deduplicator) Len() int {
	return d.cache.Len()
}
