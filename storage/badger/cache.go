package badger

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/evote-ccr/control-component/module"
)

func withLimit[K comparable, V any](limit uint) func(*Cache[K, V]) {
	return func(c *Cache[K, V]) {
		c.limit = limit
	}
}

type retrieveFunc[K comparable, V any] func(key K) (V, error)

func withRetrieve[K comparable, V any](retrieve retrieveFunc[K, V]) func(*Cache[K, V]) {
	return func(c *Cache[K, V]) {
		c.retrieve = retrieve
	}
}

func noRetrieve[K comparable, V any](K) (V, error) {
	var nullV V
	return nullV, fmt.Errorf("no retrieve function for cache get available")
}

// Cache is a read-through LRU cache in front of a badger lookup. Only
// successfully read or committed values are cached; values in this storage
// layer are immutable once written.
type Cache[K comparable, V any] struct {
	metrics  module.CacheMetrics
	limit    uint
	retrieve retrieveFunc[K, V]
	resource string
	cache    *lru.Cache[K, V]
}

func newCache[K comparable, V any](collector module.CacheMetrics, resourceName string, options ...func(*Cache[K, V])) *Cache[K, V] {
	c := Cache[K, V]{
		metrics:  collector,
		limit:    1000,
		retrieve: noRetrieve[K, V],
		resource: resourceName,
	}
	for _, option := range options {
		option(&c)
	}
	c.cache, _ = lru.New[K, V](int(c.limit))
	return &c
}

// Get will try to retrieve the resource from cache first, and then from the
// injected retrieve function. During normal operations, the following error returns are expected:
//   - `storage.ErrNotFound` if key is unknown.
func (c *Cache[K, V]) Get(key K) (V, error) {

	// check if we have it in the cache
	resource, cached := c.cache.Get(key)
	if cached {
		c.metrics.CacheHit(c.resource)
		return resource, nil
	}

	c.metrics.CacheMiss(c.resource)

	// get it from the database
	resource, err := c.retrieve(key)
	if err != nil {
		var nullV V
		return nullV, err
	}

	// cache the resource and eject least recently used one if we reached limit
	_ = c.cache.Add(key, resource)

	return resource, nil
}

// Insert will add a resource directly to the cache with the given key.
func (c *Cache[K, V]) Insert(key K, resource V) {
	// cache the resource and eject least recently used one if we reached limit
	_ = c.cache.Add(key, resource)
}
