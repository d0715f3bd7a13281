package derive

import (
	"sync"
)

// valueCache stores resolved signal values keyed by the signal's identity.
type valueCache struct {
	data sync.Map
}

func newValueCache() *valueCache {
	return &valueCache{}
}

func (c *valueCache) Load(key AnySignal) (any, bool) {
	return c.data.Load(key)
}

func (c *valueCache) Store(key AnySignal, value any) {
	c.data.Store(key, value)
}

func (c *valueCache) Delete(key AnySignal) {
	c.data.Delete(key)
}

func (c *valueCache) Range(fn func(key AnySignal, value any) bool) {
	c.data.Range(func(key, value any) bool {
		return fn(key.(AnySignal), value)
	})
}

func (c *valueCache) Size() int {
	count := 0
	c.data.Range(func(key, value any) bool {
		count++
		return true
	})
	return count
}

func (c *valueCache) Clear() {
	c.data.Range(func(key, value any) bool {
		c.data.Delete(key)
		return true
	})
}
