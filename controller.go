package derive

// Controller provides lifecycle control for a signal's value within a scope
type Controller[T any] struct {
	signal *Signal[T]
	scope  *Scope
}

// Accessor creates a controller for a signal
func Accessor[T any](s *Scope, sig *Signal[T]) *Controller[T] {
	return &Controller[T]{
		signal: sig,
		scope:  s,
	}
}

// Get retrieves the latest value (resolves if not cached)
func (c *Controller[T]) Get() (T, error) {
	return Read(c.scope, c.signal)
}

// Peek retrieves the cached value without resolving
func (c *Controller[T]) Peek() (T, bool) {
	val, ok := c.scope.values.Load(c.signal)
	if !ok {
		var zero T
		return zero, false
	}
	return val.(T), true
}

// Set stores a new value and marks watching components dirty
func (c *Controller[T]) Set(newVal T) error {
	return Set(c.scope, c.signal, newVal)
}

// Update applies fn to the current value and stores the result
func (c *Controller[T]) Update(fn func(T) T) error {
	val, err := c.Get()
	if err != nil {
		return err
	}
	return c.Set(fn(val))
}

// Invalidate drops the cached value and runs the signal's cleanups
func (c *Controller[T]) Invalidate() {
	c.scope.invalidate(c.signal)
}

// Reload invalidates and immediately re-resolves
func (c *Controller[T]) Reload() (T, error) {
	c.Invalidate()
	return c.Get()
}

// IsCached checks if the value is currently cached
func (c *Controller[T]) IsCached() bool {
	_, ok := c.scope.values.Load(c.signal)
	return ok
}
