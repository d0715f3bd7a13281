package derive

// Use returns the memoized result of compute, re-running it only when deps
// differ from the previous render by shallow equality.
//
// Semantics of the dependency list:
//   - nil: caching disabled, compute runs every render
//   - empty: compute runs once for the component's lifetime
//   - otherwise: compute re-runs when any key changes by shallow equality
//
// A compute error propagates unchanged and nothing is stored for that cycle;
// the next render retries.
func Use[T any](c *Component, compute func() (T, error), deps Deps) (T, error) {
	var zero T

	s, err := c.nextSlot(slotMemo)
	if err != nil {
		return zero, err
	}

	if s.has && deps != nil && depsEqual(s.deps, deps) {
		return SafeTypeAssertion[T](s.value)
	}

	op := &Operation{
		Kind:      OpMemo,
		Component: c,
		Scope:     c.scope,
	}

	result, err := c.scope.runOp(c.passCtx, op, func() (any, error) {
		return compute()
	})
	if err != nil {
		return zero, err
	}

	s.value = result
	s.deps = cloneDeps(deps)
	s.has = true

	return SafeTypeAssertion[T](result)
}
