package derive

// gate is a component's hydration state: NOT_READY until the scheduled
// transition has run, READY forever after.
type gate struct {
	ready     bool
	scheduled bool
}

// Hydrated reports whether the component's hydration gate has fired.
//
// It returns false for the whole first render pass. The first call while not
// ready schedules a one-shot transition that runs after the current pass
// commits; the transition flips the gate and marks the component dirty so the
// next pass renders the live branch. The flip is irreversible for the
// component's lifetime.
func (c *Component) Hydrated() bool {
	g := &c.gate
	if g.ready {
		return true
	}

	if !g.scheduled {
		g.scheduled = true
		c.scope.sched.enqueue(postTask{kind: taskHydrate, component: c})
	}
	return false
}

// Gated returns placeholder until the component has hydrated, then the live
// branch on every later render. The placeholder must not depend on the
// environment so that early and late passes produce identical output.
func Gated[T any](c *Component, placeholder T, live func() T) T {
	if !c.Hydrated() {
		return placeholder
	}
	return live()
}
