// Package derive provides a memoization and hydration runtime for component-based Go programs.
//
// # Overview
//
// Derive organizes code around three core concepts:
//
//  1. Signals: writable reactive source values
//  2. Components: render functions with ordered hook slots (memos, effects, a hydration gate)
//  3. Scopes: lifecycle managers that cache values, run render passes and flush post-commit work
//
// # Basic Usage
//
// Mount a component on a scope and drive it with render passes:
//
//	scope := derive.NewScope()
//
//	query := derive.SignalOf("")
//
//	list := derive.Mount(scope, func(c *derive.Component) (string, error) {
//	    q, err := derive.Watch(c, query)
//	    if err != nil {
//	        return "", err
//	    }
//	    matches, err := derive.Use(c, func() ([]string, error) {
//	        return expensiveFilter(q), nil
//	    }, derive.Deps{q})
//	    if err != nil {
//	        return "", err
//	    }
//	    return strings.Join(matches, ", "), nil
//	})
//
//	if err := scope.Render(context.Background()); err != nil { ... }
//	out, _ := list.Output()
//
// # Memoized Derivations
//
// Use caches a computed value in a component slot, keyed by a dependency
// list compared with shallow equality (same primitive value or same
// reference, never deep):
//
//	// Recomputes only when q or limit changes
//	val, err := derive.Use(c, compute, derive.Deps{q, limit})
//
//	// Empty list: compute once for the component's lifetime
//	val, err := derive.Use(c, compute, derive.Deps{})
//
//	// Nil list: caching disabled, compute on every render
//	val, err := derive.Use(c, compute, nil)
//
// Mutating a slice or map in place behind an unchanged reference does not
// trigger recomputation; replace the reference to invalidate.
//
// # Hydration
//
// A component renders environment-independent output until its gate fires,
// then switches to the live branch for the rest of its lifetime:
//
//	label := derive.Gated(c, "...", func() string {
//	    return "theme: " + theme
//	})
//
// The gate transition is queued during the first render pass and runs after
// that pass commits, so the first output is always the placeholder.
//
// # Signals and Controllers
//
// Signals are lazy, scope-cached sources. Controllers provide lifecycle
// operations on them:
//
//	theme := derive.SignalOf("light")
//	ctrl := derive.Accessor(scope, theme)
//
//	val, err := ctrl.Get()       // resolve and cache
//	val, ok := ctrl.Peek()       // cached value only
//	ctrl.Set("dark")             // store and mark watchers dirty
//	ctrl.Invalidate()            // drop the cached value
//	val, err = ctrl.Reload()     // invalidate and re-resolve
//
// Reads through Watch subscribe the component: a later Set marks it dirty
// and the next Render re-renders it.
//
// # Effects
//
// Effects run after the pass that scheduled them has committed. The returned
// cleanup runs before the effect fires again and on unmount:
//
//	derive.UseEffect(c, func() (func() error, error) {
//	    sub := bus.Subscribe(topic)
//	    return sub.Close, nil
//	}, derive.Deps{topic})
//
// # Extensions
//
// Extensions hook into operations through a middleware chain:
//
//	type TimingExtension struct {
//	    derive.BaseExtension
//	}
//
//	func (e *TimingExtension) Wrap(ctx context.Context, next func() (any, error), op *derive.Operation) (any, error) {
//	    start := time.Now()
//	    result, err := next()
//	    log.Printf("%s took %v", op.Kind, time.Since(start))
//	    return result, err
//	}
//
//	scope := derive.NewScope(
//	    derive.WithExtension(&TimingExtension{BaseExtension: derive.NewBaseExtension("timing")}),
//	)
//
// # Testing with Presets
//
// Replace a signal's factory with a fixed value:
//
//	testScope := derive.NewScope(
//	    derive.WithPreset(configSignal, &Config{Theme: "dark"}),
//	)
//
// # Thread Safety
//
// Scopes can be accessed concurrently: signal resolution, controllers and
// Render are safe from multiple goroutines, and concurrent first resolutions
// of a signal are collapsed into one factory call. A Component is owned by
// the render pass and must not be shared across goroutines.
package derive
