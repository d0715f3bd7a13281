package derive

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// renderHarness mounts a component whose deps are controlled from the test
// and drives it through render passes via a tick signal.
type renderHarness[T any] struct {
	t     *testing.T
	scope *Scope
	tick  *Signal[int]
	inst  *Instance[T]
	pass  int
}

func newHarness[T any](t *testing.T, render func(c *Component) (T, error)) *renderHarness[T] {
	t.Helper()

	scope := NewScope()
	t.Cleanup(func() { _ = scope.Dispose() })

	tick := SignalOf(0)
	h := &renderHarness[T]{t: t, scope: scope, tick: tick}
	h.inst = Mount(scope, func(c *Component) (T, error) {
		if _, err := Watch(c, tick); err != nil {
			var zero T
			return zero, err
		}
		return render(c)
	})
	return h
}

// cycle marks the component dirty and runs one render pass
func (h *renderHarness[T]) cycle() error {
	h.t.Helper()

	if h.pass > 0 {
		if err := Set(h.scope, h.tick, h.pass); err != nil {
			return err
		}
	}
	h.pass++
	return h.scope.Render(context.Background())
}

func TestUseCachesWhileDepsUnchanged(t *testing.T) {
	calls := 0
	dep := "stable"

	h := newHarness(t, func(c *Component) (int, error) {
		return Use(c, func() (int, error) {
			calls++
			return 42, nil
		}, Deps{dep})
	})

	require.NoError(t, h.cycle())
	require.NoError(t, h.cycle())
	require.NoError(t, h.cycle())

	out, ok := h.inst.Output()
	require.True(t, ok)
	require.Equal(t, 42, out)
	require.Equal(t, 1, calls, "unchanged deps must not re-invoke the computation")
}

func TestUseRecomputesOnDepChange(t *testing.T) {
	calls := 0
	dep := 1

	h := newHarness(t, func(c *Component) (int, error) {
		return Use(c, func() (int, error) {
			calls++
			return dep * 10, nil
		}, Deps{dep})
	})

	require.NoError(t, h.cycle())
	out, _ := h.inst.Output()
	require.Equal(t, 10, out)

	dep = 2
	require.NoError(t, h.cycle())
	out, _ = h.inst.Output()
	require.Equal(t, 20, out)
	require.Equal(t, 2, calls)
}

func TestUseEmptyDepsComputesOnceAcross100Cycles(t *testing.T) {
	calls := 0

	h := newHarness(t, func(c *Component) (int, error) {
		return Use(c, func() (int, error) {
			calls++
			return calls, nil
		}, Deps{})
	})

	for i := 0; i < 100; i++ {
		require.NoError(t, h.cycle())
	}

	require.Equal(t, 1, calls)
	out, _ := h.inst.Output()
	require.Equal(t, 1, out)
}

func TestUseChangingDepComputesEveryCycle(t *testing.T) {
	calls := 0
	x := 0

	h := newHarness(t, func(c *Component) (int, error) {
		return Use(c, func() (int, error) {
			calls++
			return x, nil
		}, Deps{x})
	})

	for i := 0; i < 100; i++ {
		x = i
		require.NoError(t, h.cycle())
	}

	require.Equal(t, 100, calls)
}

func TestUseNilDepsDisablesCaching(t *testing.T) {
	calls := 0

	h := newHarness(t, func(c *Component) (int, error) {
		return Use(c, func() (int, error) {
			calls++
			return calls, nil
		}, nil)
	})

	for i := 0; i < 5; i++ {
		require.NoError(t, h.cycle())
	}

	require.Equal(t, 5, calls)
}

func TestUseInPlaceMutationDoesNotInvalidate(t *testing.T) {
	calls := 0
	arr := []int{1, 2, 3}

	h := newHarness(t, func(c *Component) (int, error) {
		return Use(c, func() (int, error) {
			calls++
			return arr[0], nil
		}, Deps{arr})
	})

	require.NoError(t, h.cycle())
	out, _ := h.inst.Output()
	require.Equal(t, 1, out)

	// Mutate behind the same reference: cached value must survive
	arr[0] = 99
	require.NoError(t, h.cycle())
	out, _ = h.inst.Output()
	require.Equal(t, 1, out, "stale value is expected, the reference did not change")
	require.Equal(t, 1, calls)

	// Replace with an equal-content copy: recompute
	old := arr
	arr = append([]int(nil), arr...)
	require.Empty(t, cmp.Diff(old, arr), "contents are identical")
	require.NoError(t, h.cycle())
	out, _ = h.inst.Output()
	require.Equal(t, 99, out)
	require.Equal(t, 2, calls)
}

func TestUseErrorPropagatesAndCachesNothing(t *testing.T) {
	boom := errors.New("boom")
	fail := true
	calls := 0

	h := newHarness(t, func(c *Component) (int, error) {
		return Use(c, func() (int, error) {
			calls++
			if fail {
				return 0, boom
			}
			return 7, nil
		}, Deps{"k"})
	})

	err := h.cycle()
	require.Error(t, err)
	require.ErrorIs(t, err, boom, "the computation error must propagate unchanged")

	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)

	_, ok := h.inst.Output()
	require.False(t, ok, "nothing committed for the failed pass")

	// Same deps, but the failed cycle cached nothing: retry happens
	fail = false
	require.NoError(t, h.cycle())
	out, _ := h.inst.Output()
	require.Equal(t, 7, out)
	require.Equal(t, 2, calls)

	// And now it is cached again
	require.NoError(t, h.cycle())
	require.Equal(t, 2, calls)
}

func TestUseMultipleSlotsAreIndependent(t *testing.T) {
	aCalls, bCalls := 0, 0
	aDep, bDep := 1, 1

	h := newHarness(t, func(c *Component) (int, error) {
		a, err := Use(c, func() (int, error) {
			aCalls++
			return aDep, nil
		}, Deps{aDep})
		if err != nil {
			return 0, err
		}
		b, err := Use(c, func() (int, error) {
			bCalls++
			return bDep * 100, nil
		}, Deps{bDep})
		if err != nil {
			return 0, err
		}
		return a + b, nil
	})

	require.NoError(t, h.cycle())
	require.Equal(t, 1, aCalls)
	require.Equal(t, 1, bCalls)

	bDep = 2
	require.NoError(t, h.cycle())
	require.Equal(t, 1, aCalls, "slot a untouched by slot b's dep change")
	require.Equal(t, 2, bCalls)

	out, _ := h.inst.Output()
	require.Equal(t, 201, out)
}

func TestUseSlotsDiscardedOnUnmount(t *testing.T) {
	scope := NewScope()
	defer scope.Dispose()

	calls := 0
	render := func(c *Component) (int, error) {
		return Use(c, func() (int, error) {
			calls++
			return calls, nil
		}, Deps{})
	}

	first := Mount(scope, render)
	require.NoError(t, scope.Render(context.Background()))
	require.Equal(t, 1, calls)

	first.Unmount()

	// A fresh instance starts with empty slots: no cross-instance persistence
	second := Mount(scope, render)
	require.NoError(t, scope.Render(context.Background()))
	require.Equal(t, 2, calls)

	out, _ := second.Output()
	require.Equal(t, 2, out)
}
