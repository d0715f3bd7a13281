package derive

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGatedRendersPlaceholderFirst(t *testing.T) {
	scope := NewScope()
	defer scope.Dispose()

	inst := Mount(scope, func(c *Component) (string, error) {
		return Gated(c, "placeholder", func() string {
			return "live"
		}), nil
	})

	require.NoError(t, scope.Render(context.Background()))
	out, ok := inst.Output()
	require.True(t, ok)
	require.Equal(t, "placeholder", out, "the very first render must not see the live branch")

	// The transition ran post-commit and marked the component dirty
	require.NoError(t, scope.Render(context.Background()))
	out, _ = inst.Output()
	require.Equal(t, "live", out)
}

func TestGateFiresExactlyOnce(t *testing.T) {
	scope := NewScope()
	defer scope.Dispose()

	liveCalls := 0
	tick := SignalOf(0)

	inst := Mount(scope, func(c *Component) (string, error) {
		if _, err := Watch(c, tick); err != nil {
			return "", err
		}
		return Gated(c, "placeholder", func() string {
			liveCalls++
			return "live"
		}), nil
	})

	ctx := context.Background()
	require.NoError(t, scope.Render(ctx))
	require.Equal(t, 0, liveCalls)

	// Every pass after the transition renders live, with no regression
	for i := 1; i <= 10; i++ {
		require.NoError(t, Set(scope, tick, i))
		require.NoError(t, scope.Render(ctx))
		out, _ := inst.Output()
		require.Equal(t, "live", out)
	}
	require.Equal(t, 10, liveCalls)
}

func TestHydratedIsPerComponent(t *testing.T) {
	scope := NewScope()
	defer scope.Dispose()

	ctx := context.Background()

	first := Mount(scope, func(c *Component) (bool, error) {
		return c.Hydrated(), nil
	})
	require.NoError(t, scope.Render(ctx))
	require.NoError(t, scope.Render(ctx))

	hydrated, _ := first.Output()
	require.True(t, hydrated)

	// A component mounted later starts NOT_READY regardless of its siblings
	second := Mount(scope, func(c *Component) (bool, error) {
		return c.Hydrated(), nil
	})
	require.NoError(t, scope.Render(ctx))

	hydrated, _ = second.Output()
	require.False(t, hydrated)

	require.NoError(t, scope.Render(ctx))
	hydrated, _ = second.Output()
	require.True(t, hydrated)
}

func TestGateTransitionRunsThroughExtensions(t *testing.T) {
	rec := &recordingExtension{BaseExtension: NewBaseExtension("recording")}
	scope := NewScope(WithExtension(rec))
	defer scope.Dispose()

	Mount(scope, func(c *Component) (bool, error) {
		return c.Hydrated(), nil
	})

	require.NoError(t, scope.Render(context.Background()))
	require.Contains(t, rec.kinds(), OpHydrate)
}
