package extensions

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	derive "github.com/derive-fn/derive-go"
)

func TestLoggingExtensionLogsPasses(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})

	scope := derive.NewScope(derive.WithExtension(NewLoggingExtension(handler)))
	defer scope.Dispose()

	sig := derive.SignalOf(1, derive.WithSignalTag(derive.SignalName(), "counter"))
	derive.Mount(scope, func(c *derive.Component) (int, error) {
		return derive.Watch(c, sig)
	}, derive.WithName("view"))

	require.NoError(t, scope.Render(context.Background()))

	out := buf.String()
	require.Contains(t, out, "render pass finished")
	require.Contains(t, out, "operation completed")
	require.Contains(t, out, "counter")
	require.Contains(t, out, "view")
}

func TestLoggingExtensionLogsErrors(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})

	scope := derive.NewScope(derive.WithExtension(NewLoggingExtension(handler)))
	defer scope.Dispose()

	derive.Mount(scope, func(c *derive.Component) (int, error) {
		return 0, context.DeadlineExceeded
	})

	require.Error(t, scope.Render(context.Background()))
	require.Contains(t, buf.String(), "operation error")
}

func TestSilentHandlerDiscardsEverything(t *testing.T) {
	scope := derive.NewScope(derive.WithExtension(NewLoggingExtension(NewSilentHandler())))
	defer scope.Dispose()

	derive.Mount(scope, func(c *derive.Component) (string, error) {
		return "ok", nil
	})

	require.NoError(t, scope.Render(context.Background()))
}

func TestDrawScope(t *testing.T) {
	scope := derive.NewScope()
	defer scope.Dispose()

	sig := derive.SignalOf("x", derive.WithSignalTag(derive.SignalName(), "source"))
	derive.Mount(scope, func(c *derive.Component) (string, error) {
		return derive.Watch(c, sig)
	}, derive.WithName("leaf"))

	require.NoError(t, scope.Render(context.Background()))

	drawing := DrawScope(scope)
	require.Contains(t, drawing, "scope")
	require.Contains(t, drawing, "leaf")
	require.Contains(t, drawing, "source")
}
