package derive

import (
	"fmt"
	"runtime/debug"
)

// RenderError wraps a failure raised while rendering a component.
// Slot computation errors propagate through it unchanged via Unwrap.
type RenderError struct {
	ComponentID string
	Cause       error
	Context     string
	StackTrace  []byte
}

func (e *RenderError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("render error in component %s during %s: %v", e.ComponentID, e.Context, e.Cause)
	}
	return fmt.Sprintf("render error in component %s: %v", e.ComponentID, e.Cause)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// SafeTypeAssertion performs safe type assertion with proper error
func SafeTypeAssertion[T any](value any) (T, error) {
	if value == nil {
		var zero T
		return zero, nil
	}

	typed, ok := value.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("type assertion error: expected %T, got %T (value: %v)", zero, value, value)
	}

	return typed, nil
}

func newRenderError(c *Component, cause error, context string) *RenderError {
	return &RenderError{
		ComponentID: c.ID(),
		Cause:       cause,
		Context:     context,
		StackTrace:  debug.Stack(),
	}
}
