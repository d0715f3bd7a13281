package derive

import (
	"github.com/google/uuid"
)

// Signal is a writable reactive source value. Its factory runs lazily on
// first read within a scope; the result is cached there until invalidated.
type Signal[T any] struct {
	key    string
	init   func(*InitCtx) (T, error)
	equals func(T, T) bool
	tags   map[any]any
}

// AnySignal is a type-erased handle for graph and cache bookkeeping
type AnySignal interface {
	Key() string
	GetTag(tag any) (any, bool)
	SetTag(tag any, val any)
}

// SignalOption is a modifier for signals
type SignalOption func(AnySignal)

// WithSignalTag returns an option that sets a tag on a signal
func WithSignalTag[T any](tag Tag[T], val T) SignalOption {
	return func(sig AnySignal) {
		tag.Set(sig, val)
	}
}

// NewSignal creates a signal backed by a lazy factory
func NewSignal[T any](init func(ctx *InitCtx) (T, error), opts ...SignalOption) *Signal[T] {
	sig := &Signal[T]{
		key:  uuid.NewString(),
		init: init,
		tags: make(map[any]any),
	}

	for _, opt := range opts {
		opt(sig)
	}

	return sig
}

// SignalOf creates a signal holding a fixed initial value
func SignalOf[T any](initial T, opts ...SignalOption) *Signal[T] {
	return NewSignal(func(*InitCtx) (T, error) {
		return initial, nil
	}, opts...)
}

// WithEquals sets a custom equality function and returns the signal for
// chaining. When set, a Set with an equal value is dropped without marking
// watchers dirty.
func (sg *Signal[T]) WithEquals(fn func(T, T) bool) *Signal[T] {
	sg.equals = fn
	return sg
}

// Key returns the signal's stable identity
func (sg *Signal[T]) Key() string {
	return sg.key
}

func (sg *Signal[T]) GetTag(tag any) (any, bool) {
	val, ok := sg.tags[tag]
	return val, ok
}

func (sg *Signal[T]) SetTag(tag any, val any) {
	sg.tags[tag] = val
}
