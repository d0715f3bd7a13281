package derive

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type slotKind uint8

const (
	slotMemo slotKind = iota + 1
	slotEffect
)

// slot is one hook cell of a component: a stored dependency list plus either
// a memoized value or an effect body and its cleanup.
type slot struct {
	kind    slotKind
	index   int
	deps    Deps
	has     bool
	value   any
	body    func() (func() error, error)
	cleanup func() error
	pending bool
}

// Component is a mounted render function together with its hook slots,
// hydration gate and cleanup list. A component belongs to exactly one scope
// and is rendered by at most one pass at a time.
type Component struct {
	id       string
	seq      int
	scope    *Scope
	slots    []*slot
	cursor   int
	gate     gate
	cleanups []cleanupEntry
	tags     map[any]any
	passCtx  context.Context
	mounted  bool
}

// ComponentOption is a modifier for components
type ComponentOption func(*Component)

// WithComponentTag returns an option that sets a tag on a component
func WithComponentTag[T any](tag Tag[T], val T) ComponentOption {
	return func(c *Component) {
		tag.Set(c, val)
	}
}

// WithName sets the component's display name tag
func WithName(name string) ComponentOption {
	return WithComponentTag(ComponentName(), name)
}

// ID returns the component's instance id
func (c *Component) ID() string {
	return c.id
}

// Scope returns the scope the component is mounted on
func (c *Component) Scope() *Scope {
	return c.scope
}

func (c *Component) GetTag(tag any) (any, bool) {
	val, ok := c.tags[tag]
	return val, ok
}

func (c *Component) SetTag(tag any, val any) {
	c.tags[tag] = val
}

// OnCleanup registers a cleanup function to run when the component unmounts
func (c *Component) OnCleanup(fn func() error) {
	c.cleanups = append(c.cleanups, cleanupEntry{fn: fn, order: len(c.cleanups)})
}

// beginRender resets the slot cursor for a fresh pass
func (c *Component) beginRender(ctx context.Context) {
	c.cursor = 0
	c.passCtx = ctx
}

// nextSlot returns the slot at the current cursor, creating it on first
// render. Hook order must be stable across renders.
func (c *Component) nextSlot(kind slotKind) (*slot, error) {
	if c.cursor < len(c.slots) {
		s := c.slots[c.cursor]
		if s.kind != kind {
			return nil, fmt.Errorf("hook order changed between renders at slot %d", c.cursor)
		}
		c.cursor++
		return s, nil
	}

	s := &slot{kind: kind, index: len(c.slots)}
	c.slots = append(c.slots, s)
	c.cursor++
	return s, nil
}

// UseEffect schedules body to run after the current pass commits, re-running
// it only when deps change by shallow equality (nil deps = every pass, empty
// deps = once). The cleanup returned by body runs before the next firing and
// on unmount.
func UseEffect(c *Component, body func() (func() error, error), deps Deps) error {
	s, err := c.nextSlot(slotEffect)
	if err != nil {
		return err
	}

	if s.has && deps != nil && depsEqual(s.deps, deps) {
		return nil
	}

	s.deps = cloneDeps(deps)
	s.has = true
	s.body = body

	if !s.pending {
		s.pending = true
		c.scope.sched.enqueue(postTask{kind: taskEffect, component: c, slot: s})
	}
	return nil
}

// Instance is a mounted component paired with its typed render output
type Instance[T any] struct {
	c      *Component
	render func(*Component) (T, error)
	out    T
	hasOut bool
}

// anyInstance is the type-erased view the scope renders through
type anyInstance interface {
	component() *Component
	renderAny() error
}

// Mount registers a render function on the scope. The component renders
// during the next Render call; Mount itself does not render.
func Mount[T any](s *Scope, render func(*Component) (T, error), opts ...ComponentOption) *Instance[T] {
	c := &Component{
		id:      uuid.NewString(),
		scope:   s,
		tags:    make(map[any]any),
		mounted: true,
	}

	for _, opt := range opts {
		opt(c)
	}

	inst := &Instance[T]{c: c, render: render}
	s.register(inst)
	return inst
}

// Component returns the underlying component
func (i *Instance[T]) Component() *Component {
	return i.c
}

// Output returns the last committed render output
func (i *Instance[T]) Output() (T, bool) {
	if !i.hasOut {
		var zero T
		return zero, false
	}
	return i.out, true
}

// Unmount removes the component from its scope, running effect cleanups and
// registered cleanup functions in reverse order and discarding all slots
func (i *Instance[T]) Unmount() {
	i.c.scope.unmount(i)
}

func (i *Instance[T]) component() *Component {
	return i.c
}

func (i *Instance[T]) renderAny() error {
	out, err := i.render(i.c)
	if err != nil {
		return err
	}
	i.out = out
	i.hasOut = true
	return nil
}
