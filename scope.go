package derive

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// Scope manages the lifecycle of signals and components
type Scope struct {
	mu              sync.RWMutex
	values          *valueCache
	tags            sync.Map
	graph           *watchGraph
	extensions      []Extension
	presets         map[AnySignal]any
	cleanupRegistry map[AnySignal][]cleanupEntry
	cleanupMu       sync.RWMutex
	instances       []anyInstance
	dirty           map[*Component]bool
	sched           *scheduler
	history         *passHistory
	flight          singleflight.Group
	passSeq         atomic.Uint64
}

// ScopeOption is a modifier for scopes
type ScopeOption func(*Scope)

// WithScopeTag returns an option that sets a tag on a scope
func WithScopeTag[T any](tag Tag[T], val T) ScopeOption {
	return func(s *Scope) {
		tag.Set(s, val)
	}
}

// WithExtension returns an option that registers an extension to a scope
func WithExtension(ext Extension) ScopeOption {
	return func(s *Scope) {
		if err := s.UseExtension(ext); err != nil {
			panic(err)
		}
	}
}

// WithPreset returns an option that replaces a signal's factory with a fixed
// value, typically to substitute a test double
func WithPreset[T any](sig *Signal[T], value T) ScopeOption {
	return func(s *Scope) {
		s.presets[sig] = value
	}
}

// NewScope creates a new scope with optional configuration
func NewScope(opts ...ScopeOption) *Scope {
	s := &Scope{
		values:          newValueCache(),
		graph:           newWatchGraph(),
		extensions:      []Extension{},
		presets:         make(map[AnySignal]any),
		cleanupRegistry: make(map[AnySignal][]cleanupEntry),
		dirty:           make(map[*Component]bool),
		sched:           newScheduler(),
		history:         newPassHistory(1000),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Read resolves a signal's value (lazily, with caching). Concurrent first
// reads of the same signal share a single factory run.
func Read[T any](s *Scope, sig *Signal[T]) (T, error) {
	var zero T

	if val, ok := s.values.Load(sig); ok {
		return val.(T), nil
	}

	s.mu.RLock()
	preset, hasPreset := s.presets[sig]
	s.mu.RUnlock()

	if hasPreset {
		s.values.Store(sig, preset)
		return preset.(T), nil
	}

	result, err, _ := s.flight.Do(sig.key, func() (any, error) {
		if val, ok := s.values.Load(sig); ok {
			return val, nil
		}

		op := &Operation{Kind: OpInit, Signal: sig, Scope: s}
		ctx := &InitCtx{scope: s}

		result, err := s.runOp(context.Background(), op, func() (any, error) {
			return sig.init(ctx)
		})
		if err != nil {
			return nil, err
		}

		s.registerCleanups(sig, ctx.cleanups)
		s.values.Store(sig, result)
		return result, nil
	})
	if err != nil {
		return zero, err
	}

	return result.(T), nil
}

// Set stores a new value and marks every watching component dirty. When the
// signal carries a custom equality function and the new value equals the
// cached one, the write is dropped.
func Set[T any](s *Scope, sig *Signal[T], newVal T) error {
	op := &Operation{Kind: OpSet, Signal: sig, Scope: s}

	_, err := s.runOp(context.Background(), op, func() (any, error) {
		if sig.equals != nil {
			if old, ok := s.values.Load(sig); ok && sig.equals(old.(T), newVal) {
				return nil, nil
			}
		}

		s.values.Store(sig, newVal)

		for _, c := range s.graph.dependents(sig) {
			s.markDirty(c)
		}
		return nil, nil
	})
	return err
}

// Watch reads a signal's value during render and subscribes the component:
// a later Set marks it dirty for the next pass
func Watch[T any](c *Component, sig *Signal[T]) (T, error) {
	val, err := Read(c.scope, sig)
	if err != nil {
		return val, err
	}
	c.scope.graph.addEdge(sig, c)
	return val, nil
}

// invalidate drops a signal's cached value, runs its registered cleanups and
// marks watchers dirty so the next pass re-reads
func (s *Scope) invalidate(sig AnySignal) {
	s.cleanupMu.Lock()
	entries := s.cleanupRegistry[sig]
	delete(s.cleanupRegistry, sig)
	s.cleanupMu.Unlock()

	s.runCleanups(entries, sig.Key(), "invalidate")
	s.values.Delete(sig)

	for _, c := range s.graph.dependents(sig) {
		s.markDirty(c)
	}
}

// Render runs one cooperative pass: renders every dirty component in mount
// order, commits their outputs, then flushes the post-commit queue (effects
// and hydration transitions). Work scheduled while flushing runs on the next
// pass.
func (s *Scope) Render(ctx context.Context) error {
	rec := &PassRecord{Seq: s.passSeq.Add(1), Start: time.Now()}

	s.mu.Lock()
	var todo []anyInstance
	for _, inst := range s.instances {
		if s.dirty[inst.component()] {
			todo = append(todo, inst)
			delete(s.dirty, inst.component())
		}
	}
	exts := make([]Extension, len(s.extensions))
	copy(exts, s.extensions)
	s.mu.Unlock()

	// On an aborted pass the unrendered components go back to dirty so the
	// next pass picks them up
	requeue := func(from int) {
		for _, inst := range todo[from:] {
			s.markDirty(inst.component())
		}
	}

	for _, ext := range exts {
		if err := ext.OnPassStart(s, rec); err != nil {
			requeue(0)
			return s.finishPass(rec, exts, err, PassStatusFailed)
		}
	}

	for i, inst := range todo {
		select {
		case <-ctx.Done():
			requeue(i)
			return s.finishPass(rec, exts, ctx.Err(), PassStatusCancelled)
		default:
		}

		c := inst.component()
		c.beginRender(ctx)

		op := &Operation{Kind: OpRender, Component: c, Scope: s}
		_, err := s.runOpWith(ctx, op, exts, func() (any, error) {
			return nil, inst.renderAny()
		})
		if err != nil {
			requeue(i)
			return s.finishPass(rec, exts, newRenderError(c, err, "render"), PassStatusFailed)
		}

		rec.Rendered = append(rec.Rendered, c.id)
	}

	if err := s.flushPostCommit(ctx, exts); err != nil {
		return s.finishPass(rec, exts, err, PassStatusFailed)
	}

	return s.finishPass(rec, exts, nil, PassStatusSuccess)
}

func (s *Scope) finishPass(rec *PassRecord, exts []Extension, err error, status PassStatus) error {
	rec.End = time.Now()
	rec.Status = status
	rec.Err = err

	for i := len(exts) - 1; i >= 0; i-- {
		if extErr := exts[i].OnPassEnd(s, rec, err); extErr != nil && err == nil {
			err = extErr
			rec.Status = PassStatusFailed
			rec.Err = extErr
		}
	}

	s.history.add(rec)
	return err
}

// flushPostCommit drains and runs the queue filled during the pass
func (s *Scope) flushPostCommit(ctx context.Context, exts []Extension) error {
	var firstErr error

	for _, task := range s.sched.drain() {
		c := task.component
		if !c.mounted {
			continue
		}

		switch task.kind {
		case taskHydrate:
			op := &Operation{Kind: OpHydrate, Component: c, Scope: s}
			_, _ = s.runOpWith(ctx, op, exts, func() (any, error) {
				c.gate.ready = true
				s.markDirty(c)
				return nil, nil
			})

		case taskEffect:
			sl := task.slot
			sl.pending = false

			if sl.cleanup != nil {
				if err := sl.cleanup(); err != nil {
					s.handleCleanupError(exts, &CleanupError{Owner: c.id, Err: err, Context: "effect"})
				}
				sl.cleanup = nil
			}

			op := &Operation{Kind: OpEffect, Component: c, Scope: s}
			result, err := s.runOpWith(ctx, op, exts, func() (any, error) {
				cleanup, err := sl.body()
				return cleanup, err
			})
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			if cleanup, ok := result.(func() error); ok && cleanup != nil {
				sl.cleanup = cleanup
			}
		}
	}

	return firstErr
}

// runOp wraps an operation with the registered extension chain
func (s *Scope) runOp(ctx context.Context, op *Operation, next func() (any, error)) (any, error) {
	s.mu.RLock()
	exts := make([]Extension, len(s.extensions))
	copy(exts, s.extensions)
	s.mu.RUnlock()

	return s.runOpWith(ctx, op, exts, next)
}

// runOpWith chains extensions around next (last registered wraps first) and
// notifies them of any error
func (s *Scope) runOpWith(ctx context.Context, op *Operation, exts []Extension, next func() (any, error)) (any, error) {
	for i := len(exts) - 1; i >= 0; i-- {
		ext := exts[i]
		currentNext := next
		next = func() (any, error) {
			return ext.Wrap(ctx, currentNext, op)
		}
	}

	result, err := next()
	if err != nil {
		for _, ext := range exts {
			ext.OnError(err, op, s)
		}
	}
	return result, err
}

// UseExtension registers an extension to the scope
func (s *Scope) UseExtension(ext Extension) error {
	s.mu.Lock()
	s.extensions = append(s.extensions, ext)
	sort.Slice(s.extensions, func(i, j int) bool {
		return s.extensions[i].Order() < s.extensions[j].Order()
	})
	s.mu.Unlock()

	return ext.Init(s)
}

func (s *Scope) register(inst anyInstance) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inst.component().seq = len(s.instances)
	s.instances = append(s.instances, inst)
	s.dirty[inst.component()] = true
}

func (s *Scope) unmount(inst anyInstance) {
	c := inst.component()

	s.mu.Lock()
	if !c.mounted {
		s.mu.Unlock()
		return
	}
	c.mounted = false
	for i, existing := range s.instances {
		if existing == inst {
			s.instances = append(s.instances[:i], s.instances[i+1:]...)
			break
		}
	}
	delete(s.dirty, c)
	exts := make([]Extension, len(s.extensions))
	copy(exts, s.extensions)
	s.mu.Unlock()

	s.graph.removeComponent(c)

	// Effect cleanups first, newest slot last registered runs first
	for i := len(c.slots) - 1; i >= 0; i-- {
		sl := c.slots[i]
		if sl.kind == slotEffect && sl.cleanup != nil {
			if err := sl.cleanup(); err != nil {
				s.handleCleanupError(exts, &CleanupError{Owner: c.id, Err: err, Context: "unmount"})
			}
			sl.cleanup = nil
		}
	}
	c.slots = nil

	for i := len(c.cleanups) - 1; i >= 0; i-- {
		if err := c.cleanups[i].fn(); err != nil {
			s.handleCleanupError(exts, &CleanupError{Owner: c.id, Err: err, Context: "unmount"})
		}
	}
	c.cleanups = nil
}

func (s *Scope) markDirty(c *Component) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.mounted {
		s.dirty[c] = true
	}
}

func (s *Scope) registerCleanups(sig AnySignal, entries []cleanupEntry) {
	if len(entries) == 0 {
		return
	}

	s.cleanupMu.Lock()
	defer s.cleanupMu.Unlock()
	s.cleanupRegistry[sig] = entries
}

func (s *Scope) runCleanups(entries []cleanupEntry, owner string, cleanupContext string) {
	if len(entries) == 0 {
		return
	}

	s.mu.RLock()
	exts := make([]Extension, len(s.extensions))
	copy(exts, s.extensions)
	s.mu.RUnlock()

	for i := len(entries) - 1; i >= 0; i-- {
		if err := entries[i].fn(); err != nil {
			s.handleCleanupError(exts, &CleanupError{Owner: owner, Err: err, Context: cleanupContext})
		}
	}
}

func (s *Scope) handleCleanupError(exts []Extension, cleanupErr *CleanupError) {
	for _, ext := range exts {
		if ext.OnCleanupError(cleanupErr) {
			return
		}
	}
}

// Dispose unmounts every component in reverse mount order, runs remaining
// signal cleanups and disposes extensions
func (s *Scope) Dispose() error {
	s.mu.RLock()
	instances := make([]anyInstance, len(s.instances))
	copy(instances, s.instances)
	s.mu.RUnlock()

	for i := len(instances) - 1; i >= 0; i-- {
		s.unmount(instances[i])
	}

	s.cleanupMu.Lock()
	allEntries := make([]struct {
		sig     AnySignal
		entries []cleanupEntry
	}, 0, len(s.cleanupRegistry))

	for sig, entries := range s.cleanupRegistry {
		allEntries = append(allEntries, struct {
			sig     AnySignal
			entries []cleanupEntry
		}{sig, entries})
	}
	s.cleanupRegistry = make(map[AnySignal][]cleanupEntry)
	s.cleanupMu.Unlock()

	for i := len(allEntries) - 1; i >= 0; i-- {
		s.runCleanups(allEntries[i].entries, allEntries[i].sig.Key(), "dispose")
	}

	s.mu.RLock()
	exts := make([]Extension, len(s.extensions))
	copy(exts, s.extensions)
	s.mu.RUnlock()

	for _, ext := range exts {
		if err := ext.Dispose(s); err != nil {
			return fmt.Errorf("disposing extension %s: %w", ext.Name(), err)
		}
	}

	return nil
}

// GetTag retrieves a tag value from the scope
func (s *Scope) GetTag(tag any) (any, bool) {
	return s.tags.Load(tag)
}

// SetTag stores a tag value on the scope
func (s *Scope) SetTag(tag any, val any) {
	s.tags.Store(tag, val)
}

// Components returns the mounted components in mount order
func (s *Scope) Components() []*Component {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Component, 0, len(s.instances))
	for _, inst := range s.instances {
		out = append(out, inst.component())
	}
	return out
}

// Watched returns the signals a component currently watches
func (s *Scope) Watched(c *Component) []AnySignal {
	return s.graph.watched(c)
}

// History returns the recorded render passes, oldest first
func (s *Scope) History() []*PassRecord {
	return s.history.All()
}

// LastPass returns the most recent render pass record, if any
func (s *Scope) LastPass() *PassRecord {
	return s.history.Last()
}
