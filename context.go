package derive

import "sync"

type cleanupEntry struct {
	fn    func() error
	order int
}

// InitCtx provides context for signal factory functions
type InitCtx struct {
	scope     *Scope
	cleanups  []cleanupEntry
	cleanupMu sync.Mutex
}

// OnCleanup registers a cleanup function to run when the signal's value is
// invalidated or the scope is disposed
func (ctx *InitCtx) OnCleanup(fn func() error) {
	ctx.cleanupMu.Lock()
	defer ctx.cleanupMu.Unlock()

	entry := cleanupEntry{
		fn:    fn,
		order: len(ctx.cleanups),
	}
	ctx.cleanups = append(ctx.cleanups, entry)
}

// GetTag retrieves a tag value from the scope
func (ctx *InitCtx) GetTag(tag any) (any, bool) {
	return ctx.scope.GetTag(tag)
}

// GetTag retrieves a typed tag value from the scope
func GetTag[T any](ctx *InitCtx, tag Tag[T]) (T, bool) {
	return tag.Get(ctx.scope)
}

// GetTagOrDefault retrieves a typed tag or returns a default value
func GetTagOrDefault[T any](ctx *InitCtx, tag Tag[T], defaultVal T) T {
	if val, ok := tag.Get(ctx.scope); ok {
		return val
	}
	return defaultVal
}
