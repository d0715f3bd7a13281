package derive

import "context"

// Extension provides hooks into the runtime lifecycle
type Extension interface {
	// Name returns the extension's name
	Name() string

	// Order determines extension execution order (lower = earlier)
	Order() int

	// Init is called when the extension is registered to a scope
	Init(scope *Scope) error

	// Wrap intercepts operations (init, set, render, memo, effect, hydrate)
	Wrap(ctx context.Context, next func() (any, error), op *Operation) (any, error)

	// OnError handles errors raised by an operation
	OnError(err error, op *Operation, scope *Scope)

	// OnCleanupError handles cleanup failures
	// Returns true if the error was handled, false to use default behavior
	OnCleanupError(err *CleanupError) bool

	// Render pass hooks
	OnPassStart(scope *Scope, rec *PassRecord) error
	OnPassEnd(scope *Scope, rec *PassRecord, err error) error

	// Dispose is called when the scope is disposed
	Dispose(scope *Scope) error
}

// CleanupError contains information about a cleanup failure
type CleanupError struct {
	Owner   string // signal key or component id
	Err     error
	Context string // "invalidate", "effect", "unmount" or "dispose"
}

// BaseExtension provides default implementations for Extension methods
type BaseExtension struct {
	name string
}

// NewBaseExtension creates a new base extension with the given name
func NewBaseExtension(name string) BaseExtension {
	return BaseExtension{name: name}
}

func (e *BaseExtension) Name() string {
	return e.name
}

func (e *BaseExtension) Order() int {
	return 100
}

func (e *BaseExtension) Init(scope *Scope) error {
	return nil
}

func (e *BaseExtension) Wrap(ctx context.Context, next func() (any, error), op *Operation) (any, error) {
	return next()
}

func (e *BaseExtension) OnError(err error, op *Operation, scope *Scope) {
}

func (e *BaseExtension) OnCleanupError(err *CleanupError) bool {
	return false
}

func (e *BaseExtension) OnPassStart(scope *Scope, rec *PassRecord) error {
	return nil
}

func (e *BaseExtension) OnPassEnd(scope *Scope, rec *PassRecord, err error) error {
	return nil
}

func (e *BaseExtension) Dispose(scope *Scope) error {
	return nil
}

// Operation describes what operation is happening
type Operation struct {
	Kind      OperationKind
	Scope     *Scope
	Signal    AnySignal  // set for init and set operations
	Component *Component // set for render, memo, effect and hydrate operations
}

// OperationKind represents the type of operation
type OperationKind string

const (
	// OpInit indicates a signal factory run
	OpInit OperationKind = "init"
	// OpSet indicates a signal write
	OpSet OperationKind = "set"
	// OpRender indicates a component render
	OpRender OperationKind = "render"
	// OpMemo indicates a memoized slot computation
	OpMemo OperationKind = "memo"
	// OpEffect indicates a post-commit effect run
	OpEffect OperationKind = "effect"
	// OpHydrate indicates a hydration gate transition
	OpHydrate OperationKind = "hydrate"
)
