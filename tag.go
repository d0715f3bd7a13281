package derive

// Taggable is anything that carries type-safe metadata: signals, components
// and scopes all qualify.
type Taggable interface {
	GetTag(tag any) (any, bool)
	SetTag(tag any, val any)
}

// Tag is a type-safe key for metadata
type Tag[T any] struct {
	key string
}

// NewTag creates a new tag with the given key
func NewTag[T any](key string) Tag[T] {
	return Tag[T]{key: key}
}

// Key returns the tag's key (for debugging)
func (t Tag[T]) Key() string {
	return t.key
}

// Get retrieves the tag value from a taggable
func (t Tag[T]) Get(target Taggable) (T, bool) {
	val, ok := target.GetTag(t)
	if !ok {
		var zero T
		return zero, false
	}
	return val.(T), true
}

// MustGet retrieves the tag value or panics if not found
func (t Tag[T]) MustGet(target Taggable) T {
	val, ok := t.Get(target)
	if !ok {
		panic("tag " + t.key + " not found")
	}
	return val
}

// GetOrDefault retrieves the tag value or returns a default
func (t Tag[T]) GetOrDefault(target Taggable, defaultVal T) T {
	if val, ok := t.Get(target); ok {
		return val
	}
	return defaultVal
}

// Set stores the tag value on a taggable
func (t Tag[T]) Set(target Taggable, val T) {
	target.SetTag(t, val)
}

var componentNameTag = NewTag[string]("component.name")

// ComponentName returns the well-known tag holding a component's display name
func ComponentName() Tag[string] {
	return componentNameTag
}

var signalNameTag = NewTag[string]("signal.name")

// SignalName returns the well-known tag holding a signal's display name
func SignalName() Tag[string] {
	return signalNameTag
}
