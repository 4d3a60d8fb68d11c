package source

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var ErrDuplicateSource = errors.New("source loader already registered")

// Loader fetches the raw payload behind a source identifier. Identifiers are
// opaque to callers; only the loader interprets their scheme.
type Loader interface {
	Fetch(ctx context.Context, source string) ([]byte, error)
}

// LoaderFunc adapts a plain function to the Loader interface.
type LoaderFunc func(ctx context.Context, source string) ([]byte, error)

func (f LoaderFunc) Fetch(ctx context.Context, source string) ([]byte, error) {
	return f(ctx, source)
}

// FetchError reports a source that could not be retrieved.
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s: %s", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Registry maps source loader names to loaders.
type Registry struct {
	mu      sync.RWMutex
	loaders map[string]Loader
}

func NewRegistry() *Registry {
	return &Registry{loaders: map[string]Loader{}}
}

// Register adds a loader under name. Registering the same name twice fails.
func (r *Registry) Register(name string, l Loader) error {
	if l == nil {
		return fmt.Errorf("source loader %q is nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.loaders[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateSource, name)
	}
	r.loaders[name] = l
	return nil
}

// Get returns the loader registered under name.
func (r *Registry) Get(name string) (Loader, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.loaders[name]
	return l, ok
}
