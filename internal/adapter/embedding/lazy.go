package embedding

import (
	"fmt"
	"sync"

	"research/internal/domain"
	"research/internal/port"
)

// Factory builds an embedder. It may be slow (model weights, network checks).
type Factory func() (port.Embedder, error)

// Lazy is a two-state embedder handle: uninitialized until the first call
// that needs the provider succeeds in building it, ready afterwards. A failed
// build leaves it uninitialized, so the next call tries again. Build errors
// are reported as domain.ErrProviderUnavailable.
type Lazy struct {
	factory Factory
	name    string

	mu       sync.Mutex
	provider port.Embedder
}

// NewLazy wraps factory. name is reported by ModelName before initialization.
func NewLazy(name string, factory Factory) *Lazy {
	return &Lazy{factory: factory, name: name}
}

// Get returns the provider, building it on first use.
func (l *Lazy) Get() (port.Embedder, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.provider != nil {
		return l.provider, nil
	}
	provider, err := l.factory()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to initialize %s: %w", domain.ErrProviderUnavailable, l.name, err)
	}
	l.provider = provider
	return provider, nil
}

// Ready reports whether the provider has been built.
func (l *Lazy) Ready() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.provider != nil
}

func (l *Lazy) Embed(texts []string) ([][]float32, error) {
	provider, err := l.Get()
	if err != nil {
		return nil, err
	}
	return provider.Embed(texts)
}

// Dimension initializes the provider if needed; it returns 0 if that fails.
func (l *Lazy) Dimension() int {
	provider, err := l.Get()
	if err != nil {
		return 0
	}
	return provider.Dimension()
}

func (l *Lazy) ModelName() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.provider != nil {
		return l.provider.ModelName()
	}
	return l.name
}
