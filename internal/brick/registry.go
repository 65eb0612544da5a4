package brick

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"
)

// Registry manages available template engines.
type Registry struct {
	engines map[string]func(logger zerolog.Logger) Engine
}

// NewRegistry creates a registry with the built-in engines registered.
func NewRegistry() *Registry {
	r := &Registry{
		engines: make(map[string]func(logger zerolog.Logger) Engine),
	}
	r.Register("mason", func(logger zerolog.Logger) Engine {
		return NewMasonEngine(logger)
	})
	return r
}

// Register adds an engine factory to the registry.
func (r *Registry) Register(name string, factory func(logger zerolog.Logger) Engine) {
	r.engines[name] = factory
}

// Get returns an engine by name.
func (r *Registry) Get(name string, logger zerolog.Logger) (Engine, error) {
	factory, exists := r.engines[name]
	if !exists {
		return nil, fmt.Errorf("unsupported template engine: %s", name)
	}
	return factory(logger), nil
}

// Names returns the registered engine names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.engines))
	for name := range r.engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
