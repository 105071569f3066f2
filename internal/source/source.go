package source

import (
	"context"
	"fmt"
	"time"

	"PoolScanner/internal/domain"
)

// Request carries the parameters every adapter needs for one fetch pass.
type Request struct {
	Today        time.Time
	HorizonWeeks int
}

// Source is one upstream schedule publisher. A transport failure must
// surface as an error with no records; the pipeline isolates it so one
// broken source never blocks the others.
type Source interface {
	Name() string
	Fetch(ctx context.Context, req Request) ([]domain.RawCourseRecord, error)
}

// Registry keeps registered sources in registration order so runs stay
// deterministic.
type Registry struct {
	order  []Source
	byName map[string]Source
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: map[string]Source{}}
}

// Register adds or replaces a source implementation.
func (r *Registry) Register(src Source) {
	if r.byName == nil {
		r.byName = map[string]Source{}
	}
	if _, exists := r.byName[src.Name()]; !exists {
		r.order = append(r.order, src)
	} else {
		for i, existing := range r.order {
			if existing.Name() == src.Name() {
				r.order[i] = src
			}
		}
	}
	r.byName[src.Name()] = src
}

// Resolve returns a source by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Source, error) {
	if src, ok := r.byName[name]; ok {
		return src, nil
	}
	return nil, fmt.Errorf("source %s is not registered", name)
}

// All returns sources in registration order.
func (r *Registry) All() []Source {
	return r.order
}
