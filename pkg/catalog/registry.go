package catalog

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Describer resolves table metadata. *Reader is the production
// implementation; tests substitute their own.
type Describer interface {
	Describe(ctx context.Context, table string) (*TableSchema, error)
}

// Registry memoizes TableSchema values per table name for the lifetime of
// the process. Schema changes are rare and out-of-band relative to request
// traffic, so there is no TTL and no invalidation hook; observing a schema
// change requires a restart.
//
// The Registry is constructed at the composition root and passed by handle
// into the executor, never reached through package state.
type Registry struct {
	describer Describer

	mu      sync.RWMutex
	schemas map[string]*TableSchema
	group   singleflight.Group
}

// NewRegistry creates an empty Registry backed by the given Describer.
func NewRegistry(describer Describer) *Registry {
	return &Registry{
		describer: describer,
		schemas:   map[string]*TableSchema{},
	}
}

// Get returns the cached schema for the table, describing it on first use.
// Concurrent first requests for the same unseen table are collapsed into a
// single catalog query; a race that still performs a duplicate introspection
// is harmless because Describe is an idempotent, side-effect-free read.
// Failed lookups are not cached, so a table created after startup becomes
// visible on its next request.
func (r *Registry) Get(ctx context.Context, table string) (*TableSchema, error) {
	key := strings.ToLower(table)

	r.mu.RLock()
	schema, ok := r.schemas[key]
	r.mu.RUnlock()
	if ok {
		return schema, nil
	}

	value, err, _ := r.group.Do(key, func() (interface{}, error) {
		schema, err := r.describer.Describe(ctx, table)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.schemas[key] = schema
		r.mu.Unlock()
		return schema, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*TableSchema), nil
}

// Known returns the names of all tables described so far, for diagnostics.
func (r *Registry) Known() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	return names
}
