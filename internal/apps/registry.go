package apps

import (
	"sync"

	"github.com/goliatone/go-feincms/internal/urls"
)

// Registry keeps every routing table built in this process, keyed by table
// id. Entries are never evicted: the number of entries is bounded by the
// number of distinct application configurations the process has seen.
// Registering the same id twice overwrites with an equivalent table.
type Registry struct {
	mu     sync.RWMutex
	tables map[string]*urls.Table
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tables: make(map[string]*urls.Table)}
}

// Get returns the table registered under id.
func (r *Registry) Get(id string) (*urls.Table, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	table, ok := r.tables[id]
	return table, ok
}

// Put registers a fully built table.
func (r *Registry) Put(table *urls.Table) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tables[table.ID()] = table
}

// Len reports how many tables are registered.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tables)
}
