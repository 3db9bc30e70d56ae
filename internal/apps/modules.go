package apps

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/goliatone/go-feincms/internal/pages"
	"github.com/goliatone/go-feincms/internal/urls"
)

// Modules holds the url modules application types mount by name.
type Modules struct {
	mu     sync.RWMutex
	tables map[string]*urls.Table
}

// NewModules creates an empty module registry.
func NewModules() *Modules {
	return &Modules{tables: make(map[string]*urls.Table)}
}

// Register adds a url module. Names are unique.
func (m *Modules) Register(name string, table *urls.Table) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrModuleNameRequired
	}
	if table == nil {
		return fmt.Errorf("%w: %s", ErrModuleTableRequired, name)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.tables[name]; exists {
		return fmt.Errorf("%w: %s", ErrModuleDuplicate, name)
	}
	m.tables[name] = table
	return nil
}

// MustRegister is Register for modules declared at start.
func (m *Modules) MustRegister(name string, table *urls.Table) {
	if err := m.Register(name, table); err != nil {
		panic(err)
	}
}

// Lookup returns the url module registered under name.
func (m *Modules) Lookup(name string) (*urls.Table, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	table, ok := m.tables[name]
	return table, ok
}

// Names lists the registered module names, sorted.
func (m *Modules) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.tables))
	for name := range m.tables {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Validate checks that every application type can reach its url module.
func (m *Modules) Validate(types *pages.Types) error {
	var missing []string
	for _, app := range types.Applications() {
		if _, ok := m.Lookup(app.URLConf); !ok {
			missing = append(missing, app.Key)
		}
	}
	if len(missing) > 0 {
		return &MissingModulesError{Types: missing}
	}
	return nil
}
