package scoring

import "fmt"

// Registry keeps a mapping from table names to weight tables.
type Registry struct {
	tables map[string]Table
}

// NewRegistry builds a registry holding the built-in tables.
func NewRegistry() *Registry {
	r := &Registry{tables: map[string]Table{}}
	r.Register(Emissions)
	r.Register(Hydrogen)
	return r
}

// Register adds or replaces a table.
func (r *Registry) Register(table Table) {
	if r.tables == nil {
		r.tables = map[string]Table{}
	}
	r.tables[table.Name] = table
}

// Resolve returns a table by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Table, error) {
	if table, ok := r.tables[name]; ok {
		return table, nil
	}
	return Table{}, fmt.Errorf("scoring table %s is not registered", name)
}
