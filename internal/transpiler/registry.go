package transpiler

import (
	"encoding/json"
	"sort"
	"strings"
)

// Registry maps dialect names to the engine's implementation names. It is
// immutable once built; lookups are case-insensitive.
type Registry struct {
	dialects map[string]string
}

// NewRegistry copies entries into a new Registry, lowercasing the names.
func NewRegistry(entries map[string]string) Registry {
	dialects := make(map[string]string, len(entries))
	for name, impl := range entries {
		dialects[strings.ToLower(name)] = impl
	}
	return Registry{dialects: dialects}
}

// Lookup returns the implementation registered for name.
func (r Registry) Lookup(name string) (string, bool) {
	impl, ok := r.dialects[strings.ToLower(name)]
	return impl, ok
}

func (r Registry) Has(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

func (r Registry) Len() int {
	return len(r.dialects)
}

// Names returns the dialect names in sorted order.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r.dialects))
	for name := range r.dialects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Map returns a copy of the underlying entries.
func (r Registry) Map() map[string]string {
	out := make(map[string]string, len(r.dialects))
	for name, impl := range r.dialects {
		out[name] = impl
	}
	return out
}

func (r Registry) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Map())
}
