package compose

import (
	"sort"

	"github.com/vk/reelpipego/internal/config"
	"github.com/vk/reelpipego/internal/pipeline"
)

// Builder is a pure composition function: profile model in, definition out.
// The sample argument carries the operator-selected unit name where the
// pipeline supports one.
type Builder func(model *config.Model, sample string) (pipeline.Definition, error)

// Registry maps pipeline ids to their builders. Each App owns its own
// instance so concurrent runs never share mutable state.
type Registry struct {
	builders map[string]Builder
}

// NewRegistry returns a registry with the built-in pipelines registered.
func NewRegistry() *Registry {
	r := &Registry{builders: make(map[string]Builder)}
	r.Register("clip", Clip)
	r.Register("narrative", Narrative)
	return r
}

// Register adds or replaces a builder under the given id.
func (r *Registry) Register(id string, b Builder) {
	r.builders[id] = b
}

// Lookup returns the builder registered under id.
func (r *Registry) Lookup(id string) (Builder, bool) {
	b, ok := r.builders[id]
	return b, ok
}

// IDs returns every registered pipeline id, sorted for stable help output.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.builders))
	for id := range r.builders {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
