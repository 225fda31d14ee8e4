package pipeline

import (
	"fmt"
	"sort"
	"strings"
)

// GraphError describes an invalid Definition: duplicate ids, dangling
// dependency references, or a dependency cycle. It is fatal before any step
// runs and is never retried.
type GraphError struct {
	PipelineID string
	// Problems holds one human-readable line per duplicate or dangling id.
	Problems []string
	// Cycle lists every step id involved in a dependency cycle, sorted.
	Cycle []string
}

// Error implements the error interface for GraphError.
func (e *GraphError) Error() string {
	parts := append([]string{}, e.Problems...)
	if len(e.Cycle) > 0 {
		parts = append(parts, fmt.Sprintf("cycle detected involving steps: %s", strings.Join(e.Cycle, ", ")))
	}
	return fmt.Sprintf("invalid pipeline %q: %s", e.PipelineID, strings.Join(parts, "; "))
}

// Resolve validates the definition and returns one deterministic topological
// order of its step ids. Among multiple valid orderings it always prefers the
// order in which steps were declared, so re-resolving the same definition is
// byte-for-byte identical.
func Resolve(def Definition) ([]string, error) {
	gerr := &GraphError{PipelineID: def.ID}

	index := make(map[string]int, len(def.Steps))
	for i, s := range def.Steps {
		if _, dup := index[s.ID]; dup {
			gerr.Problems = append(gerr.Problems, fmt.Sprintf("duplicate step id %q", s.ID))
			continue
		}
		index[s.ID] = i
	}

	indegree := make([]int, len(def.Steps))
	for i, s := range def.Steps {
		for _, dep := range s.edges() {
			if dep == s.ID {
				gerr.Problems = append(gerr.Problems, fmt.Sprintf("step %q depends on itself", s.ID))
				continue
			}
			if _, ok := index[dep]; !ok {
				gerr.Problems = append(gerr.Problems, fmt.Sprintf("step %q depends on unknown step %q", s.ID, dep))
				continue
			}
			indegree[i]++
		}
	}
	if len(gerr.Problems) > 0 {
		return nil, gerr
	}

	// Kahn's algorithm, stabilized: each round emits the first declared step
	// whose dependencies have all been emitted.
	emitted := make([]bool, len(def.Steps))
	order := make([]string, 0, len(def.Steps))
	for len(order) < len(def.Steps) {
		next := -1
		for i := range def.Steps {
			if !emitted[i] && indegree[i] == 0 {
				next = i
				break
			}
		}
		if next == -1 {
			// Everything left has an unmet dependency, so a cycle remains.
			gerr.Cycle = remainingIDs(def, emitted)
			return nil, gerr
		}
		emitted[next] = true
		order = append(order, def.Steps[next].ID)
		for i, s := range def.Steps {
			if emitted[i] {
				continue
			}
			for _, dep := range s.edges() {
				if dep == def.Steps[next].ID {
					indegree[i]--
				}
			}
		}
	}

	return order, nil
}

// remainingIDs returns the sorted ids of steps that never became ready.
func remainingIDs(def Definition, emitted []bool) []string {
	var ids []string
	for i, s := range def.Steps {
		if !emitted[i] {
			ids = append(ids, s.ID)
		}
	}
	sort.Strings(ids)
	return ids
}
