package pipeline

import "context"

// Values is the shared run context: a flat key/value store that grows
// monotonically as steps commit their updates. On key collision the most
// recently merged write wins. It is never rolled back.
type Values map[string]string

// Clone returns an independent copy of v. A nil map clones to an empty one.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Merge copies every entry of updates into v, overwriting existing keys.
func (v Values) Merge(updates Values) {
	for k, val := range updates {
		v[k] = val
	}
}

// Action is the single capability every step kind shares. It receives a
// private snapshot of the run context and communicates changes only through
// the returned Result; it must never assume the snapshot is shared.
type Action func(ctx context.Context, view Values) Result

// Step is the smallest schedulable unit: an id unique within its Definition,
// the ids it depends on, and the action to invoke once they all succeeded.
type Step struct {
	ID          string
	Description string
	// DependsOn lists required dependencies: every one must end Succeeded or
	// this step is skipped.
	DependsOn []string
	// After lists ordering-only dependencies: this step runs after them but
	// tolerates their failure. Used for best-effort aggregation steps.
	After []string
	// Command, when non-empty, is the concrete command line this step will
	// launch. It exists purely for dry-run and log rendering.
	Command string
	Action  Action
}

// edges returns every id this step is ordered after, required or not.
func (s Step) edges() []string {
	if len(s.After) == 0 {
		return s.DependsOn
	}
	out := make([]string, 0, len(s.DependsOn)+len(s.After))
	out = append(out, s.DependsOn...)
	out = append(out, s.After...)
	return out
}

// Definition is a declarative, immutable graph of steps. It is built once
// per invocation by a composer and carries no execution state.
type Definition struct {
	ID          string
	Description string
	Steps       []Step
}

// step returns the step with the given id, or false when absent.
func (d Definition) step(id string) (Step, bool) {
	for _, s := range d.Steps {
		if s.ID == id {
			return s, true
		}
	}
	return Step{}, false
}
