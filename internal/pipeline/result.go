package pipeline

import "time"

// Result is what a step ends with. Updates are merged into the shared run
// context by the runner; ErrorMessage is set only for Failed (and, as a
// human-readable reason, for Skipped) steps.
type Result struct {
	Status       Status
	Updates      Values
	ErrorMessage string
	Duration     time.Duration
}

// Succeed returns a Succeeded result carrying the given context updates.
func Succeed(updates Values) Result {
	return Result{Status: Succeeded, Updates: updates}
}

// Fail returns a Failed result with the given error message.
func Fail(message string) Result {
	return Result{Status: Failed, ErrorMessage: message}
}

// RunResult is the complete outcome of one Run invocation. Steps maps step id
// to its terminal Result; Order is the resolved execution order, kept so
// adapters can render the table deterministically.
type RunResult struct {
	PipelineID   string
	Status       Status
	ErrorMessage string
	Order        []string
	Steps        map[string]Result
	StartedAt    time.Time
	FinishedAt   time.Time
}
