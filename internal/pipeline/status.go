package pipeline

// Status is the per-step state machine. A step starts Pending, becomes
// Running exactly once, and ends in one of the three terminal states.
type Status int

const (
	Pending Status = iota
	Running
	Succeeded
	Failed
	Skipped
)

// Terminal reports whether the status permits no further transitions.
func (s Status) Terminal() bool {
	switch s {
	case Succeeded, Failed, Skipped:
		return true
	}
	return false
}

// String returns the lowercase name used in logs and reports.
func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case Skipped:
		return "skipped"
	}
	return "unknown"
}
