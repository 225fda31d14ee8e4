package app

import "time"

// Config holds all the necessary configuration for an App instance to run.
// Everything is threaded explicitly; nothing is read from ambient globals,
// so several App instances can run concurrently in one process.
type Config struct {
	ProfilePath     string
	PipelineID      string
	Sample          string
	KeepArtifacts   bool
	DryRun          bool
	Verbose         bool
	ReportPath      string
	TimeoutOverride time.Duration
	HealthcheckPort int
	LogFormat       string
	LogLevel        string
}
