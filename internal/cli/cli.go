package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/reelpipego/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("reelpipego", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
reelpipego - A declarative, sequential-first media pipeline runner.

Usage:
  reelpipego [options] [PROFILE_PATH]

Arguments:
  PROFILE_PATH
    Path to a single .hcl profile file or a directory containing .hcl files.

Options:
`)
		flagSet.PrintDefaults()
	}

	profileFlag := flagSet.String("profile", "", "Path to the profile file or directory.")
	pFlag := flagSet.String("p", "", "Path to the profile file or directory (shorthand).")
	pipelineFlag := flagSet.String("pipeline", "clip", "Pipeline to run. Options: 'clip' or 'narrative'.")
	sampleFlag := flagSet.String("sample", "", "Unit name to generate; defaults to the first declared unit.")
	keepFlag := flagSet.Bool("keep-artifacts", false, "Keep intermediate raw clips after the run.")
	dryRunFlag := flagSet.Bool("dry-run", false, "Print the resolved order and commands without executing anything.")
	verboseFlag := flagSet.Bool("verbose", false, "Include per-step timing in the report.")
	reportFlag := flagSet.String("report", "", "Path to write the JSON run report. Empty disables.")
	timeoutFlag := flagSet.Duration("timeout", 0, "Override the profile's per-step timeout, e.g. '5m'. 0 keeps the profile value.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *profileFlag != "" {
		path = *profileFlag
	} else if *pFlag != "" {
		path = *pFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Profile path determined.", "path", path)

	if path == "" {
		slog.Debug("No profile path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	if *timeoutFlag < 0 {
		return nil, false, &ExitError{Code: 2, Message: "invalid timeout: must not be negative"}
	}
	slog.Debug("CLI parameter validation complete.")

	config := &app.Config{
		ProfilePath:     path,
		PipelineID:      *pipelineFlag,
		Sample:          *sampleFlag,
		KeepArtifacts:   *keepFlag,
		DryRun:          *dryRunFlag,
		Verbose:         *verboseFlag,
		ReportPath:      *reportFlag,
		TimeoutOverride: *timeoutFlag,
		HealthcheckPort: *healthPortFlag,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
	}
	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
