// Package execstep adapts external executables into pipeline actions,
// mapping exit codes and timeouts onto step results.
package execstep

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/vk/reelpipego/internal/ctxlog"
	"github.com/vk/reelpipego/internal/pipeline"
)

// tailLineCount bounds the stderr excerpt carried into a failure message.
const tailLineCount = 20

// Spec describes one external command invocation.
type Spec struct {
	// Path is the executable to launch.
	Path string
	// Args are the arguments passed to the executable, excluding Path.
	Args []string
	// Dir is the working directory; empty means the process inherits ours.
	Dir string
	// Timeout bounds the whole invocation. Zero disables the deadline.
	Timeout time.Duration
	// Env is an overlay applied on top of the current process environment.
	Env map[string]string
	// OutputKey is the context key the captured stdout is stored under.
	// Empty suppresses the stdout update.
	OutputKey string
}

// CommandLine renders the concrete command for logs and dry-run output.
func (s Spec) CommandLine() string {
	parts := make([]string, 0, len(s.Args)+1)
	parts = append(parts, s.Path)
	for _, a := range s.Args {
		if strings.ContainsAny(a, " \t\"") {
			a = fmt.Sprintf("%q", a)
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}

// environ merges the overlay over the inherited environment, sorted for
// reproducible process spawns.
func (s Spec) environ() []string {
	if len(s.Env) == 0 {
		return nil
	}
	merged := make(map[string]string)
	for _, kv := range os.Environ() {
		if idx := strings.Index(kv, "="); idx != -1 {
			merged[kv[:idx]] = kv[idx+1:]
		}
	}
	for k, v := range s.Env {
		merged[k] = v
	}
	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+merged[k])
	}
	return out
}

// Command turns the spec into a pipeline action. Exit code 0 maps to a
// Succeeded result with stdout exposed under OutputKey; a nonzero exit maps
// to Failed with the stderr tail; exceeding Timeout kills the child and maps
// to Failed with a timeout-specific message.
func Command(spec Spec) pipeline.Action {
	return func(ctx context.Context, _ pipeline.Values) pipeline.Result {
		logger := ctxlog.FromContext(ctx)

		runCtx := ctx
		if spec.Timeout > 0 {
			var cancel context.CancelFunc
			runCtx, cancel = context.WithTimeout(ctx, spec.Timeout)
			defer cancel()
		}

		cmd := exec.CommandContext(runCtx, spec.Path, spec.Args...)
		cmd.Dir = spec.Dir
		cmd.Env = spec.environ()

		var stdout, stderr bytes.Buffer
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr

		logger.Debug("Launching external command.", "command", spec.CommandLine(), "dir", spec.Dir, "timeout", spec.Timeout)
		err := cmd.Run()

		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return pipeline.Fail(fmt.Sprintf("command %q timed out after %s", spec.Path, spec.Timeout))
		}
		if err != nil {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				return pipeline.Fail(fmt.Sprintf("command %q exited with code %d: %s",
					spec.Path, exitErr.ExitCode(), tailLines(stderr.String(), tailLineCount)))
			}
			return pipeline.Fail(fmt.Sprintf("command %q could not be started: %v", spec.Path, err))
		}

		updates := pipeline.Values{}
		if spec.OutputKey != "" {
			updates[spec.OutputKey] = strings.TrimRight(stdout.String(), "\n")
		}
		return pipeline.Succeed(updates)
	}
}

// NoOp returns an action that immediately succeeds with empty updates. It is
// used for placeholder stages and in tests.
func NoOp() pipeline.Action {
	return func(context.Context, pipeline.Values) pipeline.Result {
		return pipeline.Succeed(pipeline.Values{})
	}
}

// tailLines keeps at most maxLines trailing lines of input.
func tailLines(input string, maxLines int) string {
	input = strings.TrimRight(input, "\n")
	if input == "" {
		return "(no stderr output)"
	}
	lines := strings.Split(input, "\n")
	if len(lines) <= maxLines {
		return strings.Join(lines, "\n")
	}
	return strings.Join(lines[len(lines)-maxLines:], "\n")
}
