// Package report renders a pipeline RunResult for humans, maps it to a
// process exit code, and optionally persists it as JSON. It sits outside the
// orchestration core and only consumes the RunResult contract.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/vk/reelpipego/internal/pipeline"
)

// snippetLimit bounds the error excerpt shown in the per-step table.
const snippetLimit = 120

// ExitCode maps the overall run status to a process exit code.
func ExitCode(res pipeline.RunResult) int {
	if res.Status == pipeline.Succeeded {
		return 0
	}
	return 1
}

// Render writes the human-readable report: overall status, the per-step
// table in resolved order, and the artifact paths accumulated in the final
// context. With verbose set, per-step durations are included.
func Render(w io.Writer, res pipeline.RunResult, final pipeline.Values, verbose bool) {
	fmt.Fprintf(w, "Pipeline %q %s in %s\n",
		res.PipelineID, res.Status, res.FinishedAt.Sub(res.StartedAt).Round(timeUnit))
	if res.ErrorMessage != "" {
		fmt.Fprintf(w, "  %s\n", res.ErrorMessage)
	}

	if len(res.Order) > 0 {
		fmt.Fprintln(w)
		tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
		for _, id := range res.Order {
			step, ok := res.Steps[id]
			if !ok {
				continue
			}
			line := fmt.Sprintf("  %s\t%s", id, step.Status)
			if verbose && step.Status != pipeline.Skipped {
				line += fmt.Sprintf("\t%s", step.Duration.Round(timeUnit))
			}
			if snippet := errorSnippet(step); snippet != "" {
				line += "\t" + snippet
			}
			fmt.Fprintln(tw, line)
		}
		tw.Flush()
	}

	if artifacts := artifactPaths(final); len(artifacts) > 0 {
		fmt.Fprintln(w, "\nArtifacts:")
		for _, key := range artifacts {
			fmt.Fprintf(w, "  %s = %s\n", key, final[key])
		}
	}
}

// RenderPlan writes the dry-run output: the resolved order with the concrete
// command each step would launch. Nothing executes in this mode.
func RenderPlan(w io.Writer, def pipeline.Definition, order []string) {
	fmt.Fprintf(w, "Pipeline %q resolves to %d steps (dry run, nothing executed):\n\n", def.ID, len(order))
	for i, id := range order {
		fmt.Fprintf(w, "%2d. %s\n", i+1, id)
		for _, step := range def.Steps {
			if step.ID != id {
				continue
			}
			if step.Command != "" {
				fmt.Fprintf(w, "      $ %s\n", step.Command)
			} else {
				fmt.Fprintf(w, "      (in-process: %s)\n", step.Description)
			}
		}
	}
}

// errorSnippet flattens a step's error message into a single bounded line.
func errorSnippet(step pipeline.Result) string {
	if step.ErrorMessage == "" {
		return ""
	}
	msg := strings.Join(strings.Fields(step.ErrorMessage), " ")
	if len(msg) > snippetLimit {
		msg = msg[:snippetLimit-3] + "..."
	}
	return msg
}

// artifactPaths returns the sorted context keys that name artifacts on disk.
func artifactPaths(final pipeline.Values) []string {
	var keys []string
	for key := range final {
		if strings.HasSuffix(key, "path") {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}
