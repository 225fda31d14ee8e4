package compose

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vk/reelpipego/internal/config"
	"github.com/vk/reelpipego/internal/ctxlog"
	"github.com/vk/reelpipego/internal/execstep"
	"github.com/vk/reelpipego/internal/pipeline"
)

// Narrative builds the multi-unit pipeline: the clip chain replicated per
// unit descriptor, followed by a join step that concatenates every unit's
// clip into one narrative, and a summarize step that reports per-unit data.
//
// join requires every unit's record stage; summarize is only ordered after
// them and tolerates their failure. The asymmetry is deliberate: when one
// unit fails, join is skipped but summarize still reports the units that
// made it through.
func Narrative(model *config.Model, _ string) (pipeline.Definition, error) {
	s := model.Settings
	def := pipeline.Definition{
		ID:          "narrative",
		Description: fmt.Sprintf("generate and join %d clips into one narrative", len(model.Units)),
	}

	recordIDs := make([]string, 0, len(model.Units))
	for _, unit := range model.Units {
		def.Steps = append(def.Steps, unitSteps(s, unit, unit.Name)...)
		recordIDs = append(recordIDs, "record."+unit.Name)
	}

	listPath := filepath.Join(s.OutputDir, "narrative-concat.txt")
	narrativePath := filepath.Join(s.OutputDir, "narrative.mp4")
	summaryPath := filepath.Join(s.OutputDir, "narrative-summary.json")

	def.Steps = append(def.Steps,
		pipeline.Step{
			ID:          "join",
			Description: "concatenate every unit clip into the narrative artifact",
			DependsOn:   recordIDs,
			Command:     joinSpec(s, listPath, narrativePath).CommandLine(),
			Action:      joinAction(s, model.Units, listPath, narrativePath),
		},
		pipeline.Step{
			ID:          "summarize",
			Description: "write a best-effort summary of every unit's results",
			After:       recordIDs,
			Action:      summarizeAction(model.Units, summaryPath),
		},
	)
	return def, nil
}

// joinSpec is the ffmpeg concat invocation; split out so the dry-run output
// shows the concrete command.
func joinSpec(s *config.Settings, listPath, narrativePath string) execstep.Spec {
	return execstep.Spec{
		Path: s.FFmpegBin,
		Args: []string{
			"-y", "-f", "concat", "-safe", "0",
			"-i", listPath,
			"-c", "copy",
			narrativePath,
		},
		Dir:     s.RepoRoot,
		Timeout: s.StepTimeout,
	}
}

// joinAction collects the per-unit clip paths from the run context, writes
// the ffmpeg concat list, and launches the join command.
func joinAction(s *config.Settings, units []*config.Unit, listPath, narrativePath string) pipeline.Action {
	return func(ctx context.Context, view pipeline.Values) pipeline.Result {
		var lines []string
		for _, u := range units {
			path, ok := view[ClipKey(u.Name)]
			if !ok {
				return pipeline.Fail(fmt.Sprintf("clip path for unit %q missing from run context", u.Name))
			}
			lines = append(lines, fmt.Sprintf("file '%s'", path))
		}
		if err := os.WriteFile(listPath, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
			return pipeline.Fail(fmt.Sprintf("writing concat list: %v", err))
		}

		res := execstep.Command(joinSpec(s, listPath, narrativePath))(ctx, view)
		if res.Status == pipeline.Succeeded {
			if res.Updates == nil {
				res.Updates = pipeline.Values{}
			}
			res.Updates[KeyNarrativePath] = narrativePath
		}
		return res
	}
}

// unitSummary is one entry of the narrative summary report.
type unitSummary struct {
	Unit      string `json:"unit"`
	Completed bool   `json:"completed"`
	ClipPath  string `json:"clip_path,omitempty"`
	Quality   string `json:"quality,omitempty"`
	Benchmark string `json:"benchmark,omitempty"`
	Metadata  string `json:"metadata,omitempty"`
}

// summarizeAction builds the per-unit JSON summary from whatever the run
// context holds. Units that never produced a clip are reported as incomplete
// rather than failing the step; the summary is informational only.
func summarizeAction(units []*config.Unit, summaryPath string) pipeline.Action {
	return func(ctx context.Context, view pipeline.Values) pipeline.Result {
		logger := ctxlog.FromContext(ctx)

		entries := make([]unitSummary, 0, len(units))
		for _, u := range units {
			entry := unitSummary{Unit: u.Name}
			if path, ok := view[ClipKey(u.Name)]; ok {
				entry.ClipPath = path
			}
			entry.Quality = view[ValidationKey(u.Name)]
			entry.Benchmark = view[BenchmarkKey(u.Name)]
			entry.Metadata = view[MetadataKey(u.Name)]
			entry.Completed = entry.Metadata != ""
			entries = append(entries, entry)
		}

		summary := map[string]any{
			"sample_id": view[KeySampleID],
			"units":     entries,
		}
		encoded, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return pipeline.Fail(fmt.Sprintf("encoding summary: %v", err))
		}

		// The on-disk copy is best effort; the context copy is the contract.
		if err := os.WriteFile(summaryPath, append(encoded, '\n'), 0o644); err != nil {
			logger.Warn("Could not persist narrative summary.", "path", summaryPath, "error", err)
		}

		return pipeline.Succeed(pipeline.Values{KeyNarrativeSummary: string(encoded)})
	}
}
