package compose

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/vk/reelpipego/internal/config"
	"github.com/vk/reelpipego/internal/execstep"
	"github.com/vk/reelpipego/internal/pipeline"
)

// Clip builds the single-unit pipeline: a linear chain of
// generate -> postprocess -> validate -> benchmark -> record, each stage
// depending on the previous one, so an early failure skips everything
// downstream.
//
// The sample argument selects the unit by name; empty selects the first
// declared unit.
func Clip(model *config.Model, sample string) (pipeline.Definition, error) {
	unit, err := selectUnit(model, sample)
	if err != nil {
		return pipeline.Definition{}, err
	}
	return pipeline.Definition{
		ID:          "clip",
		Description: fmt.Sprintf("generate and qualify clip %q", unit.Name),
		Steps:       unitSteps(model.Settings, unit, ""),
	}, nil
}

// selectUnit resolves the sample name against the profile units.
func selectUnit(model *config.Model, sample string) (*config.Unit, error) {
	if len(model.Units) == 0 {
		return nil, fmt.Errorf("profile defines no units")
	}
	if sample == "" {
		return model.Units[0], nil
	}
	if unit := model.Unit(sample); unit != nil {
		return unit, nil
	}
	return nil, fmt.Errorf("unknown unit %q", sample)
}

// unitSteps builds the five-stage chain for one unit. With a non-empty
// suffix the step ids become "<stage>.<suffix>", letting the narrative
// composer replicate the template per unit.
func unitSteps(s *config.Settings, u *config.Unit, suffix string) []pipeline.Step {
	id := func(stage string) string {
		if suffix == "" {
			return stage
		}
		return stage + "." + suffix
	}

	rawPath := filepath.Join(s.OutputDir, u.Name+"-raw.mp4")
	clipPath := filepath.Join(s.OutputDir, u.Name+".mp4")
	metadataPath := filepath.Join(s.OutputDir, u.Name+"-metadata.json")

	generateArgs := []string{
		filepath.Join(s.RepoRoot, "scripts", "generate_clip.py"),
		"--endpoint", s.RendererEndpoint,
		"--prompt", u.Prompt,
		"--seed", strconv.Itoa(u.Seed),
		"--frames", strconv.Itoa(u.Frames),
		"--fps", strconv.Itoa(u.FPS),
		"--output", rawPath,
	}
	if u.NegativePrompt != "" {
		generateArgs = append(generateArgs, "--negative-prompt", u.NegativePrompt)
	}

	generate := execstep.Spec{
		Path:      s.PythonBin,
		Args:      generateArgs,
		Dir:       s.RepoRoot,
		Timeout:   s.StepTimeout,
		OutputKey: GenerateLogKey(u.Name),
	}
	postprocess := execstep.Spec{
		Path: s.FFmpegBin,
		Args: []string{
			"-y", "-i", rawPath,
			"-vf", fmt.Sprintf("fps=%d", u.FPS),
			"-movflags", "+faststart",
			clipPath,
		},
		Dir:     s.RepoRoot,
		Timeout: s.StepTimeout,
	}
	validate := execstep.Spec{
		Path: s.PythonBin,
		Args: []string{
			filepath.Join(s.RepoRoot, "scripts", "quality_check.py"),
			"--input", clipPath,
			"--min-score", "0.85",
		},
		Dir:       s.RepoRoot,
		Timeout:   s.StepTimeout,
		OutputKey: ValidationKey(u.Name),
	}
	benchmark := execstep.Spec{
		Path: s.PythonBin,
		Args: []string{
			filepath.Join(s.RepoRoot, "scripts", "benchmark_metrics.py"),
			"--input", clipPath,
		},
		Dir:       s.RepoRoot,
		Timeout:   s.StepTimeout,
		OutputKey: BenchmarkKey(u.Name),
	}
	record := execstep.Spec{
		Path: s.PythonBin,
		Args: []string{
			filepath.Join(s.RepoRoot, "scripts", "record_metadata.py"),
			"--input", clipPath,
			"--prompt", u.Prompt,
			"--seed", strconv.Itoa(u.Seed),
			"--output", metadataPath,
		},
		Dir:     s.RepoRoot,
		Timeout: s.StepTimeout,
	}

	return []pipeline.Step{
		{
			ID:          id("generate"),
			Description: fmt.Sprintf("render clip %q via %s", u.Name, s.RendererEndpoint),
			Command:     generate.CommandLine(),
			Action:      withStatic(execstep.Command(generate), pipeline.Values{RawClipKey(u.Name): rawPath}),
		},
		{
			ID:          id("postprocess"),
			Description: fmt.Sprintf("re-encode clip %q for delivery", u.Name),
			DependsOn:   []string{id("generate")},
			Command:     postprocess.CommandLine(),
			Action:      withStatic(execstep.Command(postprocess), pipeline.Values{ClipKey(u.Name): clipPath}),
		},
		{
			ID:          id("validate"),
			Description: fmt.Sprintf("score clip %q against the quality threshold", u.Name),
			DependsOn:   []string{id("postprocess")},
			Command:     validate.CommandLine(),
			Action:      execstep.Command(validate),
		},
		{
			ID:          id("benchmark"),
			Description: fmt.Sprintf("compute benchmark metrics for clip %q", u.Name),
			DependsOn:   []string{id("validate")},
			Command:     benchmark.CommandLine(),
			Action:      execstep.Command(benchmark),
		},
		{
			ID:          id("record"),
			Description: fmt.Sprintf("persist metadata for clip %q", u.Name),
			DependsOn:   []string{id("benchmark")},
			Command:     record.CommandLine(),
			Action:      withStatic(execstep.Command(record), pipeline.Values{MetadataKey(u.Name): metadataPath}),
		},
		{
			ID:          id("cleanup"),
			Description: fmt.Sprintf("remove the raw render for clip %q unless artifacts are kept", u.Name),
			DependsOn:   []string{id("record")},
			Action:      cleanupAction(rawPath),
		},
	}
}

// cleanupAction removes the unit's raw render once the clip is fully
// qualified. The keep_artifacts context toggle retains it instead; a raw
// clip that never materialized is not an error.
func cleanupAction(rawPath string) pipeline.Action {
	return func(ctx context.Context, view pipeline.Values) pipeline.Result {
		if view[KeyKeepArtifacts] == "true" {
			return pipeline.Succeed(nil)
		}
		if err := os.Remove(rawPath); err != nil && !os.IsNotExist(err) {
			return pipeline.Fail(fmt.Sprintf("removing raw clip %q: %v", rawPath, err))
		}
		return pipeline.Succeed(nil)
	}
}

// withStatic merges compose-time known updates (artifact paths) into a
// successful result on top of whatever the wrapped action produced.
func withStatic(action pipeline.Action, static pipeline.Values) pipeline.Action {
	return func(ctx context.Context, view pipeline.Values) pipeline.Result {
		res := action(ctx, view)
		if res.Status == pipeline.Succeeded {
			if res.Updates == nil {
				res.Updates = pipeline.Values{}
			}
			res.Updates.Merge(static)
		}
		return res
	}
}
