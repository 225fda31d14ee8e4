package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/reelpipego/internal/hclprofile"
)

// writeTestProfile writes a two-unit profile whose external tools are
// /bin/true, so every command step succeeds without real renderers installed.
func writeTestProfile(t *testing.T) (profilePath, outDir string) {
	t.Helper()
	dir := t.TempDir()
	outDir = filepath.Join(dir, "out")
	profilePath = filepath.Join(dir, "profile.hcl")

	profile := `
settings {
  repo_root         = "` + dir + `"
  output_dir        = "` + outDir + `"
  python_bin        = "/bin/true"
  ffmpeg_bin        = "/bin/true"
  renderer_endpoint = "http://localhost:8188"
  step_timeout      = "30s"
}

unit "intro" {
  prompt = "a castle at dawn"
}

unit "finale" {
  prompt = "fireworks over the castle"
}
`
	require.NoError(t, os.WriteFile(profilePath, []byte(profile), 0o644))
	return profilePath, outDir
}

// baseConfig returns a quiet config pointing at the given profile.
func baseConfig(profilePath string) *Config {
	return &Config{
		ProfilePath: profilePath,
		PipelineID:  "clip",
		LogFormat:   "text",
		LogLevel:    "error",
	}
}

func TestAppRun_NarrativeHappyPath(t *testing.T) {
	t.Parallel()

	profilePath, outDir := writeTestProfile(t)
	cfg := baseConfig(profilePath)
	cfg.PipelineID = "narrative"
	cfg.Sample = "nightly"

	var buf bytes.Buffer
	a, err := NewApp(&buf, cfg, hclprofile.NewLoader())
	require.NoError(t, err)

	require.NoError(t, a.Run(context.Background(), cfg))

	out := buf.String()
	assert.Contains(t, out, `Pipeline "narrative" succeeded`)
	assert.Contains(t, out, "narrative.path = "+filepath.Join(outDir, "narrative.mp4"))

	// The summarize step persisted its report next to the artifacts.
	_, statErr := os.Stat(filepath.Join(outDir, "narrative-summary.json"))
	assert.NoError(t, statErr)
}

func TestAppRun_DryRunExecutesNothing(t *testing.T) {
	t.Parallel()

	profilePath, outDir := writeTestProfile(t)
	cfg := baseConfig(profilePath)
	cfg.DryRun = true

	var buf bytes.Buffer
	a, err := NewApp(&buf, cfg, hclprofile.NewLoader())
	require.NoError(t, err)

	require.NoError(t, a.Run(context.Background(), cfg), "dry run never fails")

	out := buf.String()
	assert.Contains(t, out, "dry run, nothing executed")
	assert.Contains(t, out, "$ /bin/true")
	assert.Contains(t, out, "generate_clip.py")

	// No output directory is created and no artifact is touched.
	_, statErr := os.Stat(outDir)
	assert.True(t, os.IsNotExist(statErr), "dry run must not create the output directory")
}

func TestAppRun_UnknownPipeline(t *testing.T) {
	t.Parallel()

	profilePath, _ := writeTestProfile(t)
	cfg := baseConfig(profilePath)
	cfg.PipelineID = "ghost"

	var buf bytes.Buffer
	a, err := NewApp(&buf, cfg, hclprofile.NewLoader())
	require.NoError(t, err)

	err = a.Run(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown pipeline "ghost"`)
	assert.Contains(t, err.Error(), "clip, narrative")
}

func TestAppRun_FailedStepYieldsErrorAndReport(t *testing.T) {
	t.Parallel()

	profilePath, _ := writeTestProfile(t)
	reportPath := filepath.Join(t.TempDir(), "report.json")

	cfg := baseConfig(profilePath)
	cfg.ReportPath = reportPath
	// /bin/false makes the generate stage fail immediately.
	cfg.TimeoutOverride = 0

	var buf bytes.Buffer
	a, err := NewApp(&buf, cfg, hclprofile.NewLoader())
	require.NoError(t, err)
	a.model.Settings.PythonBin = "/bin/false"

	err = a.Run(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `pipeline "clip" failed`)

	out := buf.String()
	assert.Contains(t, out, `Pipeline "clip" failed`)
	assert.Contains(t, out, "skipped")

	data, readErr := os.ReadFile(reportPath)
	require.NoError(t, readErr)
	assert.Contains(t, string(data), `"status": "failed"`)
}

func TestAppRun_KeepArtifactsControlsRawClipCleanup(t *testing.T) {
	t.Parallel()

	// runClip seeds a pre-existing raw clip and runs the clip pipeline with
	// the given retention toggle.
	runClip := func(t *testing.T, keep bool) (rawPath string) {
		profilePath, outDir := writeTestProfile(t)
		require.NoError(t, os.MkdirAll(outDir, 0o755))
		rawPath = filepath.Join(outDir, "intro-raw.mp4")
		require.NoError(t, os.WriteFile(rawPath, []byte("frames"), 0o644))

		cfg := baseConfig(profilePath)
		cfg.KeepArtifacts = keep

		var buf bytes.Buffer
		a, err := NewApp(&buf, cfg, hclprofile.NewLoader())
		require.NoError(t, err)
		require.NoError(t, a.Run(context.Background(), cfg))
		return rawPath
	}

	t.Run("default removes the raw clip", func(t *testing.T) {
		t.Parallel()
		rawPath := runClip(t, false)
		_, err := os.Stat(rawPath)
		assert.True(t, os.IsNotExist(err), "raw clip must be cleaned up by default")
	})

	t.Run("keep-artifacts retains the raw clip", func(t *testing.T) {
		t.Parallel()
		rawPath := runClip(t, true)
		_, err := os.Stat(rawPath)
		assert.NoError(t, err, "raw clip must survive with -keep-artifacts")
	})
}

func TestAppRun_SampleSelectsUnit(t *testing.T) {
	t.Parallel()

	profilePath, outDir := writeTestProfile(t)
	cfg := baseConfig(profilePath)
	cfg.Sample = "finale"

	var buf bytes.Buffer
	a, err := NewApp(&buf, cfg, hclprofile.NewLoader())
	require.NoError(t, err)

	require.NoError(t, a.Run(context.Background(), cfg))
	assert.Contains(t, buf.String(), "clip.finale.path = "+filepath.Join(outDir, "finale.mp4"))
}
