// Package hclprofile loads reelpipego profiles written in HCL into the
// format-agnostic config model. Profiles consist of a `settings` block, an
// optional `vars` block whose attributes become interpolation variables, and
// one `unit` block per clip descriptor.
package hclprofile

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/reelpipego/internal/config"
	"github.com/vk/reelpipego/internal/ctxlog"
	"github.com/vk/reelpipego/internal/fsutil"
)

// Loader is the HCL implementation of config.Loader.
type Loader struct {
	parser *hclparse.Parser
}

// NewLoader creates a Loader with a fresh HCL parser.
func NewLoader() *Loader {
	return &Loader{parser: hclparse.NewParser()}
}

// Load parses every .hcl file reachable from the given paths (files are taken
// as-is, directories are searched recursively) and merges them into one
// model. Later files override settings attributes; units accumulate in file
// order so narrative ordering follows the profile.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)

	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("profile path %q: %w", path, err)
		}
		if info.IsDir() {
			found, err := fsutil.FindFilesByExtension(path, ".hcl")
			if err != nil {
				return nil, fmt.Errorf("searching %q for profiles: %w", path, err)
			}
			files = append(files, found...)
		} else {
			files = append(files, path)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no profile files found under %v", paths)
	}
	logger.Debug("Profile files discovered.", "count", len(files))

	model := &config.Model{}
	for _, file := range files {
		if err := l.loadFile(ctx, file, model); err != nil {
			return nil, err
		}
	}

	model.ApplyDefaults()
	if err := model.Validate(); err != nil {
		return nil, fmt.Errorf("profile invalid: %w", err)
	}
	logger.Debug("Profile model loaded.", "units", len(model.Units))
	return model, nil
}

// loadFile parses one file and merges its blocks into the model.
func (l *Loader) loadFile(ctx context.Context, path string, model *config.Model) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Parsing profile file.", "path", path)

	f, diags := l.parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return fmt.Errorf("parsing %q: %w", path, diags)
	}

	evalCtx, err := buildEvalContext(f.Body)
	if err != nil {
		return fmt.Errorf("evaluating vars in %q: %w", path, err)
	}

	var pf profileFile
	if diags := gohcl.DecodeBody(f.Body, evalCtx, &pf); diags.HasErrors() {
		return fmt.Errorf("decoding %q: %w", path, diags)
	}

	if pf.Settings != nil {
		if model.Settings != nil {
			logger.Warn("Settings block redefined, later file wins.", "path", path)
		}
		settings, err := translateSettings(pf.Settings)
		if err != nil {
			return fmt.Errorf("settings in %q: %w", path, err)
		}
		model.Settings = settings
	}
	for _, u := range pf.Units {
		model.Units = append(model.Units, &config.Unit{
			Name:           u.Name,
			Prompt:         u.Prompt,
			NegativePrompt: u.NegativePrompt,
			Seed:           u.Seed,
			Frames:         u.Frames,
			FPS:            u.FPS,
		})
	}
	return nil
}

// buildEvalContext runs the first decoding pass: it extracts the `vars`
// block, evaluates every attribute to a cty value, and exposes the result as
// `vars.*` for the full decode. Vars must be self-contained expressions; they
// cannot reference other vars.
func buildEvalContext(body hcl.Body) (*hcl.EvalContext, error) {
	content, _, diags := body.PartialContent(varsOnlySchema)
	if diags.HasErrors() {
		return nil, diags
	}

	values := make(map[string]cty.Value)
	for _, block := range content.Blocks {
		attrs, diags := block.Body.JustAttributes()
		if diags.HasErrors() {
			return nil, diags
		}
		for name, attr := range attrs {
			val, diags := attr.Expr.Value(nil)
			if diags.HasErrors() {
				return nil, fmt.Errorf("var %q: %w", name, diags)
			}
			values[name] = val
		}
	}

	evalCtx := &hcl.EvalContext{Variables: map[string]cty.Value{}}
	if len(values) > 0 {
		evalCtx.Variables["vars"] = cty.ObjectVal(values)
	}
	return evalCtx, nil
}

// translateSettings converts the HCL settings schema into the agnostic model.
func translateSettings(s *settingsBlock) (*config.Settings, error) {
	out := &config.Settings{
		RepoRoot:         s.RepoRoot,
		OutputDir:        s.OutputDir,
		PythonBin:        s.PythonBin,
		FFmpegBin:        s.FFmpegBin,
		RendererEndpoint: s.RendererEndpoint,
	}
	if s.StepTimeout != "" {
		d, err := time.ParseDuration(s.StepTimeout)
		if err != nil {
			return nil, fmt.Errorf("step_timeout: %w", err)
		}
		out.StepTimeout = d
	}
	return out, nil
}
