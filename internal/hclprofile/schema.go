package hclprofile

import "github.com/hashicorp/hcl/v2"

// settingsBlock mirrors the `settings` block of a profile file. Durations
// are decoded as strings and parsed by the loader.
type settingsBlock struct {
	RepoRoot         string `hcl:"repo_root,optional"`
	OutputDir        string `hcl:"output_dir,optional"`
	PythonBin        string `hcl:"python_bin,optional"`
	FFmpegBin        string `hcl:"ffmpeg_bin,optional"`
	RendererEndpoint string `hcl:"renderer_endpoint,optional"`
	StepTimeout      string `hcl:"step_timeout,optional"`
}

// unitBlock mirrors a `unit "<name>"` block: one clip descriptor.
type unitBlock struct {
	Name           string `hcl:"name,label"`
	Prompt         string `hcl:"prompt"`
	NegativePrompt string `hcl:"negative_prompt,optional"`
	Seed           int    `hcl:"seed,optional"`
	Frames         int    `hcl:"frames,optional"`
	FPS            int    `hcl:"fps,optional"`
}

// varsBlock captures the raw `vars` body; its attributes are evaluated
// before the rest of the file so units can interpolate them.
type varsBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// profileFile is the top-level structure of a single profile file.
type profileFile struct {
	Settings *settingsBlock `hcl:"settings,block"`
	Vars     *varsBlock     `hcl:"vars,block"`
	Units    []*unitBlock   `hcl:"unit,block"`
}

// varsOnlySchema extracts just the vars block in the first decoding pass.
var varsOnlySchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "vars"},
	},
}
