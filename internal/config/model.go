package config

import (
	"fmt"
	"time"
)

// Model is the unified representation of a loaded profile: global settings
// plus the ordered list of unit descriptors a narrative is built from.
type Model struct {
	Settings *Settings
	Units    []*Unit
}

// Settings carries every would-be global knob. It is threaded explicitly
// into the composers at build time so concurrent runs cannot interfere
// through ambient state.
type Settings struct {
	// RepoRoot anchors relative script paths.
	RepoRoot string
	// OutputDir receives generated artifacts and reports.
	OutputDir string
	// PythonBin launches the generation and scoring scripts.
	PythonBin string
	// FFmpegBin performs post-processing and narrative joins.
	FFmpegBin string
	// RendererEndpoint is the media-generation service the generate stage
	// submits work to.
	RendererEndpoint string
	// StepTimeout is the default deadline applied to external-command steps.
	StepTimeout time.Duration
}

// Unit describes one clip to generate: the prompt pair and the sampling
// parameters forwarded to the renderer.
type Unit struct {
	Name           string
	Prompt         string
	NegativePrompt string
	Seed           int
	Frames         int
	FPS            int
}

// defaultStepTimeout applies when a profile does not set step_timeout.
const defaultStepTimeout = 10 * time.Minute

// ApplyDefaults fills unset settings with their defaults.
func (m *Model) ApplyDefaults() {
	if m.Settings == nil {
		m.Settings = &Settings{}
	}
	s := m.Settings
	if s.OutputDir == "" {
		s.OutputDir = "output"
	}
	if s.PythonBin == "" {
		s.PythonBin = "python3"
	}
	if s.FFmpegBin == "" {
		s.FFmpegBin = "ffmpeg"
	}
	if s.StepTimeout <= 0 {
		s.StepTimeout = defaultStepTimeout
	}
	for _, u := range m.Units {
		if u.Frames <= 0 {
			u.Frames = 81
		}
		if u.FPS <= 0 {
			u.FPS = 16
		}
	}
}

// Validate checks the invariants the composers rely on: at least one unit,
// unique non-empty unit names, and a prompt per unit.
func (m *Model) Validate() error {
	if len(m.Units) == 0 {
		return fmt.Errorf("profile defines no units")
	}
	seen := make(map[string]bool, len(m.Units))
	for _, u := range m.Units {
		if u.Name == "" {
			return fmt.Errorf("unit with empty name")
		}
		if seen[u.Name] {
			return fmt.Errorf("duplicate unit name %q", u.Name)
		}
		seen[u.Name] = true
		if u.Prompt == "" {
			return fmt.Errorf("unit %q has no prompt", u.Name)
		}
	}
	return nil
}

// Unit returns the unit with the given name, or nil when absent.
func (m *Model) Unit(name string) *Unit {
	for _, u := range m.Units {
		if u.Name == name {
			return u
		}
	}
	return nil
}
