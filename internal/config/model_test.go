package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModel_ApplyDefaults(t *testing.T) {
	t.Parallel()

	m := &Model{Units: []*Unit{{Name: "a", Prompt: "p"}}}
	m.ApplyDefaults()

	assert.Equal(t, "output", m.Settings.OutputDir)
	assert.Equal(t, "python3", m.Settings.PythonBin)
	assert.Equal(t, "ffmpeg", m.Settings.FFmpegBin)
	assert.Equal(t, 10*time.Minute, m.Settings.StepTimeout)
	assert.Equal(t, 81, m.Units[0].Frames)
	assert.Equal(t, 16, m.Units[0].FPS)
}

func TestModel_ApplyDefaultsKeepsExplicitValues(t *testing.T) {
	t.Parallel()

	m := &Model{
		Settings: &Settings{PythonBin: "/opt/python", StepTimeout: time.Minute},
		Units:    []*Unit{{Name: "a", Prompt: "p", Frames: 33, FPS: 30}},
	}
	m.ApplyDefaults()

	assert.Equal(t, "/opt/python", m.Settings.PythonBin)
	assert.Equal(t, time.Minute, m.Settings.StepTimeout)
	assert.Equal(t, 33, m.Units[0].Frames)
	assert.Equal(t, 30, m.Units[0].FPS)
}

func TestModel_Validate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		model   *Model
		wantErr string
	}{
		{"valid", &Model{Units: []*Unit{{Name: "a", Prompt: "p"}}}, ""},
		{"no units", &Model{}, "no units"},
		{"empty name", &Model{Units: []*Unit{{Prompt: "p"}}}, "empty name"},
		{"duplicate name", &Model{Units: []*Unit{{Name: "a", Prompt: "p"}, {Name: "a", Prompt: "q"}}}, "duplicate unit name"},
		{"no prompt", &Model{Units: []*Unit{{Name: "a"}}}, "no prompt"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := tc.model.Validate()
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestModel_UnitLookup(t *testing.T) {
	t.Parallel()

	m := &Model{Units: []*Unit{{Name: "intro", Prompt: "p"}}}
	require.NotNil(t, m.Unit("intro"))
	assert.Nil(t, m.Unit("ghost"))
}
