package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValues_CloneIsIndependent(t *testing.T) {
	t.Parallel()

	orig := Values{"a": "1"}
	clone := orig.Clone()
	clone["a"] = "2"
	clone["b"] = "3"

	assert.Equal(t, "1", orig["a"])
	assert.NotContains(t, orig, "b")
}

func TestValues_CloneOfNil(t *testing.T) {
	t.Parallel()

	var v Values
	clone := v.Clone()
	assert.NotNil(t, clone)
	assert.Empty(t, clone)
}

func TestValues_MergeLastWriteWins(t *testing.T) {
	t.Parallel()

	v := Values{"key": "old", "kept": "yes"}
	v.Merge(Values{"key": "new", "added": "1"})

	assert.Equal(t, "new", v["key"])
	assert.Equal(t, "yes", v["kept"])
	assert.Equal(t, "1", v["added"])
}

func TestStatus_StringAndTerminal(t *testing.T) {
	t.Parallel()

	cases := []struct {
		status   Status
		name     string
		terminal bool
	}{
		{Pending, "pending", false},
		{Running, "running", false},
		{Succeeded, "succeeded", true},
		{Failed, "failed", true},
		{Skipped, "skipped", true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.name, tc.status.String())
		assert.Equal(t, tc.terminal, tc.status.Terminal())
	}
}
