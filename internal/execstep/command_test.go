package execstep

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/reelpipego/internal/pipeline"
)

func TestCommand_ExitZeroCapturesStdout(t *testing.T) {
	t.Parallel()

	action := Command(Spec{
		Path:      "/bin/sh",
		Args:      []string{"-c", "echo rendered 42 frames"},
		Timeout:   10 * time.Second,
		OutputKey: "generate.log",
	})

	res := action(context.Background(), nil)

	require.Equal(t, pipeline.Succeeded, res.Status)
	assert.Equal(t, "rendered 42 frames", res.Updates["generate.log"])
	assert.Empty(t, res.ErrorMessage)
}

func TestCommand_NonzeroExitCarriesStderrTail(t *testing.T) {
	t.Parallel()

	action := Command(Spec{
		Path:    "/bin/sh",
		Args:    []string{"-c", "echo 'model weights missing' >&2; exit 7"},
		Timeout: 10 * time.Second,
	})

	res := action(context.Background(), nil)

	require.Equal(t, pipeline.Failed, res.Status)
	assert.Contains(t, res.ErrorMessage, "exited with code 7")
	assert.Contains(t, res.ErrorMessage, "model weights missing")
}

func TestCommand_TimeoutKillsChild(t *testing.T) {
	t.Parallel()

	// The shell records its pid and then execs into sleep, so the recorded
	// pid is the process the runner must kill on timeout.
	pidFile := filepath.Join(t.TempDir(), "child.pid")
	start := time.Now()
	action := Command(Spec{
		Path:    "/bin/sh",
		Args:    []string{"-c", fmt.Sprintf("echo $$ > %s; exec sleep 30", pidFile)},
		Timeout: 200 * time.Millisecond,
	})

	res := action(context.Background(), nil)

	require.Equal(t, pipeline.Failed, res.Status)
	assert.Contains(t, res.ErrorMessage, "timed out after 200ms")
	// The action returns once the child is gone, well before the sleep ends.
	assert.Less(t, time.Since(start), 5*time.Second)

	data, err := os.ReadFile(pidFile)
	require.NoError(t, err)
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	require.NoError(t, err)
	// Signal 0 probes for existence without delivering anything.
	require.ErrorIs(t, syscall.Kill(pid, 0), syscall.ESRCH,
		"child must no longer be running after the timeout")
}

func TestCommand_MissingExecutable(t *testing.T) {
	t.Parallel()

	action := Command(Spec{Path: "/no/such/binary-xyz"})
	res := action(context.Background(), nil)

	require.Equal(t, pipeline.Failed, res.Status)
	assert.Contains(t, res.ErrorMessage, "could not be started")
}

func TestCommand_EnvOverlayReachesChild(t *testing.T) {
	t.Parallel()

	action := Command(Spec{
		Path:      "/bin/sh",
		Args:      []string{"-c", "printf '%s' \"$RENDERER_ENDPOINT\""},
		Env:       map[string]string{"RENDERER_ENDPOINT": "http://localhost:8188"},
		Timeout:   10 * time.Second,
		OutputKey: "out",
	})

	res := action(context.Background(), nil)

	require.Equal(t, pipeline.Succeeded, res.Status)
	assert.Equal(t, "http://localhost:8188", res.Updates["out"])
}

func TestCommand_WorkingDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	action := Command(Spec{
		Path:      "/bin/sh",
		Args:      []string{"-c", "pwd"},
		Dir:       dir,
		Timeout:   10 * time.Second,
		OutputKey: "pwd",
	})

	res := action(context.Background(), nil)

	require.Equal(t, pipeline.Succeeded, res.Status)
	assert.Contains(t, res.Updates["pwd"], dir)
}

func TestNoOp_SucceedsImmediately(t *testing.T) {
	t.Parallel()

	res := NoOp()(context.Background(), nil)
	assert.Equal(t, pipeline.Succeeded, res.Status)
	assert.Empty(t, res.Updates)
}

func TestSpec_CommandLine(t *testing.T) {
	t.Parallel()

	spec := Spec{
		Path: "python3",
		Args: []string{"scripts/generate_clip.py", "--prompt", "a castle at dawn"},
	}
	assert.Equal(t, `python3 scripts/generate_clip.py --prompt "a castle at dawn"`, spec.CommandLine())
}

func TestTailLines_BoundsOutput(t *testing.T) {
	t.Parallel()

	var lines []string
	for i := 0; i < 50; i++ {
		lines = append(lines, fmt.Sprintf("line-%d", i))
	}
	tail := tailLines(strings.Join(lines, "\n"), 20)

	got := strings.Split(tail, "\n")
	require.Len(t, got, 20)
	assert.Equal(t, "line-30", got[0])
	assert.Equal(t, "line-49", got[19])

	assert.Equal(t, "(no stderr output)", tailLines("", 20))
}
