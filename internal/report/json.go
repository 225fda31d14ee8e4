package report

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/vk/reelpipego/internal/pipeline"
)

// timeUnit is the rounding applied to durations in reports.
const timeUnit = time.Millisecond

// jsonStep mirrors pipeline.Result with wire-friendly field types.
type jsonStep struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// jsonReport is the persisted form of a RunResult.
type jsonReport struct {
	PipelineID string     `json:"pipeline_id"`
	Status     string     `json:"status"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt time.Time  `json:"finished_at"`
	DurationMS int64      `json:"duration_ms"`
	Steps      []jsonStep `json:"steps"`
}

// WriteJSON serializes the run result verbatim to the given path. Steps are
// emitted in resolved order so consecutive runs diff cleanly.
func WriteJSON(path string, res pipeline.RunResult) error {
	out := jsonReport{
		PipelineID: res.PipelineID,
		Status:     res.Status.String(),
		Error:      res.ErrorMessage,
		StartedAt:  res.StartedAt,
		FinishedAt: res.FinishedAt,
		DurationMS: res.FinishedAt.Sub(res.StartedAt).Milliseconds(),
	}
	for _, id := range res.Order {
		step, ok := res.Steps[id]
		if !ok {
			continue
		}
		out.Steps = append(out.Steps, jsonStep{
			ID:         id,
			Status:     step.Status.String(),
			Error:      step.ErrorMessage,
			DurationMS: step.Duration.Milliseconds(),
		})
	}

	encoded, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding run report: %w", err)
	}
	if err := os.WriteFile(path, append(encoded, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing run report: %w", err)
	}
	return nil
}
