package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/vk/reelpipego/internal/ctxlog"
)

// Run executes the definition strictly sequentially in resolved order against
// a fresh run context seeded from initial. It is a hard boundary: no step
// failure or panic ever escapes; everything ends up recorded in the RunResult.
//
// A step whose dependencies did not all end Succeeded is marked Skipped and
// its action is never invoked, so one failure cascades to every transitive
// dependent.
func Run(ctx context.Context, def Definition, initial Values) RunResult {
	logger := ctxlog.FromContext(ctx).With("pipeline", def.ID)
	result := RunResult{
		PipelineID: def.ID,
		Status:     Succeeded,
		Steps:      make(map[string]Result, len(def.Steps)),
		StartedAt:  time.Now(),
	}

	order, err := Resolve(def)
	if err != nil {
		logger.Error("Pipeline definition is invalid.", "error", err)
		result.Status = Failed
		result.ErrorMessage = err.Error()
		result.FinishedAt = time.Now()
		return result
	}
	result.Order = order
	logger.Debug("Pipeline order resolved.", "steps", len(order))

	shared := initial.Clone()
	for _, id := range order {
		step, _ := def.step(id)
		stepLogger := logger.With("step", id)

		if blocker, ok := unmetDependency(step, result.Steps); ok {
			reason := fmt.Sprintf("skipped because dependency %q ended %s", blocker, result.Steps[blocker].Status)
			stepLogger.Warn("⏭️ Skipping step.", "reason", reason)
			result.Steps[id] = Result{Status: Skipped, ErrorMessage: reason, Updates: Values{}}
			continue
		}

		stepLogger.Info("▶️ Starting step.", "description", step.Description)
		started := time.Now()
		res := invoke(ctx, step, shared.Clone())
		res.Duration = time.Since(started)

		// Updates commit even when the step failed; later steps are skipped
		// anyway, but the report can still surface partial outputs.
		shared.Merge(res.Updates)

		switch res.Status {
		case Succeeded:
			stepLogger.Info("✅ Step succeeded.", "duration", res.Duration)
		default:
			res.Status = Failed
			if res.ErrorMessage == "" {
				res.ErrorMessage = "step reported failure without a message"
			}
			stepLogger.Error("❌ Step failed.", "error", res.ErrorMessage, "duration", res.Duration)
			result.Status = Failed
		}
		result.Steps[id] = res
	}

	if result.Status == Failed && result.ErrorMessage == "" {
		result.ErrorMessage = firstFailure(order, result.Steps)
	}
	result.FinishedAt = time.Now()
	logger.Info("🏁 Pipeline finished.", "status", result.Status.String(), "duration", result.FinishedAt.Sub(result.StartedAt))
	return result
}

// Final returns the merged context as observed after the last terminal step.
// It re-runs the merge over recorded results, preserving resolved order.
func (r RunResult) Final(initial Values) Values {
	out := initial.Clone()
	for _, id := range r.Order {
		if res, ok := r.Steps[id]; ok {
			out.Merge(res.Updates)
		}
	}
	return out
}

// unmetDependency returns the first dependency (in declaration order) that
// did not end Succeeded.
func unmetDependency(step Step, done map[string]Result) (string, bool) {
	for _, dep := range step.DependsOn {
		if res, ok := done[dep]; !ok || res.Status != Succeeded {
			return dep, true
		}
	}
	return "", false
}

// invoke calls the step action, converting a panic into a Failed result so
// the runner boundary holds.
func invoke(ctx context.Context, step Step, view Values) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Fail(fmt.Sprintf("step %q panicked: %v", step.ID, r))
		}
	}()
	if step.Action == nil {
		return Fail(fmt.Sprintf("step %q has no action", step.ID))
	}
	return step.Action(ctx, view)
}

// firstFailure summarizes the earliest failed step for the run-level message.
func firstFailure(order []string, steps map[string]Result) string {
	for _, id := range order {
		if res, ok := steps[id]; ok && res.Status == Failed {
			return fmt.Sprintf("step %q failed: %s", id, res.ErrorMessage)
		}
	}
	return ""
}
