package app

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/vk/reelpipego/internal/compose"
	"github.com/vk/reelpipego/internal/ctxlog"
	"github.com/vk/reelpipego/internal/pipeline"
	"github.com/vk/reelpipego/internal/report"
)

// Run executes the main application logic based on the provided configuration.
func (a *App) Run(ctx context.Context, cfg *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if cfg.HealthcheckPort > 0 {
		a.startHealthcheckServer(cfg.HealthcheckPort)
	}

	builder, ok := a.registry.Lookup(cfg.PipelineID)
	if !ok {
		return fmt.Errorf("unknown pipeline %q, available: %s",
			cfg.PipelineID, strings.Join(a.registry.IDs(), ", "))
	}

	a.logger.Debug("Composing pipeline definition.", "pipeline", cfg.PipelineID)
	def, err := builder(a.model, cfg.Sample)
	if err != nil {
		return fmt.Errorf("failed to compose pipeline %q: %w", cfg.PipelineID, err)
	}
	a.logger.Debug("Pipeline composed.", "steps", len(def.Steps))

	order, err := pipeline.Resolve(def)
	if err != nil {
		return fmt.Errorf("failed to resolve pipeline order: %w", err)
	}

	if cfg.DryRun {
		a.logger.Info("🧪 Dry run requested, printing plan only.")
		report.RenderPlan(a.outW, def, order)
		return nil
	}

	if err := os.MkdirAll(a.model.Settings.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	initial := pipeline.Values{
		compose.KeyKeepArtifacts: strconv.FormatBool(cfg.KeepArtifacts),
	}
	if cfg.Sample != "" {
		initial[compose.KeySampleID] = cfg.Sample
	}

	a.logger.Info("🚀 Starting sequential execution...", "pipeline", def.ID, "steps", len(order))
	res := pipeline.Run(ctx, def, initial)
	a.logger.Info("🏁 Execution finished.", "status", res.Status.String())

	final := res.Final(initial)
	report.Render(a.outW, res, final, cfg.Verbose)

	if cfg.ReportPath != "" {
		if err := report.WriteJSON(cfg.ReportPath, res); err != nil {
			return err
		}
		a.logger.Info("📄 Run report written.", "path", cfg.ReportPath)
	}

	if code := report.ExitCode(res); code != 0 {
		return fmt.Errorf("pipeline %q failed: %s", def.ID, res.ErrorMessage)
	}
	return nil
}
