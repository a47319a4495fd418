package pipeline

import (
	"context"
	"log/slog"
)

// Observer receives stage and run lifecycle events.
// Calls happen on the goroutine executing the run.
type Observer interface {
	StageStarted(ctx context.Context, runID string, stage *Stage)
	StageFinished(ctx context.Context, runID string, result *StageResult)
	StageFailed(ctx context.Context, runID string, stage *Stage, err error)
	RunFinished(ctx context.Context, result *Result)
}

// NopObserver ignores every event, embed it to implement a subset of Observer
type NopObserver struct{}

func (NopObserver) StageStarted(context.Context, string, *Stage)        {}
func (NopObserver) StageFinished(context.Context, string, *StageResult) {}
func (NopObserver) StageFailed(context.Context, string, *Stage, error)  {}
func (NopObserver) RunFinished(context.Context, *Result)                {}

var _ Observer = NopObserver{}

// LogObserver logs events with slog
type LogObserver struct {
	logger *slog.Logger
}

var _ Observer = (*LogObserver)(nil)

// NewLogObserver returns a LogObserver, slog.Default() is used when logger is nil
func NewLogObserver(logger *slog.Logger) *LogObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogObserver{logger: logger}
}

func (o *LogObserver) StageStarted(ctx context.Context, runID string, stage *Stage) {
	o.logger.InfoContext(ctx, "stage started", "run_id", runID, "stage", stage.Name, "phase", int(stage.Phase), "model", stage.Model)
}

func (o *LogObserver) StageFinished(ctx context.Context, runID string, result *StageResult) {
	args := []any{"run_id", runID, "stage", result.Name, "elapsed", result.Elapsed, "prompt_tokens", result.PromptTokens}
	if result.Usage != nil {
		args = append(args, "input_tokens", result.Usage.InputTokens, "output_tokens", result.Usage.OutputTokens)
	}
	o.logger.InfoContext(ctx, "stage finished", args...)
}

func (o *LogObserver) StageFailed(ctx context.Context, runID string, stage *Stage, err error) {
	o.logger.ErrorContext(ctx, "stage failed", "run_id", runID, "stage", stage.Name, "error", err)
}

func (o *LogObserver) RunFinished(ctx context.Context, result *Result) {
	if result.Err != nil {
		o.logger.WarnContext(ctx, "run failed", "run_id", result.RunID, "state", result.State.String(), "failed_stage", result.FailedStage(), "elapsed", result.Elapsed, "stages", result.Len())
		return
	}
	usage := result.Usage()
	o.logger.InfoContext(ctx, "run finished", "run_id", result.RunID, "state", result.State.String(), "elapsed", result.Elapsed, "input_tokens", usage.InputTokens, "output_tokens", usage.OutputTokens)
}

// Observers fans events out to every observer in order
type Observers []Observer

var _ Observer = Observers(nil)

func (obs Observers) StageStarted(ctx context.Context, runID string, stage *Stage) {
	for _, o := range obs {
		o.StageStarted(ctx, runID, stage)
	}
}

func (obs Observers) StageFinished(ctx context.Context, runID string, result *StageResult) {
	for _, o := range obs {
		o.StageFinished(ctx, runID, result)
	}
}

func (obs Observers) StageFailed(ctx context.Context, runID string, stage *Stage, err error) {
	for _, o := range obs {
		o.StageFailed(ctx, runID, stage, err)
	}
}

func (obs Observers) RunFinished(ctx context.Context, result *Result) {
	for _, o := range obs {
		o.RunFinished(ctx, result)
	}
}
