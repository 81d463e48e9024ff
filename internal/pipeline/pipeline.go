// Package pipeline executes the fixed stage sequence that turns a resume and
// a preferences blurb into a ranked job list: parse_resume, parse_prefs, an
// adaptive discovery loop over {find_companies, scrape_jobs, process_jobs,
// score_jobs}, aggregate, notify. The state is owned by the pipeline
// goroutine; stages run serially and fan-out work returns contributions for
// the owning stage to merge.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/ternarybob/arbor"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ternarybob/jobhunter/internal/checkpoint"
	"github.com/ternarybob/jobhunter/internal/common"
	"github.com/ternarybob/jobhunter/internal/interfaces"
	"github.com/ternarybob/jobhunter/internal/models"
	"github.com/ternarybob/jobhunter/internal/tracing"
)

// stageFunc is the uniform stage handler shape: mutate the state, return an
// error only when the stage cannot produce useful output.
type stageFunc func(ctx context.Context, state *models.PipelineState) error

// Services bundles the stage implementations behind their interfaces so any
// stage can be swapped for a fake in tests.
type Services struct {
	Intake     interfaces.IntakeService
	Discovery  interfaces.DiscoveryService
	Scraper    interfaces.ScrapeService
	Normalizer interfaces.NormalizeService
	Scorer     interfaces.ScoringService
	Reporter   interfaces.ReportService
	Notifier   interfaces.NotifyService
}

// Pipeline runs the staged sequence for one run config at a time. It is safe
// to reuse across runs; each Run call owns its own state.
type Pipeline struct {
	services    Services
	checkpoints *checkpoint.Store
	logger      arbor.ILogger
}

// New creates a pipeline. checkpoints may be nil, which disables resume and
// snapshotting regardless of the run config.
func New(services Services, checkpoints *checkpoint.Store, logger arbor.ILogger) *Pipeline {
	return &Pipeline{
		services:    services,
		checkpoints: checkpoints,
		logger:      logger,
	}
}

// Run executes the pipeline for the given run config and returns the
// terminal result. The result is always non-nil; the error reports the abort
// cause when the run did not complete cleanly. Status mapping: cost limit
// exceeded lands on partial with artifacts salvaged, every other abort lands
// on failed, and a clean run is success unless the scored list came up empty
// (partial).
func (p *Pipeline) Run(ctx context.Context, cfg models.RunConfig) (*models.RunResult, error) {
	if cfg.RunID == "" {
		cfg.RunID = common.NewRunID()
	}

	ctx, span := tracing.StartSpan(ctx, "pipeline.run", attribute.String("run_id", cfg.RunID))
	var runErr error
	defer func() { tracing.EndSpan(span, runErr) }()

	state, resumed, err := p.loadOrCreate(cfg)
	if err != nil {
		// A checkpoint that exists but cannot be trusted must never be
		// silently ignored.
		p.logger.Error().Err(err).Str("run_id", cfg.RunID).Msg("Checkpoint load failed")
		runErr = err
		state = models.NewPipelineState(cfg)
		result := models.BuildRunResult(state)
		result.Status = models.StatusFailed
		state.Result = result
		p.notifyResult(ctx, state)
		return result, runErr
	}

	p.logger.Info().
		Str("run_id", state.RunID).
		Bool("resumed", resumed).
		Int("max_discovery_iterations", state.Config.MaxDiscoveryIterations).
		Float64("max_cost_usd", state.Config.MaxCostPerRunUSD).
		Msg("Pipeline run starting")

	runErr = p.executeStages(ctx, state)

	if runErr != nil {
		var costErr *models.CostLimitExceededError
		if errors.As(runErr, &costErr) {
			p.logger.Warn().
				Str("run_id", state.RunID).
				Float64("total_cost_usd", state.TotalCostUSD).
				Float64("limit_usd", costErr.LimitUSD).
				Msg("Cost limit reached, keeping partial results")
			result := models.BuildRunResult(state)
			result.Status = models.StatusPartial
			state.Result = result
			p.salvageArtifacts(ctx, state)
		} else {
			p.logger.Error().Err(runErr).Str("run_id", state.RunID).Msg("Pipeline run failed")
			result := models.BuildRunResult(state)
			result.Status = models.StatusFailed
			state.Result = result
		}
	} else if state.Result == nil {
		state.Result = models.BuildRunResult(state)
	}

	p.notifyResult(ctx, state)

	p.logger.Info().
		Str("run_id", state.RunID).
		Str("status", state.Result.Status.String()).
		Int("jobs_scored", state.Result.JobsScored).
		Int("errors", len(state.Errors)).
		Float64("total_cost_usd", state.TotalCostUSD).
		Dur("elapsed", time.Since(state.StartedAt)).
		Msg("Pipeline run finished")

	return state.Result, runErr
}

// executeStages runs setup, the adaptive discovery loop and the aggregate
// stage. Notify is handled by the caller so it also fires on aborted runs.
func (p *Pipeline) executeStages(ctx context.Context, state *models.PipelineState) error {
	if err := p.runStage(ctx, state, models.StageParseResume, false, p.services.Intake.ParseResume); err != nil {
		return err
	}
	if err := p.runStage(ctx, state, models.StageParsePrefs, false, p.services.Intake.ParsePreferences); err != nil {
		return err
	}
	if err := p.runDiscoveryLoop(ctx, state); err != nil {
		return err
	}
	return p.runStage(ctx, state, models.StageAggregate, false, p.services.Reporter.WriteReports)
}

// runStage executes one handler with skip, span, timeout and checkpoint
// plumbing. force bypasses the completed-steps skip so the adaptive loop can
// re-enter stages on refill passes.
func (p *Pipeline) runStage(ctx context.Context, state *models.PipelineState, name string, force bool, fn stageFunc) error {
	if !force && state.CompletedSteps()[name] {
		p.logger.Info().
			Str("run_id", state.RunID).
			Str("stage", name).
			Msg("Stage already complete, skipping")
		return nil
	}

	stageCtx, span := tracing.StartSpan(ctx, "stage."+name, stageAttrs(state, name)...)
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	stageCtx, cancel := p.withStageTimeout(stageCtx, state)
	defer cancel()

	p.logger.Info().
		Str("run_id", state.RunID).
		Str("stage", name).
		Int("iteration", state.DiscoveryIteration).
		Msg("Stage starting")

	started := time.Now()
	err = fn(stageCtx, state)
	if err != nil {
		p.logger.Error().
			Err(err).
			Str("run_id", state.RunID).
			Str("stage", name).
			Dur("elapsed", time.Since(started)).
			Msg("Stage failed")
		return err
	}

	p.logger.Info().
		Str("run_id", state.RunID).
		Str("stage", name).
		Dur("elapsed", time.Since(started)).
		Msg("Stage complete")

	if state.Config.CheckpointEnabled && p.checkpoints != nil {
		if _, cpErr := p.checkpoints.Save(state, name); cpErr != nil {
			err = cpErr
			return err
		}
	}
	return nil
}

// notifyResult delivers the terminal result. The notify stage can never fail
// the run; a misbehaving implementation is logged and ignored.
func (p *Pipeline) notifyResult(ctx context.Context, state *models.PipelineState) {
	stageCtx, span := tracing.StartSpan(ctx, "stage."+models.StageNotify, stageAttrs(state, models.StageNotify)...)
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	stageCtx, cancel := p.withStageTimeout(stageCtx, state)
	defer cancel()

	if err = p.services.Notifier.SendResult(stageCtx, state); err != nil {
		p.logger.Warn().Err(err).Str("run_id", state.RunID).Msg("Notify stage returned an error")
	}
}

// salvageArtifacts writes output files for a cost-aborted run so the work
// paid for so far is preserved. It runs outside the stage sequence: no
// checkpoint, and the pre-classified partial result is kept as-is.
func (p *Pipeline) salvageArtifacts(ctx context.Context, state *models.PipelineState) {
	stageCtx, span := tracing.StartSpan(ctx, "stage."+models.StageAggregate, stageAttrs(state, models.StageAggregate)...)
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	stageCtx, cancel := p.withStageTimeout(stageCtx, state)
	defer cancel()

	if err = p.services.Reporter.WriteReports(stageCtx, state); err != nil {
		p.logger.Warn().Err(err).Str("run_id", state.RunID).Msg("Artifact write after cost abort failed")
	}
}

// loadOrCreate resumes from the newest checkpoint when checkpointing is
// enabled, or starts fresh. On resume the current invocation's config wins,
// so an operator can raise the cost budget of a cut-short run; per-run
// inputs missing from the invocation fall back to the snapshot's values.
func (p *Pipeline) loadOrCreate(cfg models.RunConfig) (*models.PipelineState, bool, error) {
	if !cfg.CheckpointEnabled || p.checkpoints == nil {
		return models.NewPipelineState(cfg), false, nil
	}

	cp, err := p.checkpoints.LoadLatest(cfg.RunID)
	if err != nil {
		return nil, false, err
	}
	if cp == nil {
		return models.NewPipelineState(cfg), false, nil
	}

	state := cp.State
	snapshot := state.Config
	state.Config = cfg
	if state.Config.ResumePath == "" {
		state.Config.ResumePath = snapshot.ResumePath
	}
	if state.Config.PreferencesText == "" {
		state.Config.PreferencesText = snapshot.PreferencesText
	}

	p.logger.Info().
		Str("run_id", state.RunID).
		Str("completed_step", cp.CompletedStep).
		Int("iteration", state.DiscoveryIteration).
		Msg("Resuming from checkpoint")

	return state, true, nil
}

func (p *Pipeline) withStageTimeout(ctx context.Context, state *models.PipelineState) (context.Context, context.CancelFunc) {
	seconds := state.Config.AgentTimeoutSeconds
	if seconds <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, time.Duration(seconds)*time.Second)
}

func stageAttrs(state *models.PipelineState, stage string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("run_id", state.RunID),
		attribute.String("stage", stage),
		attribute.Int("iteration", state.DiscoveryIteration),
	}
}
