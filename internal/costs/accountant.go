package costs

import (
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/jobhunter/internal/interfaces"
	"github.com/ternarybob/jobhunter/internal/models"
)

// Accountant folds LLM usage into the pipeline state and enforces the spend
// guardrails. It keeps no totals of its own; tokens, cost, and the warn flag
// live in PipelineState so they survive checkpoint resume.
type Accountant struct {
	logger arbor.ILogger
}

// NewAccountant creates a cost accountant.
func NewAccountant(logger arbor.ILogger) *Accountant {
	return &Accountant{logger: logger}
}

// Record adds a completion's tokens and cost to the run totals, then applies
// the limits from the run config. Totals are updated before any error is
// returned so no usage goes unaccounted. Returns CostLimitExceededError when
// the accumulated cost passes the hard limit.
func (a *Accountant) Record(state *models.PipelineState, usage interfaces.Usage) error {
	cost := CostUSD(usage)

	state.TotalTokens += usage.TotalTokens()
	state.TotalCostUSD += cost

	a.logger.Debug().
		Str("model", usage.Model).
		Int("input_tokens", usage.InputTokens).
		Int("output_tokens", usage.OutputTokens).
		Float64("cost_usd", cost).
		Float64("total_cost_usd", state.TotalCostUSD).
		Msg("Recorded completion usage")

	limit := state.Config.MaxCostPerRunUSD
	warn := state.Config.WarnCostThresholdUSD

	if limit > 0 && state.TotalCostUSD > limit {
		return &models.CostLimitExceededError{
			TotalCostUSD: state.TotalCostUSD,
			LimitUSD:     limit,
		}
	}

	if warn > 0 && !state.CostWarned && state.TotalCostUSD > warn {
		state.CostWarned = true
		a.logger.Warn().
			Str("run_id", state.RunID).
			Float64("total_cost_usd", state.TotalCostUSD).
			Float64("warn_threshold_usd", warn).
			Msg("Run cost passed the warning threshold")
	}

	return nil
}
