package pipeline

import (
	"context"
	"sort"

	"github.com/ternarybob/jobhunter/internal/models"
)

// runDiscoveryLoop wraps {find_companies, scrape_jobs, process_jobs,
// score_jobs} in refill passes until the scored list reaches
// MinRecommendedJobs or the iteration budget runs out. Each pass after the
// first rebuilds the working fields from scratch while AttemptedCompanies
// accumulates, so discovery prompts exclude everything already tried. Scored
// jobs are merged by fingerprint inside the scoring stage, which keeps the
// previous passes' results in every checkpoint.
func (p *Pipeline) runDiscoveryLoop(ctx context.Context, state *models.PipelineState) error {
	maxIterations := state.Config.MaxDiscoveryIterations
	if maxIterations <= 0 {
		maxIterations = 1
	}
	minJobs := state.Config.MinRecommendedJobs

	start := state.DiscoveryIteration
	if start >= maxIterations {
		// A resumed snapshot from a run with a larger budget.
		start = maxIterations - 1
	}

	for i := start; i < maxIterations; i++ {
		state.DiscoveryIteration = i

		// The first pass picks up whatever a resumed snapshot already holds;
		// later passes start clean and bypass the completed-steps skip.
		force := i > start
		if force {
			state.Companies = nil
			state.RawJobs = nil
			state.NormalizedJobs = nil
		}

		if err := p.runStage(ctx, state, models.StageFindCompanies, force, p.services.Discovery.DiscoverCompanies); err != nil {
			return err
		}
		if err := p.runStage(ctx, state, models.StageScrapeJobs, force, p.services.Scraper.ScrapeJobs); err != nil {
			return err
		}
		if err := p.runStage(ctx, state, models.StageProcessJobs, force, p.services.Normalizer.ProcessJobs); err != nil {
			return err
		}
		if err := p.runStage(ctx, state, models.StageScoreJobs, force, p.scoreAndMerge); err != nil {
			return err
		}

		names := make([]string, 0, len(state.Companies))
		for _, company := range state.Companies {
			names = append(names, company.Name)
		}
		state.AddAttemptedCompanies(names...)

		p.logger.Info().
			Str("run_id", state.RunID).
			Int("iteration", i).
			Int("companies", len(state.Companies)).
			Int("raw_jobs", len(state.RawJobs)).
			Int("normalized_jobs", len(state.NormalizedJobs)).
			Int("scored_jobs", len(state.ScoredJobs)).
			Msg("Discovery pass complete")

		if len(state.ScoredJobs) >= minJobs {
			break
		}
		if i+1 < maxIterations {
			p.logger.Info().
				Str("run_id", state.RunID).
				Int("scored_jobs", len(state.ScoredJobs)).
				Int("target", minJobs).
				Msg("Below quota, running another discovery pass")
		} else {
			p.logger.Warn().
				Str("run_id", state.RunID).
				Int("scored_jobs", len(state.ScoredJobs)).
				Int("target", minJobs).
				Msg("Iteration budget exhausted below quota")
		}
	}

	return nil
}

// scoreAndMerge is the score_jobs handler inside the adaptive loop. It
// scores the current normalized jobs in isolation, then folds the fresh
// results into the previous passes' list: fingerprints already present are
// dropped, the union is stably re-sorted by score and ranks reassigned. A
// scoring failure restores the previous list untouched.
func (p *Pipeline) scoreAndMerge(ctx context.Context, state *models.PipelineState) error {
	previous := state.ScoredJobs
	previousFingerprints := scoredFingerprints(previous)

	state.ScoredJobs = nil
	if err := p.services.Scorer.ScoreJobs(ctx, state); err != nil {
		state.ScoredJobs = previous
		return err
	}

	state.ScoredJobs = mergeScored(previous, state.ScoredJobs, previousFingerprints)
	state.ScoredIterations = state.DiscoveryIteration + 1

	if len(previous) > 0 {
		p.logger.Debug().
			Str("run_id", state.RunID).
			Int("previous", len(previous)).
			Int("merged", len(state.ScoredJobs)).
			Msg("Merged refill pass into scored jobs")
	}
	return nil
}

// mergeScored unions previous and fresh scored jobs, dropping fresh entries
// whose fingerprint was already scored. The union is stably sorted by
// descending score (ties keep insertion order, previous before fresh) and
// ranks are reassigned 1..N.
func mergeScored(previous, fresh []models.ScoredJob, previousFingerprints map[string]bool) []models.ScoredJob {
	merged := make([]models.ScoredJob, 0, len(previous)+len(fresh))
	merged = append(merged, previous...)
	for _, sj := range fresh {
		if previousFingerprints[sj.Job.Fingerprint] {
			continue
		}
		merged = append(merged, sj)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Fit.Score > merged[j].Fit.Score
	})
	for i := range merged {
		merged[i].Rank = i + 1
	}
	return merged
}

func scoredFingerprints(jobs []models.ScoredJob) map[string]bool {
	fingerprints := make(map[string]bool, len(jobs))
	for _, sj := range jobs {
		fingerprints[sj.Job.Fingerprint] = true
	}
	return fingerprints
}
