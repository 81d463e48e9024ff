package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ternarybob/jobhunter/internal/app"
	"github.com/ternarybob/jobhunter/internal/common"
	"github.com/ternarybob/jobhunter/internal/models"
)

// runOnce executes one pipeline run and returns the process exit code:
// 0 for success, 1 for partial or failed.
func runOnce(application *app.App) int {
	prefs, err := preferencesText()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to resolve preferences")
		return 1
	}

	resume := *resumePath
	id := *runID
	overrides := common.RunOverrides{
		MinRecommendedJobs: *minJobs,
		MaxCostUSD:         *maxCost,
		CompanyLimit:       *companyLimit,
		DisableCheckpoint:  *noCheckpoint,
		NotifyTo:           *notifyTo,
	}

	// A request file fills in whatever the flags left unset.
	if *requestFile != "" {
		req, err := loadRunRequest(*requestFile)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to load request file")
			return 1
		}
		if resume == "" {
			resume = req.Resume
		}
		if prefs == "" {
			prefs, err = req.preferences()
			if err != nil {
				logger.Error().Err(err).Msg("Failed to resolve preferences")
				return 1
			}
		}
		if id == "" {
			id = req.RunID
		}
		if overrides.MinRecommendedJobs == 0 {
			overrides.MinRecommendedJobs = req.MinJobs
		}
		if overrides.MaxCostUSD == 0 {
			overrides.MaxCostUSD = req.MaxCostUSD
		}
		if overrides.CompanyLimit == 0 {
			overrides.CompanyLimit = req.CompanyLimit
		}
		if !overrides.DisableCheckpoint {
			overrides.DisableCheckpoint = req.NoCheckpoint
		}
		if overrides.NotifyTo == "" {
			overrides.NotifyTo = req.NotifyTo
		}
	}

	// A fresh run needs both inputs; a resumed run (-run-id) falls back to
	// the values carried in the checkpoint snapshot.
	if id == "" {
		if resume == "" {
			logger.Error().Msg("Missing -resume (or -run-id to resume an earlier run)")
			return 1
		}
		if prefs == "" {
			logger.Error().Msg("Missing -prefs or -prefs-file (or -run-id to resume an earlier run)")
			return 1
		}
	}

	cfg := config.BuildRunConfig(id, resume, prefs, overrides)

	// Ctrl+C cancels the run; checkpoints written so far make it resumable.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := application.Pipeline.Run(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Str("run_id", result.RunID).Msg("Run did not complete cleanly")
	}

	printResult(result)

	if result.Status == models.StatusSuccess {
		return 0
	}
	return 1
}

// printResult writes the run summary to stdout. Log lines carry the detail;
// this is the at-a-glance outcome.
func printResult(result *models.RunResult) {
	fmt.Printf("\nRun %s finished: %s\n", result.RunID, result.Status)
	fmt.Printf("  companies found:  %d\n", result.CompaniesFound)
	fmt.Printf("  jobs scraped:     %d\n", result.JobsScraped)
	fmt.Printf("  jobs processed:   %d\n", result.JobsProcessed)
	fmt.Printf("  jobs scored:      %d\n", result.JobsScored)
	fmt.Printf("  tokens used:      %d\n", result.TotalTokens)
	fmt.Printf("  cost:             $%.4f\n", result.TotalCostUSD)
	if len(result.Errors) > 0 {
		fmt.Printf("  non-fatal errors: %d\n", len(result.Errors))
	}
	for i, job := range result.TopJobs {
		if i >= 10 {
			fmt.Printf("  ... and %d more\n", len(result.TopJobs)-i)
			break
		}
		fmt.Printf("  %2d. [%3d] %s - %s\n", job.Rank, job.Fit.Score, job.Job.CompanyName, job.Job.Title)
	}
	for _, path := range result.OutputFiles {
		fmt.Printf("  wrote %s\n", path)
	}
}
