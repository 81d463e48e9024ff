package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/ternarybob/jobhunter/internal/app"
	"github.com/ternarybob/jobhunter/internal/common"
	"github.com/ternarybob/jobhunter/internal/services/mailbox"
)

// runWatch keeps the process alive running pipelines on a schedule. Two
// sources feed it: the configured cron expression reruns the CLI inputs, and
// the IMAP mailbox turns emailed requests into runs. The scheduler
// serializes executions so two runs never race on LLM spend.
func runWatch(application *app.App) {
	registered := 0

	if config.Schedule.Cron != "" {
		prefs, err := preferencesText()
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to resolve preferences for scheduled runs")
		}
		if *resumePath == "" || prefs == "" {
			logger.Fatal().Msg("Scheduled runs need -resume and -prefs (or -prefs-file)")
		}

		err = application.Scheduler.RegisterJob("pipeline", config.Schedule.Cron, func() error {
			cfg := config.BuildRunConfig("", *resumePath, prefs, common.RunOverrides{
				MinRecommendedJobs: *minJobs,
				MaxCostUSD:         *maxCost,
				CompanyLimit:       *companyLimit,
				DisableCheckpoint:  *noCheckpoint,
				NotifyTo:           *notifyTo,
			})
			_, err := application.Pipeline.Run(context.Background(), cfg)
			return err
		})
		if err != nil {
			logger.Fatal().Err(err).Str("cron", config.Schedule.Cron).Msg("Failed to register scheduled run")
		}
		registered++
	}

	if application.Mailbox.IsConfigured() {
		schedule := fmt.Sprintf("@every %dm", config.Mailbox.PollMinutes)
		err := application.Scheduler.RegisterJob("mailbox", schedule, func() error {
			return pollMailbox(application)
		})
		if err != nil {
			logger.Fatal().Err(err).Str("schedule", schedule).Msg("Failed to register mailbox poll")
		}
		registered++
	}

	if registered == 0 {
		logger.Fatal().Msg("Watch mode needs schedule.cron or an enabled mailbox in the configuration")
	}

	application.Scheduler.Start()
	logger.Info().Int("jobs", registered).Msg("Watch mode running - Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info().Msg("Interrupt signal received")
	application.Scheduler.Stop()
	logger.Info().
		Int64("goroutines_spawned", common.GetGoroutineCount()).
		Msg("Watch mode stopped")
}

// pollMailbox turns each emailed request into a pipeline run. The message is
// marked seen only after its run finishes, so a crash leaves the request in
// the mailbox for the next poll.
func pollMailbox(application *app.App) error {
	ctx := context.Background()

	requests, err := application.Mailbox.FetchRequests(ctx)
	if err != nil {
		return err
	}

	for _, req := range requests {
		if err := runMailboxRequest(ctx, application, req); err != nil {
			logger.Error().Err(err).Int64("uid", int64(req.UID)).Str("from", req.From).Msg("Mailbox request failed")
			continue
		}
		if err := application.Mailbox.MarkProcessed(ctx, req.UID); err != nil {
			logger.Warn().Err(err).Int64("uid", int64(req.UID)).Msg("Failed to mark request processed")
		}
	}
	return nil
}

func runMailboxRequest(ctx context.Context, application *app.App, req mailbox.IntakeRequest) error {
	if len(req.ResumePDF) == 0 {
		return fmt.Errorf("request from %s has no resume attachment", req.From)
	}

	dir, err := os.MkdirTemp("", "jobhunter-intake-")
	if err != nil {
		return fmt.Errorf("failed to create intake directory: %w", err)
	}
	defer os.RemoveAll(dir)

	name := req.ResumeFilename
	if name == "" {
		name = "resume.pdf"
	}
	path := filepath.Join(dir, filepath.Base(name))
	if err := os.WriteFile(path, req.ResumePDF, 0600); err != nil {
		return fmt.Errorf("failed to write resume attachment: %w", err)
	}

	logger.Info().
		Int64("uid", int64(req.UID)).
		Str("from", req.From).
		Str("subject", req.Subject).
		Msg("Starting run for mailbox request")

	// The sender gets the result; the request's reply address wins over the
	// configured recipient.
	cfg := config.BuildRunConfig("", path, req.PreferencesText, common.RunOverrides{
		NotifyTo: req.ReplyTo,
	})
	_, err = application.Pipeline.Run(ctx, cfg)
	return err
}
