package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/jobhunter/internal/models"
)

// formatRunResult formats one run result as markdown
func formatRunResult(result *models.RunResult, limit int) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# Run %s: %s\n\n", result.RunID, result.Status))
	sb.WriteString(fmt.Sprintf("**Companies found:** %d\n", result.CompaniesFound))
	sb.WriteString(fmt.Sprintf("**Jobs scraped:** %d\n", result.JobsScraped))
	sb.WriteString(fmt.Sprintf("**Jobs processed:** %d\n", result.JobsProcessed))
	sb.WriteString(fmt.Sprintf("**Jobs scored:** %d\n", result.JobsScored))
	sb.WriteString(fmt.Sprintf("**Tokens:** %d\n", result.TotalTokens))
	sb.WriteString(fmt.Sprintf("**Cost:** $%.4f\n", result.TotalCostUSD))
	sb.WriteString(fmt.Sprintf("**Finished:** %s\n\n", result.FinishedAt.Format(time.RFC3339)))

	if len(result.TopJobs) == 0 {
		sb.WriteString("No jobs cleared the score threshold.\n")
	} else {
		sb.WriteString("## Matches\n\n")
		for i, job := range result.TopJobs {
			if i >= limit {
				sb.WriteString(fmt.Sprintf("... and %d more\n", len(result.TopJobs)-i))
				break
			}
			sb.WriteString(fmt.Sprintf("### %d. %s - %s (score %d)\n", job.Rank, job.Job.CompanyName, job.Job.Title, job.Fit.Score))
			sb.WriteString(fmt.Sprintf("**Recommendation:** %s\n", job.Fit.Recommendation))
			if job.Job.Location != "" {
				sb.WriteString(fmt.Sprintf("**Location:** %s (%s)\n", job.Job.Location, job.Job.RemoteType))
			}
			if job.Job.ApplyURL != "" {
				sb.WriteString(fmt.Sprintf("**Apply:** %s\n", job.Job.ApplyURL))
			}
			if job.Fit.Summary != "" {
				sb.WriteString(fmt.Sprintf("\n%s\n", job.Fit.Summary))
			}
			sb.WriteString("\n")
		}
	}

	if len(result.Errors) > 0 {
		sb.WriteString(fmt.Sprintf("\n**Non-fatal errors:** %d\n", len(result.Errors)))
	}
	for _, path := range result.OutputFiles {
		sb.WriteString(fmt.Sprintf("- artifact: %s\n", path))
	}

	return sb.String()
}

// formatRunList formats the run listing as markdown
func formatRunList(results []*models.RunResult, limit int) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Runs (%d)\n\n", len(results)))

	if len(results) == 0 {
		sb.WriteString("No finished runs found.\n")
		return sb.String()
	}

	for i, result := range results {
		if i >= limit {
			sb.WriteString(fmt.Sprintf("... and %d more\n", len(results)-i))
			break
		}
		sb.WriteString(fmt.Sprintf("%d. **%s** - %s, %d matches, $%.4f\n", i+1, result.RunID, result.Status, result.JobsScored, result.TotalCostUSD))
		sb.WriteString(fmt.Sprintf("   Finished: %s\n\n", result.FinishedAt.Format(time.RFC3339)))
	}

	return sb.String()
}
