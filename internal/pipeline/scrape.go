package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/sync/errgroup"

	"github.com/ternarybob/jobhunter/internal/common"
	"github.com/ternarybob/jobhunter/internal/interfaces"
	"github.com/ternarybob/jobhunter/internal/models"
	"github.com/ternarybob/jobhunter/internal/services/ats"
)

const defaultMaxConcurrentScrapers = 5

// Source confidence reflects how trustworthy the scrape artifact is:
// structured ATS records beat a crawled page.
const (
	apiSourceConfidence     = 0.95
	crawlerSourceConfidence = 0.7
)

// ScrapeCoordinator is the scrape_jobs stage. It fans each company out to
// its ATS client or the generic page scraper under a concurrency cap,
// collects contributions over a channel and merges them on the stage
// goroutine. Per-company failures become error records; the coordinator
// itself never fails the pipeline.
type ScrapeCoordinator struct {
	registry *ats.Registry
	pages    interfaces.PageScraper
	logger   arbor.ILogger
}

var _ interfaces.ScrapeService = (*ScrapeCoordinator)(nil)

// NewScrapeCoordinator creates the scrape_jobs stage service.
func NewScrapeCoordinator(registry *ats.Registry, pages interfaces.PageScraper, logger arbor.ILogger) *ScrapeCoordinator {
	return &ScrapeCoordinator{
		registry: registry,
		pages:    pages,
		logger:   logger,
	}
}

// ScrapeJobs fetches raw postings for every company on the state.
func (c *ScrapeCoordinator) ScrapeJobs(ctx context.Context, state *models.PipelineState) error {
	if len(state.Companies) == 0 {
		c.logger.Warn().Str("run_id", state.RunID).Msg("No companies to scrape")
		return nil
	}

	limit := state.Config.MaxConcurrentScrapers
	if limit <= 0 {
		limit = defaultMaxConcurrentScrapers
	}

	type contribution struct {
		company models.Company
		jobs    []models.RawJob
		err     error
	}

	results := make(chan contribution, len(state.Companies))

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, company := range state.Companies {
		g.Go(func() error {
			// Failures ride the channel as data; a worker error would
			// cancel the group and sibling scrapes with it.
			jobs, err := c.scrapeCompany(groupCtx, company)
			results <- contribution{company: company, jobs: jobs, err: err}
			return nil
		})
	}
	_ = g.Wait()
	close(results)

	scraped := 0
	failed := 0
	for res := range results {
		if res.err != nil {
			failed++
			state.AddError(models.AgentError{
				Stage:   models.StageScrapeJobs,
				Kind:    models.ErrKindScrape,
				Company: res.company.Name,
				Message: res.err.Error(),
			})
			c.logger.Warn().
				Err(res.err).
				Str("run_id", state.RunID).
				Str("company", res.company.Name).
				Msg("Company scrape failed")
			continue
		}
		state.RawJobs = append(state.RawJobs, res.jobs...)
		scraped += len(res.jobs)
	}

	c.logger.Info().
		Str("run_id", state.RunID).
		Int("companies", len(state.Companies)).
		Int("raw_jobs", scraped).
		Int("failed_companies", failed).
		Msg("Scrape complete")

	return nil
}

// scrapeCompany dispatches one company by its detected strategy: ATS API
// records land as RawJSON, a crawled page lands as one RawHTML artifact. An
// ATS returning zero records is empty, not an error.
func (c *ScrapeCoordinator) scrapeCompany(ctx context.Context, company models.Company) ([]models.RawJob, error) {
	page := company.CareerPage
	if page == nil || page.URL == "" {
		return nil, fmt.Errorf("company %s has no validated career page", company.Name)
	}

	if page.ScrapeStrategy == models.StrategyAPI {
		client, ok := c.registry.ClientFor(page.ATSType)
		if !ok {
			return nil, fmt.Errorf("no ATS client for type %s", page.ATSType)
		}

		records, err := client.FetchJobs(ctx, &company)
		if err != nil {
			return nil, err
		}

		now := time.Now().UTC()
		jobs := make([]models.RawJob, 0, len(records))
		for _, record := range records {
			jobs = append(jobs, models.RawJob{
				ID:               common.NewRawJobID(),
				CompanyID:        company.ID,
				CompanyName:      company.Name,
				RawJSON:          record,
				SourceURL:        page.URL,
				ScrapeStrategy:   models.StrategyAPI,
				SourceConfidence: apiSourceConfidence,
				ScrapedAt:        now,
			})
		}

		c.logger.Debug().
			Str("company", company.Name).
			Str("ats", page.ATSType.String()).
			Int("records", len(records)).
			Msg("ATS fetch complete")

		return jobs, nil
	}

	html, err := c.pages.FetchPage(ctx, page.URL)
	if err != nil {
		return nil, err
	}

	c.logger.Debug().
		Str("company", company.Name).
		Str("url", page.URL).
		Int("bytes", len(html)).
		Msg("Career page crawled")

	return []models.RawJob{{
		ID:               common.NewRawJobID(),
		CompanyID:        company.ID,
		CompanyName:      company.Name,
		RawHTML:          html,
		SourceURL:        page.URL,
		ScrapeStrategy:   models.StrategyCrawler,
		SourceConfidence: crawlerSourceConfidence,
		ScrapedAt:        time.Now().UTC(),
	}}, nil
}
