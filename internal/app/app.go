// -----------------------------------------------------------------------
// Application container - wires configuration into the pipeline services
// Shared by the CLI and the MCP server
// -----------------------------------------------------------------------

package app

import (
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/jobhunter/internal/checkpoint"
	"github.com/ternarybob/jobhunter/internal/common"
	"github.com/ternarybob/jobhunter/internal/costs"
	"github.com/ternarybob/jobhunter/internal/pipeline"
	"github.com/ternarybob/jobhunter/internal/services/ats"
	"github.com/ternarybob/jobhunter/internal/services/discovery"
	"github.com/ternarybob/jobhunter/internal/services/intake"
	"github.com/ternarybob/jobhunter/internal/services/llm"
	"github.com/ternarybob/jobhunter/internal/services/mailbox"
	"github.com/ternarybob/jobhunter/internal/services/normalizer"
	"github.com/ternarybob/jobhunter/internal/services/notify"
	"github.com/ternarybob/jobhunter/internal/services/pdf"
	"github.com/ternarybob/jobhunter/internal/services/report"
	"github.com/ternarybob/jobhunter/internal/services/scheduler"
	"github.com/ternarybob/jobhunter/internal/services/scorer"
	"github.com/ternarybob/jobhunter/internal/services/scraper"
	"github.com/ternarybob/jobhunter/internal/services/search"
	badgerstore "github.com/ternarybob/jobhunter/internal/storage/badger"
)

// App holds the assembled application components. Construction order:
// storage first, then collaborator clients, then the stage services, then
// the pipeline that sequences them.
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	// Local storage (career-page cache)
	BadgerDB *badgerstore.BadgerDB

	// External collaborators
	LLM      *llm.Service
	Finder   *search.Finder
	Registry *ats.Registry
	Scraper  *scraper.Service

	// Cost guardrails
	Accountant *costs.Accountant

	// Pipeline
	Checkpoints *checkpoint.Store
	Pipeline    *pipeline.Pipeline

	// Watch mode
	Mailbox   *mailbox.Service
	Scheduler *scheduler.Service
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	a := &App{
		Config: cfg,
		Logger: logger,
	}

	db, err := badgerstore.NewBadgerDB(logger, &cfg.Storage.Badger)
	if err != nil {
		return nil, err
	}
	a.BadgerDB = db

	a.LLM = llm.NewService(&cfg.LLM, logger)
	a.Accountant = costs.NewAccountant(logger)

	searchKey, err := common.ResolveAPIKey("serper_api_key", cfg.Search.APIKey)
	if err != nil {
		// Discovery fails without it, but a resumed run past find_companies
		// or a preferred-companies run never touches search.
		logger.Warn().Msg("Search API key not configured; company discovery requires one")
	}
	searchClient := search.NewClient(searchKey,
		search.WithLogger(logger),
		search.WithRateLimit(cfg.Search.RatePerSecond),
		search.WithMaxResults(cfg.Search.MaxResults),
	)
	careerCache := badgerstore.NewCareerPageStore(db, cfg.CacheTTL(), logger)
	a.Finder = search.NewFinder(searchClient, careerCache, logger)

	a.Scraper = scraper.NewService(cfg.Scraper, logger)

	// Detection order is fixed: the first client whose pattern matches wins.
	a.Registry = ats.NewRegistry(logger,
		ats.NewGreenhouseClient(ats.WithLogger(logger)),
		ats.NewLeverClient(ats.WithLogger(logger)),
		ats.NewAshbyClient(ats.WithLogger(logger)),
		ats.NewWorkdayClient(a.Scraper, logger),
	)

	pdfExtractor := pdf.NewExtractor(logger)
	pdfService := pdf.NewService(logger)

	services := pipeline.Services{
		Intake:     intake.NewService(a.LLM, a.Accountant, pdfExtractor, cfg, logger),
		Discovery:  discovery.NewService(a.LLM, a.Accountant, a.Finder, a.Registry, cfg, logger),
		Scraper:    pipeline.NewScrapeCoordinator(a.Registry, a.Scraper, logger),
		Normalizer: normalizer.NewService(a.LLM, a.Accountant, cfg, logger),
		Scorer:     scorer.NewService(a.LLM, a.Accountant, cfg, logger),
		Reporter:   report.NewService(pdfService, cfg, logger),
		Notifier:   notify.NewService(cfg, logger),
	}

	a.Checkpoints = checkpoint.NewStore(cfg.Checkpoint.Dir, logger)
	a.Pipeline = pipeline.New(services, a.Checkpoints, logger)

	a.Mailbox = mailbox.NewService(cfg, logger)
	a.Scheduler = scheduler.NewService(logger)

	logger.Info().
		Str("llm_provider", string(cfg.LLM.DefaultProvider)).
		Str("badger_path", cfg.Storage.Badger.Path).
		Bool("checkpoint_enabled", cfg.Checkpoint.Enabled).
		Msg("Application components initialized")

	return a, nil
}

// Close releases application resources in reverse construction order.
func (a *App) Close() error {
	if a.Scheduler != nil && a.Scheduler.IsRunning() {
		a.Scheduler.Stop()
	}
	if a.BadgerDB != nil {
		if err := a.BadgerDB.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Badger close failed")
			return err
		}
	}
	return nil
}
