package ats

import (
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/jobhunter/internal/interfaces"
	"github.com/ternarybob/jobhunter/internal/models"
)

// Registry holds the ATS clients in detection order. The first client whose
// pattern matches a URL wins.
type Registry struct {
	clients []interfaces.ATSClient
	logger  arbor.ILogger
}

// NewRegistry creates a registry with the given clients in detection order.
func NewRegistry(logger arbor.ILogger, clients ...interfaces.ATSClient) *Registry {
	return &Registry{
		clients: clients,
		logger:  logger,
	}
}

// DefaultRegistry wires the four supported families in their canonical
// detection order: Greenhouse, Lever, Ashby, Workday.
func DefaultRegistry(scraper interfaces.PageScraper, logger arbor.ILogger) *Registry {
	return NewRegistry(logger,
		NewGreenhouseClient(WithLogger(logger)),
		NewLeverClient(WithLogger(logger)),
		NewAshbyClient(WithLogger(logger)),
		NewWorkdayClient(scraper, logger),
	)
}

// Detect returns the first client whose pattern matches the URL.
func (r *Registry) Detect(url string) (interfaces.ATSClient, bool) {
	for _, client := range r.clients {
		if client.Detect(url) {
			return client, true
		}
	}
	return nil, false
}

// ClientFor returns the client serving the given family.
func (r *Registry) ClientFor(atsType models.ATSType) (interfaces.ATSClient, bool) {
	for _, client := range r.clients {
		if client.Type() == atsType {
			return client, true
		}
	}
	return nil, false
}

// Classify maps a career page URL onto its ATS family and scrape strategy.
// Recognized boards are fetched through their API; everything else goes
// through the generic crawler.
func (r *Registry) Classify(url string) (models.ATSType, models.ScrapeStrategy) {
	if client, ok := r.Detect(url); ok {
		return client.Type(), models.StrategyAPI
	}
	return models.ATSUnknown, models.StrategyCrawler
}
