package ats

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/jobhunter/internal/interfaces"
	"github.com/ternarybob/jobhunter/internal/models"
)

// workdayPattern matches Workday-hosted career sites. No slug is captured
// because Workday exposes no public board API.
var workdayPattern = regexp.MustCompile(`myworkdayjobs\.com|workday\.com/en-US`)

// WorkdayClient handles Workday-hosted career sites. Postings are scraped
// from the rendered page and handed to the normalizer as one HTML record.
type WorkdayClient struct {
	scraper interfaces.PageScraper
	logger  arbor.ILogger
}

var _ interfaces.ATSClient = (*WorkdayClient)(nil)

// NewWorkdayClient creates a Workday client backed by the page scraper.
func NewWorkdayClient(scraper interfaces.PageScraper, logger arbor.ILogger) *WorkdayClient {
	return &WorkdayClient{
		scraper: scraper,
		logger:  logger,
	}
}

// Type returns the ATS family this client serves
func (c *WorkdayClient) Type() models.ATSType {
	return models.ATSWorkday
}

// Detect reports whether the URL is a Workday-hosted career site.
func (c *WorkdayClient) Detect(url string) bool {
	return workdayPattern.MatchString(url)
}

// FetchJobs scrapes the career page and returns a single record wrapping
// the rendered content. The normalizer's HTML path extracts the individual
// postings.
func (c *WorkdayClient) FetchJobs(ctx context.Context, company *models.Company) ([]map[string]interface{}, error) {
	if company.CareerPage == nil {
		return nil, fmt.Errorf("company %s has no career page", company.Name)
	}
	pageURL := company.CareerPage.URL

	content, err := c.scraper.FetchPage(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("workday page fetch failed: %w", err)
	}

	title := pageTitle(content)
	if title == "" {
		title = fmt.Sprintf("%s careers", company.Name)
	}

	return []map[string]interface{}{
		{
			"title":        title,
			"content":      content,
			"absolute_url": pageURL,
		},
	}, nil
}

// pageTitle extracts the <title> text from rendered HTML.
func pageTitle(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}
