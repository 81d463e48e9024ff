package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/jobhunter/internal/common"
	"github.com/ternarybob/jobhunter/internal/interfaces"
)

// minCareerPageScore is the score a result must reach to win outright.
// Below it the best non-aggregator result is taken as a fallback.
const minCareerPageScore = 2.0

// aggregatorHosts are job boards that are never a company's own career page.
var aggregatorHosts = []string{
	"indeed", "linkedin", "glassdoor", "naukri", "monster",
	"angel", "wellfound", "ziprecruiter", "simplyhired",
}

// atsHosts identify hosted career boards. A board page is a strong signal
// even though the domain is not the company's own.
var atsHosts = []string{
	"greenhouse.io", "lever.co", "ashbyhq.com",
	"myworkdayjobs.com", "workday.com", "icims.com", "taleo.net",
}

// careerPathKeywords appear somewhere in the URL of most career pages.
var careerPathKeywords = []string{"career", "jobs", "hiring", "work", "openings"}

// companySuffixes are removed when normalizing company names for matching.
var companySuffixes = []string{
	" inc.", " inc", " llc", " corp.", " corp", " ltd.", " ltd",
	" co.", " co", " company", " incorporated", " corporation",
	" limited", " holdings", " group", " technologies", " technology",
}

// Finder resolves company career pages through web search. Validated
// lookups are cached so repeated runs skip the search provider.
type Finder struct {
	client *Client
	cache  interfaces.CareerPageCache
	logger arbor.ILogger
}

var _ interfaces.CareerPageFinder = (*Finder)(nil)

// NewFinder creates a career-page finder. The cache may be nil, in which
// case every lookup hits the search provider.
func NewFinder(client *Client, cache interfaces.CareerPageCache, logger arbor.ILogger) *Finder {
	return &Finder{
		client: client,
		cache:  cache,
		logger: logger,
	}
}

// FindCareerPage returns the best careers URL for the company, or an empty
// string when no qualifying result exists.
func (f *Finder) FindCareerPage(ctx context.Context, companyName string) (string, error) {
	if f.cache != nil {
		cached, err := f.cache.GetCareerPage(companyName)
		if err != nil {
			f.logger.Warn().Err(err).Str("company", companyName).Msg("Career page cache read failed")
		} else if cached != "" {
			f.logger.Debug().
				Str("company", companyName).
				Str("url", cached).
				Msg("Career page served from cache")
			return cached, nil
		}
	}

	query := fmt.Sprintf("%q careers jobs", companyName)
	results, err := f.client.Search(ctx, query)
	if err != nil {
		return "", fmt.Errorf("career page search failed for %s: %w", companyName, err)
	}

	best := pickCareerPage(results, companyName)
	if best == "" {
		f.logger.Debug().
			Str("company", companyName).
			Int("results", len(results)).
			Msg("No qualifying career page in search results")
		return "", nil
	}

	if f.cache != nil {
		if err := f.cache.PutCareerPage(companyName, best); err != nil {
			f.logger.Warn().Err(err).Str("company", companyName).Msg("Career page cache write failed")
		}
	}

	f.logger.Info().
		Str("company", companyName).
		Str("url", best).
		Msg("Career page found")
	return best, nil
}

// pickCareerPage scores every organic result and returns the winner. A
// result must reach minCareerPageScore to win outright; otherwise the best
// scoring non-aggregator result is returned. Ties keep the earlier result
// because search rank carries signal.
func pickCareerPage(results []OrganicResult, companyName string) string {
	var (
		bestURL       string
		bestScore     float64
		fallbackURL   string
		fallbackScore float64
	)

	for _, r := range results {
		if r.Link == "" {
			continue
		}
		score := scoreResult(r, companyName)
		if bestURL == "" || score > bestScore {
			bestURL = r.Link
			bestScore = score
		}
		if !isAggregatorHost(common.HostOf(r.Link)) {
			if fallbackURL == "" || score > fallbackScore {
				fallbackURL = r.Link
				fallbackScore = score
			}
		}
	}

	if bestScore >= minCareerPageScore {
		return bestURL
	}
	return fallbackURL
}

// scoreResult rates one search result as a candidate career page for the
// company. Aggregator hosts are penalized below any plausible threshold;
// ATS hosts, career keywords and company-name presence add points.
func scoreResult(r OrganicResult, companyName string) float64 {
	host := common.HostOf(r.Link)
	link := strings.ToLower(r.Link)
	title := strings.ToLower(r.Title)

	score := 0.0

	if isAggregatorHost(host) {
		score -= 5.0
	}

	for _, ats := range atsHosts {
		if host == ats || strings.HasSuffix(host, "."+ats) {
			score += 3.0
			break
		}
	}

	for _, keyword := range careerPathKeywords {
		if strings.Contains(link, keyword) {
			score += 1.5
			break
		}
	}

	needles := companyNeedles(companyName)
	switch {
	case containsAny(host, needles):
		score += 2.0
	case containsAny(link, needles) || containsAny(title, needles):
		score += 1.0
	}

	return score
}

// isAggregatorHost reports whether the host belongs to a job aggregator.
func isAggregatorHost(host string) bool {
	for _, aggregator := range aggregatorHosts {
		if strings.Contains(host, aggregator) {
			return true
		}
	}
	return false
}

// normalizeCompanyName lowercases the name and strips legal suffixes so
// "Acme Corp." and "acme" compare equal.
func normalizeCompanyName(name string) string {
	result := strings.ToLower(strings.TrimSpace(name))
	for _, suffix := range companySuffixes {
		result = strings.TrimSuffix(result, suffix)
	}
	return strings.TrimSpace(result)
}

// companyNeedles returns lowercase fragments whose presence in a URL or
// title signals the company's own page. Short leading words are skipped to
// avoid false positives.
func companyNeedles(companyName string) []string {
	normalized := normalizeCompanyName(companyName)
	if normalized == "" {
		return nil
	}

	compact := strings.ReplaceAll(normalized, " ", "")
	needles := []string{compact}

	if words := strings.Fields(normalized); len(words) > 1 && len(words[0]) >= 3 {
		needles = append(needles, words[0])
	}
	return needles
}

func containsAny(haystack string, needles []string) bool {
	for _, needle := range needles {
		if needle != "" && strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}
