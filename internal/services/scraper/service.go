package scraper

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/jobhunter/internal/common"
	"github.com/ternarybob/jobhunter/internal/interfaces"
)

// spaMarkers appear in shell pages that render everything client side. Their
// presence means the static body carries no postings.
var spaMarkers = []string{
	`<div id="root"></div>`,
	`<div id="app"></div>`,
	`<app-root></app-root>`,
}

// noiseSelectors are stripped before content is returned. Scripts and page
// chrome carry no posting text and inflate every downstream LLM prompt.
var noiseSelectors = []string{
	"script", "style", "noscript", "iframe", "svg",
	"nav", "header", "footer", "[role='navigation']",
	".cookie-banner", ".cookie-consent", "#onetrust-consent-sdk",
}

// BrowserRenderer renders a page in a headless browser.
type BrowserRenderer interface {
	Render(ctx context.Context, url string) (string, error)
	Close() error
}

// Service fetches rendered career-page content. The static path goes
// through colly; results that look JavaScript-gated fall back to a headless
// browser when one is enabled.
type Service struct {
	config  common.ScraperConfig
	logger  arbor.ILogger
	browser BrowserRenderer
}

var _ interfaces.PageScraper = (*Service)(nil)

// NewService creates a page scraper. The headless fallback is only wired
// when the configuration enables it.
func NewService(config common.ScraperConfig, logger arbor.ILogger) *Service {
	s := &Service{
		config: config,
		logger: logger,
	}
	if config.BrowserEnabled {
		s.browser = newChromeRenderer(config, logger)
	}
	return s
}

// FetchPage returns the cleaned page content for the URL.
func (s *Service) FetchPage(ctx context.Context, pageURL string) (string, error) {
	static, staticErr := s.fetchStatic(ctx, pageURL)

	var cleaned string
	if staticErr == nil {
		cleaned = cleanHTML(static)
		if !s.looksGated(static, cleaned) {
			return cleaned, nil
		}
	} else {
		s.logger.Debug().Err(staticErr).Str("url", pageURL).Msg("Static fetch failed")
	}

	if s.browser == nil {
		if staticErr != nil {
			return "", staticErr
		}
		s.logger.Debug().
			Str("url", pageURL).
			Msg("Page looks JavaScript gated and browser fallback is disabled")
		return cleaned, nil
	}

	rendered, renderErr := s.browser.Render(ctx, pageURL)
	if renderErr != nil {
		if staticErr != nil {
			return "", fmt.Errorf("static fetch failed (%v) and browser render failed: %w", staticErr, renderErr)
		}
		s.logger.Warn().
			Err(renderErr).
			Str("url", pageURL).
			Msg("Browser render failed, keeping static result")
		return cleaned, nil
	}

	return cleanHTML(rendered), nil
}

// Close releases the headless browser if one was started.
func (s *Service) Close() error {
	if s.browser != nil {
		return s.browser.Close()
	}
	return nil
}

// fetchStatic retrieves the page over plain HTTP.
func (s *Service) fetchStatic(ctx context.Context, targetURL string) (string, error) {
	c := colly.NewCollector(
		colly.UserAgent(s.config.UserAgent),
		colly.IgnoreRobotsTxt(),
	)
	c.SetRequestTimeout(s.timeout())
	c.WithTransport(&contextAwareTransport{base: http.DefaultTransport, ctx: ctx})

	var (
		body       string
		statusCode int
		fetchErr   error
	)

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
			return
		}
		r.Headers.Set("Accept-Language", "en-US,en;q=0.9")
	})

	c.OnError(func(r *colly.Response, err error) {
		fetchErr = err
		if r != nil {
			statusCode = r.StatusCode
		}
	})

	c.OnResponse(func(r *colly.Response) {
		statusCode = r.StatusCode
		body = string(r.Body)
	})

	if err := c.Visit(targetURL); err != nil {
		return "", fmt.Errorf("static fetch failed for %s: %w", targetURL, err)
	}
	if fetchErr != nil {
		return "", fmt.Errorf("static fetch failed for %s (status %d): %w", targetURL, statusCode, fetchErr)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	return body, nil
}

// looksGated reports whether the static result is a client-side shell that
// needs a browser to render.
func (s *Service) looksGated(raw, cleaned string) bool {
	for _, marker := range spaMarkers {
		if strings.Contains(raw, marker) {
			return true
		}
	}
	if s.config.MinStaticLength <= 0 {
		return false
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(cleaned))
	if err != nil {
		return false
	}
	text := strings.TrimSpace(doc.Find("body").Text())
	return len(text) < s.config.MinStaticLength
}

func (s *Service) timeout() time.Duration {
	if s.config.TimeoutSeconds > 0 {
		return time.Duration(s.config.TimeoutSeconds) * time.Second
	}
	return 30 * time.Second
}

// cleanHTML strips noise elements and returns the remaining markup. The
// input is returned unchanged when it cannot be parsed.
func cleanHTML(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}

	for _, selector := range noiseSelectors {
		doc.Find(selector).Remove()
	}

	out, err := doc.Html()
	if err != nil {
		return html
	}
	return out
}

// contextAwareTransport wraps an http.RoundTripper so in-flight requests
// observe the caller's cancellation.
type contextAwareTransport struct {
	base http.RoundTripper
	ctx  context.Context
}

func (t *contextAwareTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	select {
	case <-t.ctx.Done():
		return nil, t.ctx.Err()
	default:
	}
	return t.base.RoundTrip(req.WithContext(t.ctx))
}
