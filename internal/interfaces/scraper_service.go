package interfaces

import "context"

// PageScraper fetches the rendered content of a single page.
type PageScraper interface {
	// FetchPage returns the page content for the URL. Implementations are
	// expected to fall back to a headless browser when the static fetch
	// looks JavaScript-gated; that fallback is opaque to callers.
	FetchPage(ctx context.Context, url string) (string, error)
}
