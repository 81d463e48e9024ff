package scraper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/jobhunter/internal/common"
)

// jsRenderWait gives client-side frameworks time to paint before the DOM is
// captured.
const jsRenderWait = 2 * time.Second

// chromeRenderer renders pages in a shared headless Chrome. The allocator
// starts on first use and lives until Close.
type chromeRenderer struct {
	config common.ScraperConfig
	logger arbor.ILogger

	mu              sync.Mutex
	allocatorCtx    context.Context
	allocatorCancel context.CancelFunc
}

func newChromeRenderer(config common.ScraperConfig, logger arbor.ILogger) *chromeRenderer {
	return &chromeRenderer{
		config: config,
		logger: logger,
	}
}

func (r *chromeRenderer) allocator() context.Context {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.allocatorCtx == nil {
		opts := append(
			chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.Flag("disable-blink-features", "AutomationControlled"),
			chromedp.UserAgent(r.config.UserAgent),
		)
		r.allocatorCtx, r.allocatorCancel = chromedp.NewExecAllocator(context.Background(), opts...)
		r.logger.Info().Msg("Headless browser allocator started")
	}

	return r.allocatorCtx
}

// Render navigates to the URL and captures the rendered DOM.
func (r *chromeRenderer) Render(ctx context.Context, url string) (string, error) {
	browserCtx, cancelBrowser := chromedp.NewContext(r.allocator())
	defer cancelBrowser()

	timeout := time.Duration(r.config.BrowserTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	runCtx, cancelRun := context.WithTimeout(browserCtx, timeout)
	defer cancelRun()

	// chromedp contexts derive from the allocator, not the caller, so the
	// caller's cancellation has to be propagated by hand.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			cancelRun()
		case <-done:
		}
	}()

	// Track the main document's HTTP status. A blocked career page often
	// renders a perfectly parseable challenge page over a 403.
	var statusMu sync.Mutex
	var docStatus int64
	chromedp.ListenTarget(runCtx, func(ev interface{}) {
		resp, ok := ev.(*network.EventResponseReceived)
		if !ok || resp.Type != network.ResourceTypeDocument {
			return
		}
		statusMu.Lock()
		if docStatus == 0 {
			docStatus = resp.Response.Status
		}
		statusMu.Unlock()
	})

	var html string
	err := chromedp.Run(runCtx,
		network.Enable(),
		chromedp.Navigate(url),
		chromedp.Sleep(jsRenderWait),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("browser render failed for %s: %w", url, err)
	}

	statusMu.Lock()
	status := docStatus
	statusMu.Unlock()
	if status >= 400 {
		return "", fmt.Errorf("browser render got HTTP %d for %s", status, url)
	}

	r.logger.Debug().
		Str("url", url).
		Int64("status", status).
		Int("content_length", len(html)).
		Msg("Browser render complete")
	return html, nil
}

// Close shuts the shared browser down.
func (r *chromeRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.allocatorCancel != nil {
		r.allocatorCancel()
		r.allocatorCtx = nil
		r.allocatorCancel = nil
	}
	return nil
}
