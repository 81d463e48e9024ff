package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/jobhunter/internal/common"
)

type fakeBrowser struct {
	content string
	err     error
	calls   int
}

func (f *fakeBrowser) Render(ctx context.Context, url string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.content, nil
}

func (f *fakeBrowser) Close() error { return nil }

func newTestService(minStaticLength int) *Service {
	return NewService(common.ScraperConfig{
		UserAgent:       "Mozilla/5.0 (compatible; JobHunter/1.0)",
		TimeoutSeconds:  5,
		MinStaticLength: minStaticLength,
	}, arbor.NewLogger())
}

const staticCareersPage = `<html>
<head>
<title>Careers at Acme</title>
<script src="analytics.js">var tracker = "beacon";</script>
<style>.hero { color: red; }</style>
</head>
<body>
<nav><a href="/">Home</a></nav>
<main>
<h1>Open positions</h1>
<p>Senior Backend Engineer - Remote - Build the services behind our platform.</p>
<p>Platform Engineer - Sydney - Own the deployment pipeline end to end.</p>
</main>
<footer>Acme Pty Ltd</footer>
</body>
</html>`

func TestFetchPageStatic(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, staticCareersPage)
	}))
	defer server.Close()

	service := newTestService(50)

	content, err := service.FetchPage(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Contains(t, content, "Senior Backend Engineer")
	assert.Contains(t, content, "Platform Engineer")
	assert.NotContains(t, content, "tracker")
	assert.NotContains(t, content, ".hero")
	assert.NotContains(t, content, "<nav>")
}

func TestFetchPageGatedFallsBackToBrowser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><div id="root"></div></body></html>`)
	}))
	defer server.Close()

	browser := &fakeBrowser{content: staticCareersPage}
	service := newTestService(50)
	service.browser = browser

	content, err := service.FetchPage(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, 1, browser.calls)
	assert.Contains(t, content, "Senior Backend Engineer")
	assert.NotContains(t, content, "tracker")
}

func TestFetchPageShortBodyTriggersBrowser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><p>Loading…</p></body></html>`)
	}))
	defer server.Close()

	browser := &fakeBrowser{content: staticCareersPage}
	service := newTestService(100)
	service.browser = browser

	content, err := service.FetchPage(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, 1, browser.calls)
	assert.Contains(t, content, "Open positions")
}

func TestFetchPageGatedWithoutBrowser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><div id="root"></div></body></html>`)
	}))
	defer server.Close()

	service := newTestService(50)

	content, err := service.FetchPage(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Contains(t, content, `id="root"`)
}

func TestFetchPageBrowserFailureKeepsStatic(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><div id="root"></div></body></html>`)
	}))
	defer server.Close()

	service := newTestService(50)
	service.browser = &fakeBrowser{err: errors.New("chrome not found")}

	content, err := service.FetchPage(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Contains(t, content, `id="root"`)
}

func TestFetchPageStaticFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	service := newTestService(50)

	_, err := service.FetchPage(context.Background(), server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "static fetch failed")
}

func TestFetchPageStaticFailureBrowserRecovers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	service := newTestService(50)
	service.browser = &fakeBrowser{content: staticCareersPage}

	content, err := service.FetchPage(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Contains(t, content, "Open positions")
}

func TestLooksGated(t *testing.T) {
	service := newTestService(100)

	tests := []struct {
		name  string
		html  string
		gated bool
	}{
		{
			name:  "react shell",
			html:  `<html><body><div id="root"></div></body></html>`,
			gated: true,
		},
		{
			name:  "vue shell",
			html:  `<html><body><div id="app"></div></body></html>`,
			gated: true,
		},
		{
			name:  "short body",
			html:  `<html><body><p>Loading</p></body></html>`,
			gated: true,
		},
		{
			name:  "full page",
			html:  staticCareersPage,
			gated: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleaned := cleanHTML(tt.html)
			assert.Equal(t, tt.gated, service.looksGated(tt.html, cleaned))
		})
	}
}

func TestLooksGatedDisabledByZeroLength(t *testing.T) {
	service := newTestService(0)
	html := `<html><body><p>tiny</p></body></html>`
	assert.False(t, service.looksGated(html, cleanHTML(html)))
}

func TestCleanHTML(t *testing.T) {
	cleaned := cleanHTML(staticCareersPage)

	assert.Contains(t, cleaned, "Open positions")
	assert.NotContains(t, cleaned, "<script")
	assert.NotContains(t, cleaned, "<style")
	assert.NotContains(t, cleaned, "<nav>")
	assert.NotContains(t, cleaned, "<footer>")
}
