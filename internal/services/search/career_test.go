package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

type fakeCareerPageCache struct {
	entries map[string]string
}

func newFakeCareerPageCache() *fakeCareerPageCache {
	return &fakeCareerPageCache{entries: make(map[string]string)}
}

func (f *fakeCareerPageCache) GetCareerPage(companyName string) (string, error) {
	return f.entries[companyName], nil
}

func (f *fakeCareerPageCache) PutCareerPage(companyName string, url string) error {
	f.entries[companyName] = url
	return nil
}

func TestNormalizeCompanyName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "plain name", input: "Acme", expected: "acme"},
		{name: "inc suffix", input: "Acme Inc.", expected: "acme"},
		{name: "corp suffix", input: "Stark Corp", expected: "stark"},
		{name: "technologies suffix", input: "Wayne Technologies", expected: "wayne"},
		{name: "whitespace", input: "  Acme  ", expected: "acme"},
		{name: "multi word", input: "Initech Systems", expected: "initech systems"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, normalizeCompanyName(tt.input))
		})
	}
}

func TestCompanyNeedles(t *testing.T) {
	needles := companyNeedles("Stark Industries Inc.")
	assert.Contains(t, needles, "starkindustries")
	assert.Contains(t, needles, "stark")

	assert.Equal(t, []string{"acme"}, companyNeedles("Acme"))
	assert.Nil(t, companyNeedles("  "))
}

func TestScoreResult(t *testing.T) {
	tests := []struct {
		name    string
		result  OrganicResult
		company string
		check   func(t *testing.T, score float64)
	}{
		{
			name:    "own domain careers page",
			result:  OrganicResult{Title: "Careers at Acme", Link: "https://acme.com/careers"},
			company: "Acme",
			check: func(t *testing.T, score float64) {
				assert.GreaterOrEqual(t, score, minCareerPageScore)
			},
		},
		{
			name:    "greenhouse board",
			result:  OrganicResult{Title: "Jobs at Acme", Link: "https://boards.greenhouse.io/acme"},
			company: "Acme",
			check: func(t *testing.T, score float64) {
				assert.GreaterOrEqual(t, score, minCareerPageScore)
			},
		},
		{
			name:    "aggregator is penalized",
			result:  OrganicResult{Title: "Acme jobs", Link: "https://www.indeed.com/cmp/acme/jobs"},
			company: "Acme",
			check: func(t *testing.T, score float64) {
				assert.Less(t, score, 0.0)
			},
		},
		{
			name:    "unrelated page",
			result:  OrganicResult{Title: "Acme quarterly report", Link: "https://news.example.com/acme-report"},
			company: "Acme",
			check: func(t *testing.T, score float64) {
				assert.Less(t, score, minCareerPageScore)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, scoreResult(tt.result, tt.company))
		})
	}
}

func TestPickCareerPage(t *testing.T) {
	t.Run("own careers page beats aggregators", func(t *testing.T) {
		results := []OrganicResult{
			{Title: "Acme jobs on Indeed", Link: "https://indeed.com/cmp/acme"},
			{Title: "Careers at Acme", Link: "https://acme.com/careers"},
			{Title: "Acme on LinkedIn", Link: "https://linkedin.com/company/acme/jobs"},
		}
		assert.Equal(t, "https://acme.com/careers", pickCareerPage(results, "Acme"))
	})

	t.Run("falls back to best non-aggregator below threshold", func(t *testing.T) {
		results := []OrganicResult{
			{Title: "Acme on Glassdoor", Link: "https://glassdoor.com/acme"},
			{Title: "About the team", Link: "https://example.org/team"},
		}
		assert.Equal(t, "https://example.org/team", pickCareerPage(results, "Acme"))
	})

	t.Run("all aggregators yields nothing", func(t *testing.T) {
		results := []OrganicResult{
			{Title: "Acme on Indeed", Link: "https://indeed.com/cmp/acme"},
			{Title: "Acme on Monster", Link: "https://monster.com/acme"},
		}
		assert.Equal(t, "", pickCareerPage(results, "Acme"))
	})

	t.Run("empty results yields nothing", func(t *testing.T) {
		assert.Equal(t, "", pickCareerPage(nil, "Acme"))
	})

	t.Run("earlier result wins ties", func(t *testing.T) {
		results := []OrganicResult{
			{Title: "Careers at Acme", Link: "https://acme.com/careers"},
			{Title: "Acme job openings", Link: "https://acme.com/jobs"},
		}
		assert.Equal(t, "https://acme.com/careers", pickCareerPage(results, "Acme"))
	})
}

func TestFinderFindCareerPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(searchResponse{
			Organic: []OrganicResult{
				{Title: "Acme jobs on Indeed", Link: "https://indeed.com/cmp/acme"},
				{Title: "Careers at Acme", Link: "https://acme.com/careers"},
			},
		})
	}))
	defer server.Close()

	cache := newFakeCareerPageCache()
	finder := NewFinder(NewClient("test-key", WithBaseURL(server.URL)), cache, arbor.NewLogger())

	url, err := finder.FindCareerPage(context.Background(), "Acme")
	require.NoError(t, err)
	assert.Equal(t, "https://acme.com/careers", url)

	// Winner is written back to the cache.
	assert.Equal(t, "https://acme.com/careers", cache.entries["Acme"])
}

func TestFinderServesFromCache(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		json.NewEncoder(w).Encode(searchResponse{})
	}))
	defer server.Close()

	cache := newFakeCareerPageCache()
	cache.entries["Acme"] = "https://acme.com/careers"
	finder := NewFinder(NewClient("test-key", WithBaseURL(server.URL)), cache, arbor.NewLogger())

	url, err := finder.FindCareerPage(context.Background(), "Acme")
	require.NoError(t, err)
	assert.Equal(t, "https://acme.com/careers", url)
	assert.Equal(t, int32(0), calls.Load())
}

func TestFinderNoQualifyingResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(searchResponse{
			Organic: []OrganicResult{
				{Title: "Acme on Indeed", Link: "https://indeed.com/cmp/acme"},
			},
		})
	}))
	defer server.Close()

	finder := NewFinder(NewClient("test-key", WithBaseURL(server.URL)), nil, arbor.NewLogger())

	url, err := finder.FindCareerPage(context.Background(), "Acme")
	require.NoError(t, err)
	assert.Equal(t, "", url)
}

func TestFinderSearchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	finder := NewFinder(NewClient("test-key", WithBaseURL(server.URL)), nil, arbor.NewLogger())

	_, err := finder.FindCareerPage(context.Background(), "Acme")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "career page search failed")
}
