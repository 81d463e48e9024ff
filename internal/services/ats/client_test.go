package ats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/jobhunter/internal/models"
)

type fakePageScraper struct {
	content string
	err     error
}

func (f *fakePageScraper) FetchPage(ctx context.Context, url string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.content, nil
}

func testCompany(name, careerURL string) *models.Company {
	return &models.Company{
		ID:   "comp_test",
		Name: name,
		CareerPage: &models.CareerPage{
			URL: careerURL,
		},
	}
}

func TestGreenhouseFetchJobs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/boards/acme/jobs", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"jobs": []map[string]interface{}{
				{"title": "Backend Engineer", "absolute_url": "https://boards.greenhouse.io/acme/jobs/1"},
				{"title": "Platform Engineer", "absolute_url": "https://boards.greenhouse.io/acme/jobs/2"},
			},
		})
	}))
	defer server.Close()

	client := NewGreenhouseClient(WithBaseURL(server.URL))
	company := testCompany("Acme", "https://boards.greenhouse.io/acme")

	jobs, err := client.FetchJobs(context.Background(), company)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "Backend Engineer", jobs[0]["title"])
}

func TestLeverFetchJobs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v0/postings/acme-corp", r.URL.Path)
		json.NewEncoder(w).Encode([]map[string]interface{}{
			{"text": "Data Engineer", "hostedUrl": "https://jobs.lever.co/acme-corp/1"},
		})
	}))
	defer server.Close()

	client := NewLeverClient(WithBaseURL(server.URL))
	company := testCompany("Acme Corp", "https://jobs.lever.co/acme-corp")

	jobs, err := client.FetchJobs(context.Background(), company)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Data Engineer", jobs[0]["text"])
}

func TestAshbyFetchJobs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/posting-api/job-board/acme", r.URL.Path)
		assert.Equal(t, ashbyUserAgent, r.Header.Get("User-Agent"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"jobs": []map[string]interface{}{
				{"title": "SRE", "jobUrl": "https://jobs.ashbyhq.com/acme/1"},
			},
		})
	}))
	defer server.Close()

	client := NewAshbyClient(WithBaseURL(server.URL))
	company := testCompany("Acme", "https://jobs.ashbyhq.com/acme")

	jobs, err := client.FetchJobs(context.Background(), company)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "SRE", jobs[0]["title"])
}

func TestFetchJobsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, "board not found")
	}))
	defer server.Close()

	client := NewGreenhouseClient(WithBaseURL(server.URL))
	company := testCompany("Acme", "https://boards.greenhouse.io/acme")

	_, err := client.FetchJobs(context.Background(), company)
	require.Error(t, err)

	var apiErr *models.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "board not found")
}

func TestFetchJobsNoCareerPage(t *testing.T) {
	client := NewGreenhouseClient()
	company := &models.Company{ID: "comp_test", Name: "Acme"}

	_, err := client.FetchJobs(context.Background(), company)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no career page")
}

func TestFetchJobsSlugMismatch(t *testing.T) {
	client := NewGreenhouseClient()
	company := testCompany("Acme", "https://acme.com/careers")

	_, err := client.FetchJobs(context.Background(), company)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not contain a board slug")
}

func TestWorkdayFetchJobs(t *testing.T) {
	scraper := &fakePageScraper{
		content: `<html><head><title>Careers at Acme</title></head><body><div>Engineer openings</div></body></html>`,
	}
	client := NewWorkdayClient(scraper, arbor.NewLogger())
	company := testCompany("Acme", "https://acme.wd1.myworkdayjobs.com/External")

	jobs, err := client.FetchJobs(context.Background(), company)
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	assert.Equal(t, "Careers at Acme", jobs[0]["title"])
	assert.Equal(t, scraper.content, jobs[0]["content"])
	assert.Equal(t, "https://acme.wd1.myworkdayjobs.com/External", jobs[0]["absolute_url"])
}

func TestWorkdayFetchJobsTitleFallback(t *testing.T) {
	scraper := &fakePageScraper{content: `<html><body>Openings</body></html>`}
	client := NewWorkdayClient(scraper, arbor.NewLogger())
	company := testCompany("Acme", "https://acme.wd1.myworkdayjobs.com/External")

	jobs, err := client.FetchJobs(context.Background(), company)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Acme careers", jobs[0]["title"])
}

func TestWorkdayFetchJobsScrapeFailure(t *testing.T) {
	scraper := &fakePageScraper{err: errors.New("browser crashed")}
	client := NewWorkdayClient(scraper, arbor.NewLogger())
	company := testCompany("Acme", "https://acme.wd1.myworkdayjobs.com/External")

	_, err := client.FetchJobs(context.Background(), company)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workday page fetch failed")
}
