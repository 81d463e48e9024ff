package search

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/jobhunter/internal/models"
)

func TestClientSearch(t *testing.T) {
	var gotRequest searchRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-API-KEY"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRequest))

		json.NewEncoder(w).Encode(searchResponse{
			Organic: []OrganicResult{
				{Title: "Careers at Acme", Link: "https://acme.com/careers", Snippet: "Open roles"},
				{Title: "Acme jobs on Indeed", Link: "https://indeed.com/cmp/acme", Snippet: "Listings"},
			},
		})
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))

	results, err := client.Search(context.Background(), `"Acme" careers jobs`)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "https://acme.com/careers", results[0].Link)
	assert.Equal(t, "Careers at Acme", results[0].Title)

	assert.Equal(t, `"Acme" careers jobs`, gotRequest.Query)
	assert.Equal(t, DefaultMaxResults, gotRequest.Num)
}

func TestClientSearchMaxResults(t *testing.T) {
	var gotRequest searchRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRequest))
		json.NewEncoder(w).Encode(searchResponse{})
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL), WithMaxResults(3))

	_, err := client.Search(context.Background(), "query")
	require.NoError(t, err)
	assert.Equal(t, 3, gotRequest.Num)
}

func TestClientSearchAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"invalid api key"}`))
	}))
	defer server.Close()

	client := NewClient("bad-key", WithBaseURL(server.URL))

	_, err := client.Search(context.Background(), "query")
	require.Error(t, err)

	var apiErr *models.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "/search", apiErr.Endpoint)
	assert.Contains(t, apiErr.Message, "invalid api key")
}

func TestClientSearchEmptyOrganic(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"searchParameters": map[string]interface{}{"q": "query"}})
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))

	results, err := client.Search(context.Background(), "query")
	require.NoError(t, err)
	assert.Empty(t, results)
}
