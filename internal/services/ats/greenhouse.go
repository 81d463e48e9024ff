package ats

import (
	"context"
	"fmt"
	"regexp"

	"github.com/ternarybob/jobhunter/internal/interfaces"
	"github.com/ternarybob/jobhunter/internal/models"
)

// greenhouseBaseURL is the public Greenhouse job board API.
const greenhouseBaseURL = "https://boards-api.greenhouse.io"

// greenhousePattern matches hosted Greenhouse boards and captures the board
// slug.
var greenhousePattern = regexp.MustCompile(`boards\.greenhouse\.io/(\w+)`)

// GreenhouseClient fetches postings from the Greenhouse job board API.
type GreenhouseClient struct {
	board *boardClient
}

var _ interfaces.ATSClient = (*GreenhouseClient)(nil)

// NewGreenhouseClient creates a Greenhouse board client.
func NewGreenhouseClient(opts ...ClientOption) *GreenhouseClient {
	return &GreenhouseClient{board: newBoardClient(greenhouseBaseURL, opts...)}
}

// Type returns the ATS family this client serves
func (c *GreenhouseClient) Type() models.ATSType {
	return models.ATSGreenhouse
}

// Detect reports whether the URL is a hosted Greenhouse board.
func (c *GreenhouseClient) Detect(url string) bool {
	return greenhousePattern.MatchString(url)
}

// FetchJobs retrieves the raw postings for the company's board.
func (c *GreenhouseClient) FetchJobs(ctx context.Context, company *models.Company) ([]map[string]interface{}, error) {
	slug, err := extractSlug(greenhousePattern, company)
	if err != nil {
		return nil, err
	}

	var response struct {
		Jobs []map[string]interface{} `json:"jobs"`
	}
	if err := c.board.getJSON(ctx, fmt.Sprintf("/v1/boards/%s/jobs", slug), &response); err != nil {
		return nil, err
	}

	return response.Jobs, nil
}
