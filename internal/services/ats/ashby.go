package ats

import (
	"context"
	"fmt"
	"regexp"

	"github.com/ternarybob/jobhunter/internal/interfaces"
	"github.com/ternarybob/jobhunter/internal/models"
)

// ashbyBaseURL is the public Ashby posting API.
const ashbyBaseURL = "https://api.ashbyhq.com"

// ashbyUserAgent satisfies Ashby's bot filter. Requests without a browser
// style User-Agent come back 403.
const ashbyUserAgent = "Mozilla/5.0 (compatible; JobHunter/1.0)"

// ashbyPattern matches hosted Ashby boards and captures the board slug.
var ashbyPattern = regexp.MustCompile(`jobs\.ashbyhq\.com/(\w[\w-]*)`)

// AshbyClient fetches postings from the Ashby posting API.
type AshbyClient struct {
	board *boardClient
}

var _ interfaces.ATSClient = (*AshbyClient)(nil)

// NewAshbyClient creates an Ashby board client.
func NewAshbyClient(opts ...ClientOption) *AshbyClient {
	all := append([]ClientOption{WithUserAgent(ashbyUserAgent)}, opts...)
	return &AshbyClient{board: newBoardClient(ashbyBaseURL, all...)}
}

// Type returns the ATS family this client serves
func (c *AshbyClient) Type() models.ATSType {
	return models.ATSAshby
}

// Detect reports whether the URL is a hosted Ashby board.
func (c *AshbyClient) Detect(url string) bool {
	return ashbyPattern.MatchString(url)
}

// FetchJobs retrieves the raw postings for the company's board.
func (c *AshbyClient) FetchJobs(ctx context.Context, company *models.Company) ([]map[string]interface{}, error) {
	slug, err := extractSlug(ashbyPattern, company)
	if err != nil {
		return nil, err
	}

	var response struct {
		Jobs []map[string]interface{} `json:"jobs"`
	}
	if err := c.board.getJSON(ctx, fmt.Sprintf("/posting-api/job-board/%s", slug), &response); err != nil {
		return nil, err
	}

	return response.Jobs, nil
}
