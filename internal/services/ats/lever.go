package ats

import (
	"context"
	"fmt"
	"regexp"

	"github.com/ternarybob/jobhunter/internal/interfaces"
	"github.com/ternarybob/jobhunter/internal/models"
)

// leverBaseURL is the public Lever postings API.
const leverBaseURL = "https://api.lever.co"

// leverPattern matches hosted Lever boards and captures the site slug.
var leverPattern = regexp.MustCompile(`jobs\.lever\.co/(\w[\w-]*)`)

// LeverClient fetches postings from the Lever postings API.
type LeverClient struct {
	board *boardClient
}

var _ interfaces.ATSClient = (*LeverClient)(nil)

// NewLeverClient creates a Lever board client.
func NewLeverClient(opts ...ClientOption) *LeverClient {
	return &LeverClient{board: newBoardClient(leverBaseURL, opts...)}
}

// Type returns the ATS family this client serves
func (c *LeverClient) Type() models.ATSType {
	return models.ATSLever
}

// Detect reports whether the URL is a hosted Lever board.
func (c *LeverClient) Detect(url string) bool {
	return leverPattern.MatchString(url)
}

// FetchJobs retrieves the raw postings for the company's board. Lever
// returns a top-level array rather than a wrapped object.
func (c *LeverClient) FetchJobs(ctx context.Context, company *models.Company) ([]map[string]interface{}, error) {
	slug, err := extractSlug(leverPattern, company)
	if err != nil {
		return nil, err
	}

	var postings []map[string]interface{}
	if err := c.board.getJSON(ctx, fmt.Sprintf("/v0/postings/%s", slug), &postings); err != nil {
		return nil, err
	}

	return postings, nil
}
