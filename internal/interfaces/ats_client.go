// -----------------------------------------------------------------------
// Last Modified: Tuesday, 21st July 2026 2:44:10 pm
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package interfaces

import (
	"context"

	"github.com/ternarybob/jobhunter/internal/models"
)

// ATSClient is one applicant-tracking-system strategy. Each client knows how
// to recognize its board URLs and how to fetch the raw job records behind
// them.
type ATSClient interface {
	// Type returns the ATS family this client serves
	Type() models.ATSType

	// Detect reports whether the URL belongs to this ATS family. Pure
	// regex match, no I/O.
	Detect(url string) bool

	// FetchJobs retrieves the raw job records for the company's career
	// page. The outer response wrapper differs per family; every client
	// returns a flat list of records.
	FetchJobs(ctx context.Context, company *models.Company) ([]map[string]interface{}, error)
}

// CareerPageCache stores validated career-page lookups so repeated runs skip
// the search provider. ATS detection is derived from the URL by regex and is
// never cached.
type CareerPageCache interface {
	// GetCareerPage returns the cached careers URL for the company name,
	// or an empty string when absent or expired.
	GetCareerPage(companyName string) (string, error)

	// PutCareerPage stores a validated careers URL under the company name.
	PutCareerPage(companyName string, url string) error
}
