package interfaces

import "context"

// CareerPageFinder locates the canonical careers URL for a company.
type CareerPageFinder interface {
	// FindCareerPage returns the best careers URL for the company, or an
	// empty string when no qualifying result exists. An error means the
	// search itself failed, not that nothing was found.
	FindCareerPage(ctx context.Context, companyName string) (string, error)
}
