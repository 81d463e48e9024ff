package common

import (
	"net/url"
	"strings"
)

// careerPaths are the URL paths commonly used for company career pages,
// ordered by how often they appear in the wild. Used to probe for a career
// page when web search returns nothing usable.
var careerPaths = []string{
	"/careers",
	"/jobs",
	"/careers/jobs",
	"/company/careers",
	"/about/careers",
	"/join-us",
}

// trackingParams are query parameters stripped during URL normalization.
// The gh_src and lever- parameters are source trackers added by ATS boards.
var trackingParams = map[string]bool{
	"gclid":        true,
	"fbclid":       true,
	"gh_src":       true,
	"lever-source": true,
	"lever-origin": true,
}

// HostOf returns the lowercased hostname of rawURL without port or a
// leading "www." prefix. Returns an empty string when the URL is not
// parseable.
func HostOf(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return ""
	}

	// Bare domains parse as paths, so give them a scheme first
	if !strings.Contains(rawURL, "://") {
		rawURL = "https://" + rawURL
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	host := strings.ToLower(parsed.Hostname())
	return strings.TrimPrefix(host, "www.")
}

// NormalizeJobURL resolves href against baseURL and strips fragments and
// tracking query parameters. Relative links extracted from career pages
// become absolute this way. Returns href unchanged when either URL fails
// to parse.
func NormalizeJobURL(baseURL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}

	hrefURL, err := url.Parse(href)
	if err != nil {
		return href
	}

	resolved := hrefURL
	if baseURL != "" {
		base, err := url.Parse(baseURL)
		if err == nil {
			resolved = base.ResolveReference(hrefURL)
		}
	}

	resolved.Fragment = ""

	query := resolved.Query()
	changed := false
	for param := range query {
		if trackingParams[param] || strings.HasPrefix(param, "utm_") {
			query.Del(param)
			changed = true
		}
	}
	if changed {
		resolved.RawQuery = query.Encode()
	}

	return resolved.String()
}

// CandidateCareerURLs returns likely career page URLs for a company domain,
// most common path first. The domain may be bare ("acme.com") or a full URL.
func CandidateCareerURLs(domain string) []string {
	host := HostOf(domain)
	if host == "" {
		return nil
	}

	urls := make([]string, 0, len(careerPaths))
	for _, path := range careerPaths {
		urls = append(urls, "https://"+host+path)
	}
	return urls
}
