// -----------------------------------------------------------------------
// Career Page Store - Caches validated career-page URLs between runs
// -----------------------------------------------------------------------

package badger

import (
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/jobhunter/internal/common"
	"github.com/ternarybob/jobhunter/internal/interfaces"
)

// CareerPageRecord is one validated careers-page lookup. Company holds the
// normalized name used as the key; DisplayName keeps the original casing for
// logs and reports.
type CareerPageRecord struct {
	Company     string `badgerhold:"key"`
	DisplayName string
	URL         string
	CheckedAt   time.Time
}

// CareerPageStore persists career-page URLs so repeated runs skip the search
// provider. Entries older than the TTL read as missing and the next
// successful lookup overwrites them.
type CareerPageStore struct {
	db     *BadgerDB
	ttl    time.Duration
	logger arbor.ILogger
}

var _ interfaces.CareerPageCache = (*CareerPageStore)(nil)

// NewCareerPageStore creates a career-page cache backed by the given
// connection. A non-positive ttl makes every read a miss, so lookups always
// fall through to the search provider.
func NewCareerPageStore(db *BadgerDB, ttl time.Duration, logger arbor.ILogger) *CareerPageStore {
	return &CareerPageStore{
		db:     db,
		ttl:    ttl,
		logger: logger,
	}
}

// GetCareerPage returns the cached careers URL for the company, or an empty
// string when the entry is absent or stale.
func (s *CareerPageStore) GetCareerPage(companyName string) (string, error) {
	key := normalizeCompanyKey(companyName)
	if key == "" {
		return "", nil
	}

	var record CareerPageRecord
	if err := s.db.Store().Get(key, &record); err != nil {
		if err == badgerhold.ErrNotFound {
			return "", nil
		}
		return "", fmt.Errorf("failed to read career page for %s: %w", companyName, err)
	}

	staleness := common.CheckCacheStaleness(record.CheckedAt, time.Now(), s.ttl)
	if staleness.IsStale {
		s.logger.Debug().
			Str("company", companyName).
			Str("reason", staleness.Reason).
			Msg("Cached career page is stale")
		return "", nil
	}

	return record.URL, nil
}

// PutCareerPage stores a validated careers URL under the company name,
// replacing any previous entry.
func (s *CareerPageStore) PutCareerPage(companyName string, url string) error {
	key := normalizeCompanyKey(companyName)
	if key == "" {
		return fmt.Errorf("company name is empty")
	}
	if strings.TrimSpace(url) == "" {
		return fmt.Errorf("career page URL is empty for %s", companyName)
	}

	record := CareerPageRecord{
		Company:     key,
		DisplayName: strings.TrimSpace(companyName),
		URL:         strings.TrimSpace(url),
		CheckedAt:   time.Now().UTC(),
	}
	if err := s.db.Store().Upsert(key, &record); err != nil {
		return fmt.Errorf("failed to store career page for %s: %w", companyName, err)
	}

	s.logger.Debug().
		Str("company", companyName).
		Str("url", record.URL).
		Msg("Cached career page")

	return nil
}

// normalizeCompanyKey lowercases and trims the company name so lookups are
// case and whitespace insensitive.
func normalizeCompanyKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
