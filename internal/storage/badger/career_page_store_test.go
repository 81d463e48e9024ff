package badger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/jobhunter/internal/common"
)

func newTestStore(t *testing.T, ttl time.Duration) *CareerPageStore {
	t.Helper()

	db, err := NewBadgerDB(arbor.NewLogger(), &common.BadgerConfig{Path: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewCareerPageStore(db, ttl, arbor.NewLogger())
}

func TestCareerPageStoreRoundTrip(t *testing.T) {
	store := newTestStore(t, time.Hour)

	require.NoError(t, store.PutCareerPage("Acme Corp", "https://acme.example.com/careers"))

	url, err := store.GetCareerPage("Acme Corp")
	require.NoError(t, err)
	assert.Equal(t, "https://acme.example.com/careers", url)
}

func TestCareerPageStoreLookupIsCaseInsensitive(t *testing.T) {
	store := newTestStore(t, time.Hour)

	require.NoError(t, store.PutCareerPage("Acme Corp", "https://acme.example.com/careers"))

	for _, name := range []string{"acme corp", "ACME CORP", "  Acme Corp  "} {
		url, err := store.GetCareerPage(name)
		require.NoError(t, err)
		assert.Equal(t, "https://acme.example.com/careers", url, "lookup for %q", name)
	}
}

func TestCareerPageStoreMissReturnsEmpty(t *testing.T) {
	store := newTestStore(t, time.Hour)

	url, err := store.GetCareerPage("Unknown Industries")
	require.NoError(t, err)
	assert.Empty(t, url)
}

func TestCareerPageStoreExpiredEntryReadsAsMiss(t *testing.T) {
	store := newTestStore(t, time.Hour)

	record := CareerPageRecord{
		Company:     "stale systems",
		DisplayName: "Stale Systems",
		URL:         "https://stale.example.com/jobs",
		CheckedAt:   time.Now().UTC().Add(-2 * time.Hour),
	}
	require.NoError(t, store.db.Store().Upsert(record.Company, &record))

	url, err := store.GetCareerPage("Stale Systems")
	require.NoError(t, err)
	assert.Empty(t, url)
}

func TestCareerPageStoreZeroTTLDisablesReads(t *testing.T) {
	store := newTestStore(t, 0)

	require.NoError(t, store.PutCareerPage("Acme Corp", "https://acme.example.com/careers"))

	url, err := store.GetCareerPage("Acme Corp")
	require.NoError(t, err)
	assert.Empty(t, url)
}

func TestCareerPageStoreOverwrite(t *testing.T) {
	store := newTestStore(t, time.Hour)

	require.NoError(t, store.PutCareerPage("Acme Corp", "https://old.example.com/careers"))
	require.NoError(t, store.PutCareerPage("acme corp", "https://new.example.com/careers"))

	url, err := store.GetCareerPage("Acme Corp")
	require.NoError(t, err)
	assert.Equal(t, "https://new.example.com/careers", url)
}

func TestCareerPageStoreRejectsEmptyInputs(t *testing.T) {
	store := newTestStore(t, time.Hour)

	url, err := store.GetCareerPage("   ")
	require.NoError(t, err)
	assert.Empty(t, url)

	assert.Error(t, store.PutCareerPage("   ", "https://acme.example.com/careers"))
	assert.Error(t, store.PutCareerPage("Acme Corp", "   "))
}

func TestNormalizeCompanyKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Lowercases", "Acme Corp", "acme corp"},
		{"TrimsWhitespace", "  Acme Corp \n", "acme corp"},
		{"KeepsInnerSpacing", "Acme  Corp", "acme  corp"},
		{"Empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, normalizeCompanyKey(tt.input))
		})
	}
}
