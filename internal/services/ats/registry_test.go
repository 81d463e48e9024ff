package ats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/jobhunter/internal/models"
)

func newTestRegistry() *Registry {
	return DefaultRegistry(nil, arbor.NewLogger())
}

func TestRegistryDetect(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected models.ATSType
		matched  bool
	}{
		{
			name:     "greenhouse board",
			url:      "https://boards.greenhouse.io/acme",
			expected: models.ATSGreenhouse,
			matched:  true,
		},
		{
			name:     "lever board",
			url:      "https://jobs.lever.co/acme",
			expected: models.ATSLever,
			matched:  true,
		},
		{
			name:     "lever board with hyphenated slug",
			url:      "https://jobs.lever.co/acme-corp",
			expected: models.ATSLever,
			matched:  true,
		},
		{
			name:     "ashby board",
			url:      "https://jobs.ashbyhq.com/acme",
			expected: models.ATSAshby,
			matched:  true,
		},
		{
			name:     "workday subdomain",
			url:      "https://acme.wd1.myworkdayjobs.com/External",
			expected: models.ATSWorkday,
			matched:  true,
		},
		{
			name:     "workday en-US path",
			url:      "https://www.workday.com/en-US/company/careers.html",
			expected: models.ATSWorkday,
			matched:  true,
		},
		{
			name:    "own career site",
			url:     "https://acme.com/careers",
			matched: false,
		},
		{
			name:    "empty url",
			url:     "",
			matched: false,
		},
	}

	registry := newTestRegistry()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, ok := registry.Detect(tt.url)
			assert.Equal(t, tt.matched, ok)
			if tt.matched {
				require.NotNil(t, client)
				assert.Equal(t, tt.expected, client.Type())
			}
		})
	}
}

func TestRegistryClassify(t *testing.T) {
	registry := newTestRegistry()

	atsType, strategy := registry.Classify("https://boards.greenhouse.io/acme")
	assert.Equal(t, models.ATSGreenhouse, atsType)
	assert.Equal(t, models.StrategyAPI, strategy)

	atsType, strategy = registry.Classify("https://acme.com/careers")
	assert.Equal(t, models.ATSUnknown, atsType)
	assert.Equal(t, models.StrategyCrawler, strategy)
}

func TestRegistryClientFor(t *testing.T) {
	registry := newTestRegistry()

	client, ok := registry.ClientFor(models.ATSLever)
	require.True(t, ok)
	assert.Equal(t, models.ATSLever, client.Type())

	_, ok = registry.ClientFor(models.ATSICIMS)
	assert.False(t, ok)
}

func TestGreenhouseDetectPrecedesWorkday(t *testing.T) {
	// A URL mentioning both hosts resolves to the first match in
	// detection order.
	registry := newTestRegistry()
	client, ok := registry.Detect("https://boards.greenhouse.io/acme?ref=workday.com/en-US")
	require.True(t, ok)
	assert.Equal(t, models.ATSGreenhouse, client.Type())
}
