package costs

import (
	"github.com/ternarybob/jobhunter/internal/interfaces"
)

// ModelRate holds USD prices per million tokens for one model.
type ModelRate struct {
	InputPerMillion  float64
	OutputPerMillion float64
}

// modelRates maps model ids to published API prices. Unknown models
// contribute zero cost so accounting keeps working when a new model ships
// before the table catches up.
var modelRates = map[string]ModelRate{
	// Anthropic
	"claude-sonnet-4-20250514":   {InputPerMillion: 3.00, OutputPerMillion: 15.00},
	"claude-opus-4-20250514":     {InputPerMillion: 15.00, OutputPerMillion: 75.00},
	"claude-3-5-haiku-20241022":  {InputPerMillion: 0.80, OutputPerMillion: 4.00},
	"claude-3-5-sonnet-20241022": {InputPerMillion: 3.00, OutputPerMillion: 15.00},

	// Google
	"gemini-2.5-flash": {InputPerMillion: 0.30, OutputPerMillion: 2.50},
	"gemini-2.5-pro":   {InputPerMillion: 1.25, OutputPerMillion: 10.00},
	"gemini-2.0-flash": {InputPerMillion: 0.10, OutputPerMillion: 0.40},
}

// RateFor returns the price entry for a model id and whether it is known.
func RateFor(model string) (ModelRate, bool) {
	rate, ok := modelRates[model]
	return rate, ok
}

// CostUSD computes the dollar cost of a single completion from its token
// usage. Unknown models cost zero.
func CostUSD(usage interfaces.Usage) float64 {
	rate, ok := modelRates[usage.Model]
	if !ok {
		return 0
	}
	input := float64(usage.InputTokens) * rate.InputPerMillion / 1_000_000
	output := float64(usage.OutputTokens) * rate.OutputPerMillion / 1_000_000
	return input + output
}
