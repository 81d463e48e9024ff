package llm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"google.golang.org/genai"

	"github.com/ternarybob/jobhunter/internal/common"
	"github.com/ternarybob/jobhunter/internal/interfaces"
)

func newTestService() *Service {
	cfg := common.NewDefaultConfig()
	return NewService(&cfg.LLM, arbor.NewLogger())
}

func TestDetectProvider(t *testing.T) {
	service := newTestService()

	tests := []struct {
		model string
		want  common.LLMProvider
	}{
		{"claude-sonnet-4-20250514", common.LLMProviderClaude},
		{"claude/claude-sonnet-4-20250514", common.LLMProviderClaude},
		{"anthropic/claude-sonnet-4-20250514", common.LLMProviderClaude},
		{"CLAUDE-SONNET-4-20250514", common.LLMProviderClaude},
		{"gemini-2.5-flash", common.LLMProviderGemini},
		{"gemini/gemini-2.5-flash", common.LLMProviderGemini},
		{"google/gemini-2.5-flash", common.LLMProviderGemini},
		{"", common.LLMProviderClaude},              // default provider
		{"mystery-model", common.LLMProviderClaude}, // default provider
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, service.DetectProvider(tt.model), "model %q", tt.model)
	}
}

func TestDetectProvider_ConfiguredDefault(t *testing.T) {
	cfg := common.NewDefaultConfig()
	cfg.LLM.DefaultProvider = common.LLMProviderGemini
	service := NewService(&cfg.LLM, arbor.NewLogger())

	assert.Equal(t, common.LLMProviderGemini, service.DetectProvider(""))
	assert.Equal(t, common.LLMProviderGemini, service.DetectProvider("mystery-model"))
}

func TestNormalizeModel(t *testing.T) {
	service := newTestService()

	tests := []struct {
		model string
		want  string
	}{
		{"claude/claude-sonnet-4-20250514", "claude-sonnet-4-20250514"},
		{"gemini/gemini-2.5-flash", "gemini-2.5-flash"},
		{"anthropic/claude-sonnet-4-20250514", "claude-sonnet-4-20250514"},
		{"claude-sonnet-4-20250514", "claude-sonnet-4-20250514"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, service.NormalizeModel(tt.model))
	}
}

func TestConvertMessagesToClaude(t *testing.T) {
	messages := []interfaces.Message{
		{Role: "system", Content: "You are a recruiter."},
		{Role: "user", Content: "Score this job."},
		{Role: "assistant", Content: "Sure."},
		{Role: "user", Content: "Here it is."},
	}

	claudeMessages, systemText, err := convertMessagesToClaude(messages)
	require.NoError(t, err)

	assert.Equal(t, "You are a recruiter.", systemText)
	// System messages are excluded from the message array
	assert.Len(t, claudeMessages, 3)
}

func TestConvertMessagesToClaude_Empty(t *testing.T) {
	_, _, err := convertMessagesToClaude(nil)
	assert.Error(t, err)
}

func TestConvertMessagesToClaude_NoUserMessage(t *testing.T) {
	messages := []interfaces.Message{
		{Role: "system", Content: "instructions only"},
	}

	_, _, err := convertMessagesToClaude(messages)
	assert.Error(t, err)
}

func TestConvertMessagesToGemini(t *testing.T) {
	messages := []interfaces.Message{
		{Role: "system", Content: "You are a recruiter."},
		{Role: "user", Content: "Score this job."},
		{Role: "assistant", Content: "Sure."},
	}

	contents, systemText, err := convertMessagesToGemini(messages)
	require.NoError(t, err)

	assert.Equal(t, "You are a recruiter.", systemText)
	require.Len(t, contents, 2)
	assert.Equal(t, "user", contents[0].Role)
	assert.Equal(t, "model", contents[1].Role)
}

func TestCleanMarkdownFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain json", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"uppercase hint", "```JSON\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "  \n```json\n{\"a\":1}\n```\n  ", `{"a":1}`},
		{"no content", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanMarkdownFences(tt.input))
		})
	}
}

func TestSchemaInstruction(t *testing.T) {
	schema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"score": map[string]interface{}{"type": "integer"},
		},
	}

	instruction := schemaInstruction(schema)
	assert.Contains(t, instruction, `"score"`)
	assert.Contains(t, instruction, "JSON")
}

func TestConvertToGenaiSchema(t *testing.T) {
	schemaMap := map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"jobs"},
		"properties": map[string]interface{}{
			"jobs": map[string]interface{}{
				"type": "array",
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"score": map[string]interface{}{
							"type":    "integer",
							"minimum": float64(0),
							"maximum": float64(100),
						},
						"recommendation": map[string]interface{}{
							"type": "string",
							"enum": []interface{}{"strong_match", "good_match", "stretch", "skip"},
						},
					},
				},
			},
		},
	}

	schema, err := convertToGenaiSchema(schemaMap)
	require.NoError(t, err)
	require.NotNil(t, schema)

	assert.Equal(t, genai.TypeObject, schema.Type)
	assert.Equal(t, []string{"jobs"}, schema.Required)

	jobs := schema.Properties["jobs"]
	require.NotNil(t, jobs)
	assert.Equal(t, genai.TypeArray, jobs.Type)

	item := jobs.Items
	require.NotNil(t, item)
	assert.Equal(t, genai.TypeInteger, item.Properties["score"].Type)
	require.NotNil(t, item.Properties["score"].Maximum)
	assert.Equal(t, float64(100), *item.Properties["score"].Maximum)
	assert.Len(t, item.Properties["recommendation"].Enum, 4)
}

func TestConvertToGenaiSchema_Empty(t *testing.T) {
	schema, err := convertToGenaiSchema(nil)
	require.NoError(t, err)
	assert.Nil(t, schema)
}

func TestIsRateLimitError(t *testing.T) {
	assert.False(t, IsRateLimitError(nil))
	assert.True(t, IsRateLimitError(errorString("Error 429: too many requests")))
	assert.True(t, IsRateLimitError(errorString("RESOURCE_EXHAUSTED")))
	assert.True(t, IsRateLimitError(errorString("quota exceeded for model")))
	assert.False(t, IsRateLimitError(errorString("connection refused")))
}

type errorString string

func (e errorString) Error() string { return string(e) }

func TestExtractRetryDelay(t *testing.T) {
	err := errorString("Error 429, Message: rate limited. Please retry in 45.387061394s., Status: RESOURCE_EXHAUSTED")
	delay := ExtractRetryDelay(err)
	assert.InDelta(t, 45.39, delay.Seconds(), 0.01)

	assert.Equal(t, time.Duration(0), ExtractRetryDelay(errorString("no delay here")))
	assert.Equal(t, time.Duration(0), ExtractRetryDelay(nil))
}

func TestCalculateBackoff(t *testing.T) {
	cfg := NewDefaultRetryConfig()

	// Without an API delay the initial backoff applies
	assert.Equal(t, cfg.InitialBackoff, cfg.CalculateBackoff(0, 0))

	// An API-provided delay replaces the base, with a buffer added
	withDelay := cfg.CalculateBackoff(0, 30*time.Second)
	assert.Equal(t, 35*time.Second, withDelay)

	// Backoff is capped
	capped := cfg.CalculateBackoff(10, 0)
	assert.Equal(t, cfg.MaxBackoff, capped)
}

func TestRetryConfigHonorsBudget(t *testing.T) {
	cfg := common.NewDefaultConfig()
	cfg.LLM.MaxRetries = 7
	service := NewService(&cfg.LLM, arbor.NewLogger())

	assert.Equal(t, 7, service.retryConfig().MaxRetries)
}
