// Package llm routes completion requests to Anthropic or Gemini based on the
// requested model id, with retry, rate-limit backoff, and structured-output
// validation shared across providers.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"
	"google.golang.org/genai"

	"github.com/ternarybob/jobhunter/internal/common"
	"github.com/ternarybob/jobhunter/internal/interfaces"
)

// Service implements interfaces.CompletionService over the Claude and Gemini
// APIs. Clients are created lazily on first use so a run configured for one
// provider never needs the other's API key.
type Service struct {
	config *common.LLMConfig
	logger arbor.ILogger

	geminiClient *genai.Client
	claudeClient anthropic.Client
	claudeReady  bool
}

var _ interfaces.CompletionService = (*Service)(nil)

// NewService creates an LLM completion service.
func NewService(config *common.LLMConfig, logger arbor.ILogger) *Service {
	return &Service{
		config: config,
		logger: logger,
	}
}

// DetectProvider determines the provider from a model string.
// Model strings can be:
// - "claude-sonnet-4-20250514" -> Claude
// - "claude/claude-sonnet-4-20250514" -> Claude (with prefix)
// - "gemini-2.5-flash" -> Gemini
// - Empty string -> default provider from config
func (s *Service) DetectProvider(model string) common.LLMProvider {
	if model == "" {
		return s.config.DefaultProvider
	}

	model = strings.ToLower(model)

	if strings.HasPrefix(model, "claude/") || strings.HasPrefix(model, "anthropic/") {
		return common.LLMProviderClaude
	}
	if strings.HasPrefix(model, "gemini/") || strings.HasPrefix(model, "google/") {
		return common.LLMProviderGemini
	}

	if strings.HasPrefix(model, "claude-") {
		return common.LLMProviderClaude
	}
	if strings.HasPrefix(model, "gemini-") {
		return common.LLMProviderGemini
	}

	return s.config.DefaultProvider
}

// NormalizeModel removes a provider prefix from the model name if present
func (s *Service) NormalizeModel(model string) string {
	prefixes := []string{"claude/", "anthropic/", "gemini/", "google/"}
	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToLower(model), prefix) {
			return model[len(prefix):]
		}
	}
	return model
}

// Complete generates a completion with the provider matching the requested
// model. When OutputSchema is set the returned Text is validated JSON with
// any markdown fences stripped.
func (s *Service) Complete(ctx context.Context, req *interfaces.CompletionRequest) (*interfaces.CompletionResponse, error) {
	provider := s.DetectProvider(req.Model)
	model := s.NormalizeModel(req.Model)

	s.logger.Debug().
		Str("provider", string(provider)).
		Str("model", model).
		Int("message_count", len(req.Messages)).
		Bool("structured", req.OutputSchema != nil).
		Msg("Generating completion")

	switch provider {
	case common.LLMProviderClaude:
		return s.completeWithClaude(ctx, req, model)
	default:
		return s.completeWithGemini(ctx, req, model)
	}
}

// getClaudeClient returns a Claude client, creating one if necessary
func (s *Service) getClaudeClient() (anthropic.Client, error) {
	if s.claudeReady {
		return s.claudeClient, nil
	}

	apiKey, err := common.ResolveAPIKey("anthropic_api_key", s.config.Claude.APIKey)
	if err != nil {
		return anthropic.Client{}, fmt.Errorf("failed to resolve Anthropic API key: %w", err)
	}

	s.claudeClient = anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)
	s.claudeReady = true
	return s.claudeClient, nil
}

// getGeminiClient returns a Gemini client, creating one if necessary
func (s *Service) getGeminiClient(ctx context.Context) (*genai.Client, error) {
	if s.geminiClient != nil {
		return s.geminiClient, nil
	}

	apiKey, err := common.ResolveAPIKey("gemini_api_key", s.config.Gemini.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve Gemini API key: %w", err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	s.geminiClient = client
	return client, nil
}

// retryConfig builds the retry settings, honoring the configured budget.
func (s *Service) retryConfig() *RetryConfig {
	cfg := NewDefaultRetryConfig()
	if s.config.MaxRetries > 0 {
		cfg.MaxRetries = s.config.MaxRetries
	}
	return cfg
}

// completeWithClaude generates a completion via the Anthropic API. Claude has
// no native response schema, so structured output rides the system prompt and
// is validated here, with invalid JSON treated as a retryable failure.
func (s *Service) completeWithClaude(ctx context.Context, req *interfaces.CompletionRequest, model string) (*interfaces.CompletionResponse, error) {
	client, err := s.getClaudeClient()
	if err != nil {
		return nil, err
	}

	if model == "" {
		model = s.config.Claude.Model
	}

	claudeMessages, systemText, err := convertMessagesToClaude(req.Messages)
	if err != nil {
		return nil, fmt.Errorf("failed to convert messages: %w", err)
	}

	if req.SystemInstruction != "" {
		systemText = req.SystemInstruction
	}
	if req.OutputSchema != nil {
		instruction := schemaInstruction(req.OutputSchema)
		if systemText != "" {
			systemText = systemText + "\n\n" + instruction
		} else {
			systemText = instruction
		}
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = s.config.Claude.MaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
		Messages:  claudeMessages,
	}

	temp := req.Temperature
	if temp <= 0 {
		temp = s.config.Claude.Temperature
	}
	if temp > 0 {
		params.Temperature = anthropic.Float(float64(temp))
	}

	if systemText != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: systemText},
		}
	}

	retryCfg := s.retryConfig()

	var text string
	var usage interfaces.Usage
	var lastErr error

	for attempt := 0; attempt <= retryCfg.MaxRetries; attempt++ {
		resp, apiErr := client.Messages.New(ctx, params)
		if apiErr == nil {
			// Usage accumulates across attempts: a retried call still
			// consumed tokens and must be accounted for
			usage.InputTokens += int(resp.Usage.InputTokens)
			usage.OutputTokens += int(resp.Usage.OutputTokens)

			var sb strings.Builder
			for _, block := range resp.Content {
				if block.Type == "text" {
					sb.WriteString(block.Text)
				}
			}
			candidate := sb.String()

			switch {
			case candidate == "":
				lastErr = fmt.Errorf("empty response from Claude API")
			case req.OutputSchema != nil:
				cleaned := cleanMarkdownFences(candidate)
				if !json.Valid([]byte(cleaned)) {
					lastErr = fmt.Errorf("Claude response is not valid JSON")
				} else {
					text = cleaned
					lastErr = nil
				}
			default:
				text = candidate
				lastErr = nil
			}
			if lastErr == nil {
				break
			}
		} else {
			lastErr = apiErr
		}

		if attempt == retryCfg.MaxRetries {
			break
		}

		backoff := time.Duration(attempt+1) * 2 * time.Second
		if IsRateLimitError(lastErr) {
			backoff = retryCfg.CalculateBackoff(attempt, ExtractRetryDelay(lastErr))
		}

		s.logger.Warn().
			Int("attempt", attempt+1).
			Dur("backoff", backoff).
			Err(lastErr).
			Msg("Retrying Claude API call")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}

	if lastErr != nil {
		return nil, fmt.Errorf("Claude API call failed after %d retries: %w", retryCfg.MaxRetries, lastErr)
	}

	usage.Model = model

	return &interfaces.CompletionResponse{
		Text:     text,
		Model:    model,
		Provider: string(common.LLMProviderClaude),
		Usage:    usage,
	}, nil
}

// completeWithGemini generates a completion via the Gemini API, using the
// native response schema for structured output.
func (s *Service) completeWithGemini(ctx context.Context, req *interfaces.CompletionRequest, model string) (*interfaces.CompletionResponse, error) {
	client, err := s.getGeminiClient(ctx)
	if err != nil {
		return nil, err
	}

	if model == "" {
		model = s.config.Gemini.Model
	}

	geminiContents, systemText, err := convertMessagesToGemini(req.Messages)
	if err != nil {
		return nil, fmt.Errorf("failed to convert messages: %w", err)
	}

	if req.SystemInstruction != "" {
		systemText = req.SystemInstruction
	}

	temp := req.Temperature
	if temp <= 0 {
		temp = s.config.Gemini.Temperature
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(temp),
	}

	if systemText != "" {
		config.SystemInstruction = genai.NewContentFromText(systemText, genai.RoleUser)
	}

	if maxTokens := req.MaxTokens; maxTokens > 0 {
		config.MaxOutputTokens = int32(maxTokens)
	} else if s.config.Gemini.MaxTokens > 0 {
		config.MaxOutputTokens = int32(s.config.Gemini.MaxTokens)
	}

	// With a schema attached Gemini enforces JSON output directly
	if len(req.OutputSchema) > 0 {
		genaiSchema, err := convertToGenaiSchema(req.OutputSchema)
		if err != nil {
			s.logger.Error().Err(err).Msg("Failed to convert output schema")
			// Continue without schema rather than failing
		} else if genaiSchema != nil {
			config.ResponseMIMEType = "application/json"
			config.ResponseSchema = genaiSchema
		}
	}

	retryCfg := s.retryConfig()

	var text string
	var usage interfaces.Usage
	var lastErr error

	for attempt := 0; attempt <= retryCfg.MaxRetries; attempt++ {
		resp, apiErr := client.Models.GenerateContent(ctx, model, geminiContents, config)
		if apiErr == nil {
			if resp.UsageMetadata != nil {
				usage.InputTokens += int(resp.UsageMetadata.PromptTokenCount)
				usage.OutputTokens += int(resp.UsageMetadata.CandidatesTokenCount)
			}

			candidate := ""
			if len(resp.Candidates) > 0 {
				candidate = resp.Text()
			}

			switch {
			case candidate == "":
				lastErr = fmt.Errorf("empty response from Gemini API")
			case req.OutputSchema != nil:
				cleaned := cleanMarkdownFences(candidate)
				if !json.Valid([]byte(cleaned)) {
					lastErr = fmt.Errorf("Gemini response is not valid JSON")
				} else {
					text = cleaned
					lastErr = nil
				}
			default:
				text = candidate
				lastErr = nil
			}
			if lastErr == nil {
				break
			}
		} else {
			lastErr = apiErr
		}

		if attempt == retryCfg.MaxRetries {
			break
		}

		var backoff time.Duration
		if IsRateLimitError(lastErr) {
			backoff = retryCfg.CalculateBackoff(attempt, ExtractRetryDelay(lastErr))
		} else {
			backoff = time.Duration(attempt+1) * 2 * time.Second
		}

		s.logger.Warn().
			Int("attempt", attempt+1).
			Dur("backoff", backoff).
			Err(lastErr).
			Msg("Retrying Gemini API call")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}

	if lastErr != nil {
		return nil, fmt.Errorf("Gemini API call failed after %d retries: %w", retryCfg.MaxRetries, lastErr)
	}

	usage.Model = model

	return &interfaces.CompletionResponse{
		Text:     text,
		Model:    model,
		Provider: string(common.LLMProviderGemini),
		Usage:    usage,
	}, nil
}

// Close releases provider clients.
func (s *Service) Close() error {
	s.geminiClient = nil
	s.claudeClient = anthropic.Client{}
	s.claudeReady = false
	return nil
}
