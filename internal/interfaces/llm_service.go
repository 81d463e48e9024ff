package interfaces

import (
	"context"
)

// Message represents a single message in a chat conversation
type Message struct {
	// Role identifies the message sender: "user", "assistant", or "system"
	Role string

	// Content contains the text content of the message
	Content string
}

// Usage reports the token consumption of one completion call. Callers feed
// it to the cost accountant, which resolves dollar cost from the model id.
type Usage struct {
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
	Model        string `json:"model"`
}

// TotalTokens returns input plus output tokens.
func (u Usage) TotalTokens() int {
	return u.InputTokens + u.OutputTokens
}

// CompletionRequest describes one LLM completion call.
type CompletionRequest struct {
	// Messages is the conversation history in chronological order
	Messages []Message

	// Model overrides the provider default when non-empty
	Model string

	// Temperature controls response randomness (0.0 to 1.0)
	Temperature float32

	// MaxTokens limits the response length
	MaxTokens int

	// SystemInstruction is prepended as the system prompt when non-empty
	SystemInstruction string

	// OutputSchema requests structured JSON output matching the given
	// JSON-schema map. Providers without native schema support embed the
	// schema in the prompt and validate the response.
	OutputSchema map[string]interface{}
}

// CompletionResponse is the result of one LLM completion call.
type CompletionResponse struct {
	// Text is the raw response. When OutputSchema was set it is valid JSON
	// with markdown fences already stripped.
	Text string

	// Model is the concrete model id that served the request
	Model string

	// Provider identifies the backing provider ("claude" or "gemini")
	Provider string

	// Usage reports token consumption for cost accounting
	Usage Usage
}

// CompletionService defines the interface for LLM completion operations.
// Implementations own their retry logic: transient failures and structured
// output parse failures are retried internally before an error surfaces.
type CompletionService interface {
	// Complete generates a completion for the given request.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout control
	//   - req: Completion request (messages, model, schema, limits)
	//
	// Returns:
	//   - *CompletionResponse: Response text plus usage metadata
	//   - error: Error after internal retries are exhausted
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)
}
