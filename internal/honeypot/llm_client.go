package honeypot

import (
	"context"
	"errors"
)

const (
	ChatRoleSystem    = "system"
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ChatMessage is the provider-neutral message representation sent to LLM
// backends; it can carry system prompts.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type TokenUsage struct {
	InputTokens  int32
	OutputTokens int32
	TotalTokens  int32
}

type LLMRequest struct {
	Model       string
	System      []string
	Messages    []ChatMessage
	MaxTokens   int32
	Temperature float32
	TopP        float32
}

type LLMResponse struct {
	Text       string
	Usage      TokenUsage
	StopReason string
}

// LLMClient is the single backend abstraction shared by the classifier, the
// persona agent, and the extractor. Implementations are swappable by
// configuration (Gemini, Bedrock, or disabled).
type LLMClient interface {
	Complete(ctx context.Context, req LLMRequest) (LLMResponse, error)
}

var errLLMDisabled = errors.New("honeypot: llm backend disabled")

// DisabledLLMClient is the no-backend client selected by LLM_PROVIDER=none.
// Every completion fails, so detection fails closed, persona replies come
// from the stall pool, and extraction runs the pattern fallback.
type DisabledLLMClient struct{}

func (DisabledLLMClient) Complete(context.Context, LLMRequest) (LLMResponse, error) {
	return LLMResponse{}, errLLMDisabled
}
