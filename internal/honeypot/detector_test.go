package honeypot

import (
	"context"
	"strings"
	"testing"

	"github.com/decoyline/honeypot-agent/pkg/logging"
)

func TestDetector_CleanVerdict(t *testing.T) {
	client := staticLLM(`{"is_scam": false, "confidence": 0.9, "reason": "friendly chat"}`)
	detector := NewDetector(client, "test-model", logging.Default())

	if detector.Detect(context.Background(), "hello how are you", nil) {
		t.Fatal("expected clean verdict")
	}
	if client.calls() != 1 {
		t.Fatalf("expected 1 backend call, got %d", client.calls())
	}
}

func TestDetector_ScamVerdict(t *testing.T) {
	client := staticLLM(`{"is_scam": true, "confidence": 0.97, "reason": "urgency and payment demand"}`)
	detector := NewDetector(client, "test-model", logging.Default())

	if !detector.Detect(context.Background(), "your account is blocked pay now", nil) {
		t.Fatal("expected scam verdict")
	}
}

func TestDetector_FencedVerdict(t *testing.T) {
	client := staticLLM("```json\n{\"is_scam\": true, \"confidence\": 0.8, \"reason\": \"phishing link\"}\n```")
	detector := NewDetector(client, "test-model", logging.Default())

	if !detector.Detect(context.Background(), "click http://bit.ly/x", nil) {
		t.Fatal("expected scam verdict from fenced response")
	}
}

func TestDetector_FailsClosedOnBackendError(t *testing.T) {
	detector := NewDetector(failingLLM(), "test-model", logging.Default())

	if !detector.Detect(context.Background(), "hello", nil) {
		t.Fatal("backend failure must resolve to scam")
	}
}

func TestDetector_DisabledProviderFailsClosed(t *testing.T) {
	detector := NewDetector(DisabledLLMClient{}, "", logging.Default())

	if !detector.Detect(context.Background(), "hello", nil) {
		t.Fatal("fallback-only mode must classify fail-closed")
	}
}

func TestDetector_FailsClosedOnUnparseableResponse(t *testing.T) {
	client := staticLLM("I think this message looks suspicious.")
	detector := NewDetector(client, "test-model", logging.Default())

	if !detector.Detect(context.Background(), "hello", nil) {
		t.Fatal("unparseable response must resolve to scam")
	}
}

func TestDetector_PromptCarriesContextAndLatest(t *testing.T) {
	client := staticLLM(`{"is_scam": false, "confidence": 0.5, "reason": "ok"}`)
	detector := NewDetector(client, "test-model", logging.Default())

	history := []Message{
		{Sender: SenderScammer, Text: "hello madam", Timestamp: 1000},
		{Sender: SenderAgent, Text: "who is this beta", Timestamp: 2000},
	}
	detector.Detect(context.Background(), "your kyc is pending", history)

	req := client.lastRequest()
	if len(req.Messages) != 1 {
		t.Fatalf("expected a single prompt message, got %d", len(req.Messages))
	}
	prompt := req.Messages[0].Content
	for _, fragment := range []string{"scammer: hello madam", "user: who is this beta", `"your kyc is pending"`} {
		if !strings.Contains(prompt, fragment) {
			t.Fatalf("prompt missing %q:\n%s", fragment, prompt)
		}
	}
	if len(req.System) != 1 || req.System[0] != detectorSystemPrompt {
		t.Fatalf("unexpected system prompt: %#v", req.System)
	}
}
