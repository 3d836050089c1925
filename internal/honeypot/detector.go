package honeypot

import (
	"context"
	"fmt"
	"time"

	"github.com/decoyline/honeypot-agent/pkg/logging"
)

const detectorSystemPrompt = "You are a scam detection API. You only output valid JSON."

const detectorPromptTemplate = `You are an expert scam detection system. Analyze the following message and conversation context.
Determine if the latest message exhibits scam intent (phishing, fraud, social engineering, urgency, financial request, etc.).

Context:
%s

Latest Message to Analyze:
%q

Respond ONLY with a valid JSON object:
{
    "is_scam": boolean,
    "confidence": float (0.0 to 1.0),
    "reason": "short explanation"
}`

// scamVerdict is the structured object the backend is instructed to return.
// Only IsScam is consumed; confidence and reason are diagnostic.
type scamVerdict struct {
	IsScam     bool    `json:"is_scam"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// Detector classifies whether the latest inbound message, in context,
// exhibits fraudulent intent.
type Detector struct {
	client LLMClient
	model  string
	logger *logging.Logger
}

func NewDetector(client LLMClient, model string, logger *logging.Logger) *Detector {
	if client == nil {
		panic("honeypot: llm client cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Detector{
		client: client,
		model:  model,
		logger: logger,
	}
}

// Detect returns whether the latest message has scam intent. history excludes
// the latest message and is passed in arrival order.
//
// Any backend or parse failure resolves to true: for a honeypot the cost of
// over-flagging is lower than the cost of missing a real scam, so the
// classifier fails closed.
func (d *Detector) Detect(ctx context.Context, latest string, history []Message) bool {
	prompt := fmt.Sprintf(detectorPromptTemplate, renderTranscript(history), latest)

	start := time.Now()
	resp, err := d.client.Complete(ctx, LLMRequest{
		Model:       d.model,
		System:      []string{detectorSystemPrompt},
		Messages:    []ChatMessage{{Role: ChatRoleUser, Content: prompt}},
		MaxTokens:   256,
		Temperature: 0.1,
	})
	if err != nil {
		llmLatency.WithLabelValues("detector", "error").Observe(time.Since(start).Seconds())
		d.logger.Warn("scam detection backend failed, assuming scam", "error", err)
		detectionTotal.WithLabelValues("fail_closed", "scam").Inc()
		return true
	}
	llmLatency.WithLabelValues("detector", "ok").Observe(time.Since(start).Seconds())

	var verdict scamVerdict
	if err := decodeLLMJSON(resp.Text, &verdict); err != nil {
		d.logger.Warn("scam detection response unparseable, assuming scam", "error", err)
		detectionTotal.WithLabelValues("fail_closed", "scam").Inc()
		return true
	}

	label := "clean"
	if verdict.IsScam {
		label = "scam"
	}
	detectionTotal.WithLabelValues("llm", label).Inc()
	d.logger.Debug("scam detection verdict",
		"is_scam", verdict.IsScam,
		"confidence", verdict.Confidence,
		"reason", verdict.Reason,
	)
	return verdict.IsScam
}
