package honeypot

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/decoyline/honeypot-agent/pkg/logging"
)

// IntelligenceBundle is the structured set of fraud indicators mined from a
// conversation. All list fields are deduplicated; each extraction is a full
// re-derivation from the conversation supplied at call time, never a merge
// with a prior bundle.
type IntelligenceBundle struct {
	BankAccounts       []string `json:"bankAccounts"`
	UPIIDs             []string `json:"upiIds"`
	PhishingLinks      []string `json:"phishingLinks"`
	PhoneNumbers       []string `json:"phoneNumbers"`
	SuspiciousKeywords []string `json:"suspiciousKeywords"`
	AgentNotes         string   `json:"agentNotes"`
}

func emptyBundle() IntelligenceBundle {
	return IntelligenceBundle{
		BankAccounts:       []string{},
		UPIIDs:             []string{},
		PhishingLinks:      []string{},
		PhoneNumbers:       []string{},
		SuspiciousKeywords: []string{},
	}
}

const extractorSystemPrompt = "You are an intelligence extraction API. You only output valid JSON."

const extractorPromptTemplate = `Analyze the following conversation between a Scammer and a User.
Extract all intelligence related to the SCAMMER.

Conversation:
%s

Extract the following fields (return empty lists if not found):
- bankAccounts: (Specific Account Numbers (digits), IFSC Codes. Do NOT just list Bank Names unless no number is found)
- upiIds: (UPI handles ending in @...)
- phishingLinks: (Full URLs)
- phoneNumbers: (Contact numbers provided)
- suspiciousKeywords: (Key phrases indicating scam tactics)
- agentNotes: (A brief summary of the scammer's modus operandi)

Respond ONLY with a valid JSON object matching this structure:
{
    "bankAccounts": [],
    "upiIds": [],
    "phishingLinks": [],
    "phoneNumbers": [],
    "suspiciousKeywords": [],
    "agentNotes": "string"
}`

// fallbackNotes replaces agentNotes when the bundle was derived by pattern
// matching instead of the LLM.
const fallbackNotes = "Automated analysis: details extracted via pattern matching with reduced confidence. Suspicious activity indicators collected."

var (
	// Indian mobile numbers: optional +91 with separator, a [6-9]-leading
	// 10-digit run, or the generic split 5+5 digit form.
	phonePattern = regexp.MustCompile(`(?:\+91[\-\s]?)?[6-9]\d{9}|(?:\+91[\-\s]?)?\d{5}[\-\s]?\d{5}`)
	linkPattern  = regexp.MustCompile(`https?://\S+|www\.\S+`)
	upiPattern   = regexp.MustCompile(`[\w.\-]+@[\w.\-]+`)
	// Free-standing 9-18 digit runs. IFSC-style alphanumeric codes are NOT
	// matched here; that is a known limitation of the fallback path.
	accountPattern = regexp.MustCompile(`\b\d{9,18}\b`)
)

// fallbackKeywords is the fixed vocabulary matched case-insensitively as
// substrings of scammer turns.
var fallbackKeywords = []string{
	"blocked", "kyc", "verify", "urgent", "penalty",
	"expire", "click", "auth", "support", "unblock",
}

// Extractor mines a full conversation for structured fraud indicators.
type Extractor struct {
	client LLMClient
	model  string
	logger *logging.Logger
}

func NewExtractor(client LLMClient, model string, logger *logging.Logger) *Extractor {
	if client == nil {
		panic("honeypot: llm client cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Extractor{
		client: client,
		model:  model,
		logger: logger,
	}
}

// Extract derives an intelligence bundle from the full conversation. An empty
// history returns an empty-shaped bundle without any backend call. Backend or
// parse failures fall through to deterministic pattern extraction; callers
// cannot and must not distinguish which path produced the bundle.
func (e *Extractor) Extract(ctx context.Context, history []Message) IntelligenceBundle {
	if len(history) == 0 {
		extractionTotal.WithLabelValues("empty").Inc()
		return emptyBundle()
	}

	prompt := fmt.Sprintf(extractorPromptTemplate, renderTranscript(history))

	start := time.Now()
	resp, err := e.client.Complete(ctx, LLMRequest{
		Model:       e.model,
		System:      []string{extractorSystemPrompt},
		Messages:    []ChatMessage{{Role: ChatRoleUser, Content: prompt}},
		MaxTokens:   1024,
		Temperature: 0.1,
	})
	if err != nil {
		llmLatency.WithLabelValues("extractor", "error").Observe(time.Since(start).Seconds())
		e.logger.Warn("intel extraction backend failed, using pattern fallback", "error", err)
		extractionTotal.WithLabelValues("fallback").Inc()
		return e.fallbackExtract(history)
	}
	llmLatency.WithLabelValues("extractor", "ok").Observe(time.Since(start).Seconds())

	var bundle IntelligenceBundle
	if err := decodeLLMJSON(resp.Text, &bundle); err != nil {
		e.logger.Warn("intel extraction response unparseable, using pattern fallback", "error", err)
		extractionTotal.WithLabelValues("fallback").Inc()
		return e.fallbackExtract(history)
	}

	extractionTotal.WithLabelValues("llm").Inc()
	return normalizeBundle(bundle)
}

// fallbackExtract runs deterministic pattern extraction over
// counterparty-authored turns only. It is exactly reproducible for a given
// conversation.
func (e *Extractor) fallbackExtract(history []Message) IntelligenceBundle {
	bundle := emptyBundle()
	bundle.AgentNotes = fallbackNotes

	for _, msg := range history {
		if msg.Sender != SenderScammer {
			continue
		}

		for _, m := range phonePattern.FindAllString(msg.Text, -1) {
			bundle.PhoneNumbers = append(bundle.PhoneNumbers, normalizePhone(m))
		}
		bundle.PhishingLinks = append(bundle.PhishingLinks, linkPattern.FindAllString(msg.Text, -1)...)
		bundle.UPIIDs = append(bundle.UPIIDs, upiPattern.FindAllString(msg.Text, -1)...)
		bundle.BankAccounts = append(bundle.BankAccounts, accountPattern.FindAllString(msg.Text, -1)...)

		lower := strings.ToLower(msg.Text)
		for _, kw := range fallbackKeywords {
			if strings.Contains(lower, kw) {
				bundle.SuspiciousKeywords = append(bundle.SuspiciousKeywords, kw)
			}
		}
	}

	return normalizeBundle(bundle)
}

// normalizePhone strips separators and a leading +91 country code so matches
// collapse to the bare 10-digit form.
func normalizePhone(raw string) string {
	s := strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return -1
		}
		return r
	}, raw)
	s = strings.TrimPrefix(s, "+91")
	return strings.TrimPrefix(s, "+")
}

// normalizeBundle deduplicates every list field, preserving first-seen order,
// and guarantees non-nil slices so consumers always see the same shape.
func normalizeBundle(b IntelligenceBundle) IntelligenceBundle {
	b.BankAccounts = dedupe(b.BankAccounts)
	b.UPIIDs = dedupe(b.UPIIDs)
	b.PhishingLinks = dedupe(b.PhishingLinks)
	b.PhoneNumbers = dedupe(b.PhoneNumbers)
	b.SuspiciousKeywords = dedupe(b.SuspiciousKeywords)
	return b
}

func dedupe(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
