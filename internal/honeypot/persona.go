package honeypot

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/decoyline/honeypot-agent/pkg/logging"
)

// personaSystemPrompt is the fixed character the agent plays. It is static
// configuration, never user-supplied.
const personaSystemPrompt = `You are a persona in a scambaiting honeypot.
Your name is "Mrs. Sharma" (or "Aunty").
You are an elderly Indian woman, not tech-savvy at all.

STYLE GUIDELINES:
- Type short messages. usage of few words only.
- Do not use perfect English. Use "Indian English" or simple grammar.
- minimal punctuation. avoid commas brackets exclamations.
- Act confused about technology (UPI, OTP, links).
- Use Indian terms like "beta" (son/child), "baba", "Rs.", "bank wala", etc.
- Do NOT reveal you are an AI.
- Do NOT use emojis, special characters, backslashes(newline characters) in your response.
- The conversation should follow consistent event context.

GOAL:
- extract phone no, upi-id, bank account no, phishing links, acting innocent and not getting caught.
- Ask simple questions like "what is upi", "where to click", "not working beta".
- Pretend to fail at following instructions.
- NEVER give real info.`

// personaPriming is injected as a leading assistant turn before the real
// history to anchor character adoption.
const personaPriming = "I understand. I am Mrs. Sharma, an elderly Indian woman. I will act confused and waste the scammer's time."

// fallbackReplies is the fixed pool of persona-consistent stall utterances
// used when the backend fails.
var fallbackReplies = []string{
	"beta my internet is not working not going what you say? my grandson will fix wait",
	"beta wait i am asking my grandson to help i dont understand",
	"internet is very slow beta cannot hear you",
	"my glasses are lost i cannot see screen properly what to do",
	"don't be angry beta i am trying slowly",
	"i am clicking but nothing happening beta",
	"beta what is this code i dont know these things",
	"my hands are shaking beta cannot type fast",
	"is this computer virus beta? i am scared",
	"wait beta i am calling my son to check phone",
}

// PersonaAgent produces the next deception-agent utterance in character.
type PersonaAgent struct {
	client LLMClient
	model  string
	logger *logging.Logger

	// pick selects an index in [0, n); replaced in tests for determinism.
	pick func(n int) int
}

func NewPersonaAgent(client LLMClient, model string, logger *logging.Logger) *PersonaAgent {
	if client == nil {
		panic("honeypot: llm client cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &PersonaAgent{
		client: client,
		model:  model,
		logger: logger,
		// Fallback draws happen on concurrent request goroutines; the
		// top-level rand is internally locked.
		pick: rand.Intn,
	}
}

// GenerateReply returns the agent's next utterance for the conversation.
// history includes the current message's context in arrival order; the
// counterparty's turns map to the user role and the agent's own prior turns
// to the assistant role. Never returns an error: backend failures fall back
// to the canned stall pool.
func (a *PersonaAgent) GenerateReply(ctx context.Context, history []Message, currentMessage string) string {
	messages := make([]ChatMessage, 0, len(history)+2)
	messages = append(messages, ChatMessage{Role: ChatRoleAssistant, Content: personaPriming})

	for _, msg := range history {
		role := ChatRoleUser
		if msg.Sender == SenderAgent {
			role = ChatRoleAssistant
		}
		messages = append(messages, ChatMessage{Role: role, Content: msg.Text})
	}
	messages = append(messages, ChatMessage{Role: ChatRoleUser, Content: currentMessage})

	start := time.Now()
	resp, err := a.client.Complete(ctx, LLMRequest{
		Model:       a.model,
		System:      []string{personaSystemPrompt},
		Messages:    messages,
		MaxTokens:   150,
		Temperature: 0.7,
	})
	if err != nil {
		llmLatency.WithLabelValues("persona", "error").Observe(time.Since(start).Seconds())
		a.logger.Warn("persona backend failed, using fallback", "error", err)
	} else {
		reply := strings.TrimSpace(resp.Text)
		if reply != "" {
			llmLatency.WithLabelValues("persona", "ok").Observe(time.Since(start).Seconds())
			return reply
		}
		llmLatency.WithLabelValues("persona", "empty").Observe(time.Since(start).Seconds())
		a.logger.Warn("persona backend returned empty reply, using fallback")
	}
	personaFallbackTotal.Inc()

	return a.fallbackReply(history)
}

// fallbackReply draws a stall utterance from the fixed pool. If the draw
// equals the single most recent agent utterance it redraws once from the
// remaining pool members; this is deliberately best-effort, not a full
// no-repeat guarantee across the conversation.
func (a *PersonaAgent) fallbackReply(history []Message) string {
	candidate := fallbackReplies[a.pick(len(fallbackReplies))]

	last := lastAgentUtterance(history)
	if last != "" && last == candidate {
		remaining := make([]string, 0, len(fallbackReplies)-1)
		for _, r := range fallbackReplies {
			if r != candidate {
				remaining = append(remaining, r)
			}
		}
		if len(remaining) > 0 {
			candidate = remaining[a.pick(len(remaining))]
		}
	}
	return candidate
}
