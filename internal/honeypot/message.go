package honeypot

import (
	"fmt"
	"strings"
)

// SenderType identifies who authored a message. Wire values follow the
// evaluation platform contract: the external party is "scammer" and the
// honeypot agent's own turns are labeled "user".
type SenderType string

const (
	SenderScammer SenderType = "scammer"
	SenderAgent   SenderType = "user"
)

// Message is a single conversation turn. Immutable once created. Ordering is
// by arrival, not by the timestamp field: agent replies are stamped one second
// after the trigger message so replay logs keep strict ordering.
type Message struct {
	Sender    SenderType `json:"sender"`
	Text      string     `json:"text"`
	Timestamp int64      `json:"timestamp"`
}

// AgentReply builds the agent's turn answering the trigger message.
func AgentReply(trigger Message, text string) Message {
	return Message{
		Sender:    SenderAgent,
		Text:      text,
		Timestamp: trigger.Timestamp + 1000,
	}
}

// renderTranscript flattens a conversation into "sender: text" lines for
// inclusion in LLM prompts.
func renderTranscript(history []Message) string {
	var b strings.Builder
	for i, msg := range history {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s: %s", msg.Sender, msg.Text)
	}
	return b.String()
}

// lastAgentUtterance returns the most recent agent-authored text in history,
// or "" if the agent has not spoken yet.
func lastAgentUtterance(history []Message) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Sender == SenderAgent {
			return history[i].Text
		}
	}
	return ""
}
