package orchestrator

import (
	"agent-orchestrator/internal/offers"
	"agent-orchestrator/internal/tools"
)

// Message is one conversation turn supplied by the caller.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is one orchestration call.
type Request struct {
	Persona   string    `json:"persona"`
	UserID    string    `json:"user_id"`
	Messages  []Message `json:"messages"`
	ToolsHint []string  `json:"tools_hint,omitempty"`
}

// ToolEvent is the audit record of one capability invocation. Input and
// output carry reduced summaries (counts and flags), never full payloads.
type ToolEvent struct {
	Name   string                 `json:"name"`
	Input  map[string]interface{} `json:"input"`
	Output map[string]interface{} `json:"output"`
}

// Reply is the composed assistant answer with optional synthesized media.
type Reply struct {
	Text  string       `json:"text"`
	Media *tools.Media `json:"media,omitempty"`
}

// Offer is the caller-facing view of an eligible catalog item.
type Offer struct {
	ID   string                 `json:"id"`
	Name string                 `json:"name"`
	Copy string                 `json:"copy"`
	CTA  map[string]interface{} `json:"cta"`
}

// Response is the final pipeline output.
type Response struct {
	Reply      Reply       `json:"reply"`
	Offers     []Offer     `json:"offers"`
	ToolEvents []ToolEvent `json:"tool_events"`
}

func toOffer(item offers.CatalogItem) Offer {
	return Offer{ID: item.ID, Name: item.Name, Copy: item.Copy, CTA: item.CTA}
}

// lastUserText scans the message list from the end for the most recent user
// turn; no user turn means an empty query.
func lastUserText(messages []Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			return messages[i].Content
		}
	}
	return ""
}
