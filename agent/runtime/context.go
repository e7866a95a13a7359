package runtime

import (
	"github.com/google/uuid"

	contractx "github.com/cartup/cartup-agent/agent/contract"
)

// MaxCarriedTurns bounds how much of an outgoing agent's context is carried
// across a transfer. Bounds context size and cost.
const MaxCarriedTurns = 20

// ChatContext is the ordered transcript owned by one agent instance. It is
// created once at session start and only appended to or spliced from; it is
// never reset.
type ChatContext struct {
	turns []contractx.Turn
}

func NewChatContext() *ChatContext {
	return &ChatContext{}
}

func (c *ChatContext) Append(turns ...contractx.Turn) {
	c.turns = append(c.turns, turns...)
}

// Turns returns a copy; callers never see later mutations.
func (c *ChatContext) Turns() []contractx.Turn {
	out := make([]contractx.Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

func (c *ChatContext) Len() int {
	return len(c.turns)
}

// Replace swaps the whole transcript in one assignment, the single atomic
// update the activation protocol requires.
func (c *ChatContext) Replace(turns []contractx.Turn) {
	c.turns = turns
}

func NewSystemTurn(content string) contractx.Turn {
	return contractx.Turn{ID: uuid.NewString(), Role: contractx.RoleSystem, Content: content}
}

func NewUserTurn(content string) contractx.Turn {
	return contractx.Turn{ID: uuid.NewString(), Role: contractx.RoleUser, Content: content}
}

func NewAgentTurn(content string) contractx.Turn {
	return contractx.Turn{ID: uuid.NewString(), Role: contractx.RoleAgent, Content: content}
}

func NewToolCallTurn(req contractx.ToolRequest) contractx.Turn {
	return contractx.Turn{
		ID:         uuid.NewString(),
		Role:       contractx.RoleToolCall,
		Tool:       req.Tool,
		ToolCallID: req.ID,
		Args:       req.Args,
	}
}

func NewToolResultTurn(callID, tool, content string) contractx.Turn {
	return contractx.Turn{
		ID:         uuid.NewString(),
		Role:       contractx.RoleToolResult,
		Tool:       tool,
		ToolCallID: callID,
		Content:    content,
	}
}

// Splice merges the tail of an outgoing agent's context into an incoming
// agent's context. System turns never carry over; tool-call and tool-result
// turns do. The tail is truncated to the most recent maxTail turns, then any
// turn whose ID already exists in the incoming context is dropped (the
// incoming copy wins), preserving order of the rest. The carried tail is
// appended after the incoming turns.
//
// Pure function: neither input slice is mutated.
func Splice(outgoing, incoming []contractx.Turn, maxTail int) []contractx.Turn {
	carried := make([]contractx.Turn, 0, len(outgoing))
	for _, turn := range outgoing {
		if turn.Role == contractx.RoleSystem {
			continue
		}
		carried = append(carried, turn)
	}
	if maxTail >= 0 && len(carried) > maxTail {
		carried = carried[len(carried)-maxTail:]
	}

	seen := make(map[string]bool, len(incoming))
	for _, turn := range incoming {
		seen[turn.ID] = true
	}

	merged := make([]contractx.Turn, 0, len(incoming)+len(carried))
	merged = append(merged, incoming...)
	for _, turn := range carried {
		if seen[turn.ID] {
			continue
		}
		merged = append(merged, turn)
	}
	return merged
}
