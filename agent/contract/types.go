package contract

// AgentName identifies a registered agent variant. The set is closed at
// session start; no dynamic registration afterwards.
type AgentName string

const (
	AgentRouter    AgentName = "router"
	AgentOrder     AgentName = "order"
	AgentTicket    AgentName = "ticket"
	AgentReturns   AgentName = "returns"
	AgentRecommend AgentName = "recommend"
)

// Role classifies a turn in a chat context.
type Role string

const (
	RoleSystem     Role = "system"
	RoleUser       Role = "user"
	RoleAgent      Role = "assistant"
	RoleToolCall   Role = "tool_call"
	RoleToolResult Role = "tool_result"
)

// Turn is one entry in an agent's chat context. IDs are unique within a
// single context; the splice operation relies on that when merging contexts
// across a transfer.
type Turn struct {
	ID      string `json:"id"`
	Role    Role   `json:"role"`
	Content string `json:"content"`

	// Tool metadata, set only for tool_call / tool_result turns.
	Tool       string         `json:"tool,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
	Args       map[string]any `json:"args,omitempty"`
}

// TransferDirective is the signal a tool handler returns to request an agent
// switch. It is consumed exactly once by the session runtime.
type TransferDirective struct {
	Target  AgentName `json:"target"`
	Message string    `json:"message"`
}

// ToolRequest is a tool invocation the model asked for.
type ToolRequest struct {
	ID   string         `json:"id"`
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

// ToolOutcome is the result of executing one tool handler. Exactly one of
// Result, Failure, or Transfer is meaningful. Failure is a user-recoverable
// condition forwarded to the model as text; it never crosses the runtime
// boundary as an error.
type ToolOutcome struct {
	Result   any                `json:"result,omitempty"`
	Failure  string             `json:"failure,omitempty"`
	Transfer *TransferDirective `json:"transfer,omitempty"`
}

// Failed reports whether the outcome carries a recoverable failure.
func (o ToolOutcome) Failed() bool {
	return o.Failure != ""
}

// ToolSpec declares a tool to the model. Parameters is a JSON-schema object
// for the tool's arguments; the same schema validates arguments before
// dispatch.
type ToolSpec struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// CompletionRequest is one call across the pipeline boundary: the active
// agent's full context plus its declared tools. StyleHint, when set, frames
// the reply (greetings use it) and is not part of the persistent context.
type CompletionRequest struct {
	Turns     []Turn
	Tools     []ToolSpec
	StyleHint string
}

// Completion is the model's decision for one step: either plain text or a
// batch of tool calls.
type Completion struct {
	Text      string
	ToolCalls []ToolRequest
}
