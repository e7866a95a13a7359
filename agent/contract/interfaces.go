package contract

import "context"

// ChatModel is the pipeline boundary: the runtime sends the active agent's
// context in and receives either a reply or tool-call requests out. The
// model's decisions are externally supplied input the runtime executes; their
// quality is out of scope here.
type ChatModel interface {
	Complete(ctx context.Context, agent AgentName, req CompletionRequest) (Completion, error)
}
