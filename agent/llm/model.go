// Package llm adapts the OpenAI chat completion API to the runtime's model
// boundary. Turn transcripts go in, text or tool-call decisions come out.
package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/rs/zerolog/log"

	contractx "github.com/cartup/cartup-agent/agent/contract"
)

// Model routes each agent variant's completions through one shared client
// with per-agent model and temperature resolution.
type Model struct {
	client *openai.Client
	cfg    Config
}

var _ contractx.ChatModel = (*Model)(nil)

func NewModel(client *openai.Client, cfg Config) (*Model, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: openai client is required", contractx.ErrValidation)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Model{client: client, cfg: cfg}, nil
}

func (m *Model) Complete(ctx context.Context, agent contractx.AgentName, req contractx.CompletionRequest) (contractx.Completion, error) {
	messages, err := toMessages(req)
	if err != nil {
		return contractx.Completion{}, err
	}

	modelName, temperature := m.cfg.ModelFor(agent)
	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(modelName),
		Messages:    messages,
		MaxTokens:   openai.Int(int64(m.cfg.MaxCompletionToken)),
		Temperature: openai.Float(float64(temperature)),
	}
	if len(req.Tools) > 0 {
		params.Tools = toTools(req.Tools)
	}

	resp, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return contractx.Completion{}, fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
	}
	if len(resp.Choices) == 0 {
		return contractx.Completion{}, fmt.Errorf("%w: empty choice list", contractx.ErrModelInvoke)
	}

	choice := resp.Choices[0]
	out := contractx.Completion{Text: choice.Message.Content}
	for _, tc := range choice.Message.ToolCalls {
		args := map[string]any{}
		if raw := tc.Function.Arguments; raw != "" {
			if err := json.Unmarshal([]byte(raw), &args); err != nil {
				return contractx.Completion{}, fmt.Errorf("%w: parse arguments for %s: %v", contractx.ErrModelInvoke, tc.Function.Name, err)
			}
		}
		out.ToolCalls = append(out.ToolCalls, contractx.ToolRequest{
			ID:   tc.ID,
			Tool: tc.Function.Name,
			Args: args,
		})
	}

	log.Debug().
		Str("agent", string(agent)).
		Str("model", modelName).
		Int("tool_calls", len(out.ToolCalls)).
		Msg("completion")
	return out, nil
}

// toMessages flattens a turn transcript into the wire message list. Style
// hints ride as a trailing system message so they frame the next reply
// without entering the persistent transcript.
func toMessages(req contractx.CompletionRequest) ([]openai.ChatCompletionMessageParamUnion, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Turns)+1)
	for _, turn := range req.Turns {
		switch turn.Role {
		case contractx.RoleSystem:
			messages = append(messages, openai.SystemMessage(turn.Content))
		case contractx.RoleUser:
			messages = append(messages, openai.UserMessage(turn.Content))
		case contractx.RoleAgent:
			messages = append(messages, openai.AssistantMessage(turn.Content))
		case contractx.RoleToolCall:
			raw, err := json.Marshal(turn.Args)
			if err != nil {
				return nil, fmt.Errorf("marshal arguments for %s: %w", turn.Tool, err)
			}
			msg := openai.ChatCompletionMessage{
				Role: "assistant",
				ToolCalls: []openai.ChatCompletionMessageToolCall{{
					ID:   turn.ToolCallID,
					Type: "function",
					Function: openai.ChatCompletionMessageToolCallFunction{
						Name:      turn.Tool,
						Arguments: string(raw),
					},
				}},
			}
			messages = append(messages, msg.ToParam())
		case contractx.RoleToolResult:
			messages = append(messages, openai.ToolMessage(turn.Content, turn.ToolCallID))
		default:
			return nil, fmt.Errorf("%w: unknown turn role %q", contractx.ErrValidation, turn.Role)
		}
	}
	if req.StyleHint != "" {
		messages = append(messages, openai.SystemMessage(req.StyleHint))
	}
	return messages, nil
}

func toTools(specs []contractx.ToolSpec) []openai.ChatCompletionToolParam {
	tools := make([]openai.ChatCompletionToolParam, 0, len(specs))
	for _, spec := range specs {
		tools = append(tools, openai.ChatCompletionToolParam{
			Type: "function",
			Function: openai.FunctionDefinitionParam{
				Name:        spec.Name,
				Description: openai.String(spec.Description),
				Parameters:  openai.FunctionParameters(spec.Parameters),
			},
		})
	}
	return tools
}
