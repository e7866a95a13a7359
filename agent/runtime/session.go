// Package runtime drives one live conversation: it owns the agent registry,
// the per-agent chat contexts, and the shared session state, and executes the
// activation and transfer protocol between them.
package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	agentsx "github.com/cartup/cartup-agent/agent/agents"
	contractx "github.com/cartup/cartup-agent/agent/contract"
	statex "github.com/cartup/cartup-agent/agent/state"
	toolx "github.com/cartup/cartup-agent/agent/tool"
)

// DefaultMaxToolSteps bounds the model-call loop within a single user turn.
// A model that keeps requesting tools past this gets an apology reply
// instead of an unbounded loop.
const DefaultMaxToolSteps = 5

const toolBudgetReply = "I'm sorry, I wasn't able to finish that request. Could you rephrase or try again?"

// Agent is one registered variant with its own persistent chat context.
// Instances are created at session start and live for the whole session.
type Agent struct {
	def agentsx.Definition
	ctx *ChatContext
}

func (a *Agent) Name() contractx.AgentName { return a.def.Name }

// Config tunes a session. Zero values fall back to defaults.
type Config struct {
	SessionID       string
	MaxToolSteps    int
	MaxCarriedTurns int
}

// Session serializes one conversation: exactly one agent is active at a
// time, and user turns are handled one at a time under the session mutex.
type Session struct {
	mu sync.Mutex

	id       string
	model    contractx.ChatModel
	executor *toolx.Executor
	userdata *statex.UserData

	registry map[contractx.AgentName]*Agent
	active   *Agent
	started  bool

	maxToolSteps int
	maxCarried   int
}

// NewSession wires the variant set into a session. The registry is closed
// here: a missing router, duplicate names, or a declared transfer target
// that is unregistered or self-referential is a configuration error, never
// deferred to conversation time.
func NewSession(model contractx.ChatModel, executor *toolx.Executor, defs []agentsx.Definition, ud *statex.UserData, cfg Config) (*Session, error) {
	if model == nil {
		return nil, fmt.Errorf("%w: chat model is required", contractx.ErrValidation)
	}
	if executor == nil {
		return nil, fmt.Errorf("%w: tool executor is required", contractx.ErrValidation)
	}
	if ud == nil {
		return nil, fmt.Errorf("%w: session state is required", contractx.ErrValidation)
	}
	if len(defs) == 0 {
		return nil, fmt.Errorf("%w: at least one agent definition is required", contractx.ErrValidation)
	}

	registry := make(map[contractx.AgentName]*Agent, len(defs))
	for _, def := range defs {
		if _, dup := registry[def.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate agent %q", contractx.ErrValidation, def.Name)
		}
		registry[def.Name] = &Agent{def: def, ctx: NewChatContext()}
	}
	if _, ok := registry[contractx.AgentRouter]; !ok {
		return nil, fmt.Errorf("%w: router agent is required", contractx.ErrValidation)
	}

	for _, def := range defs {
		for _, target := range def.TransferTargets() {
			if target == def.Name {
				return nil, fmt.Errorf("%w: agent %q declares a transfer to itself", contractx.ErrValidation, def.Name)
			}
			if _, ok := registry[target]; !ok {
				return nil, fmt.Errorf("%w: agent %q declares transfer to unregistered agent %q", contractx.ErrUnknownAgent, def.Name, target)
			}
		}
	}

	s := &Session{
		id:           cfg.SessionID,
		model:        model,
		executor:     executor,
		userdata:     ud,
		registry:     registry,
		maxToolSteps: cfg.MaxToolSteps,
		maxCarried:   cfg.MaxCarriedTurns,
	}
	if s.maxToolSteps <= 0 {
		s.maxToolSteps = DefaultMaxToolSteps
	}
	if s.maxCarried <= 0 {
		s.maxCarried = MaxCarriedTurns
	}
	return s, nil
}

// ActiveAgent returns the currently active variant name.
func (s *Session) ActiveAgent() contractx.AgentName {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return ""
	}
	return s.active.def.Name
}

// UserData returns the shared session state.
func (s *Session) UserData() *statex.UserData {
	return s.userdata
}

// Start activates the router and returns its opening greeting.
func (s *Session) Start(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return "", fmt.Errorf("%w: session already started", contractx.ErrValidation)
	}
	s.started = true
	s.active = s.registry[contractx.AgentRouter]
	s.userdata.PrevAgent = ""

	greeting, err := s.activate(ctx, openingGreetingHint(s.userdata.EffectiveLanguage()))
	if err != nil {
		return "", err
	}
	log.Info().Str("session", s.id).Str("agent", string(s.active.def.Name)).Msg("session started")
	return greeting, nil
}

// HandleUserText processes one user message to completion: model calls and
// tool executions, including any transfer, until an agent produces text.
func (s *Session) HandleUserText(ctx context.Context, text string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return "", fmt.Errorf("%w: session not started", contractx.ErrValidation)
	}

	s.active.ctx.Append(NewUserTurn(text))

	for step := 0; step < s.maxToolSteps; step++ {
		completion, err := s.complete(ctx, "")
		if err != nil {
			return "", err
		}

		if len(completion.ToolCalls) == 0 {
			s.active.ctx.Append(NewAgentTurn(completion.Text))
			return completion.Text, nil
		}

		for _, call := range completion.ToolCalls {
			s.active.ctx.Append(NewToolCallTurn(call))

			outcome := s.executor.Execute(ctx, s.active.def.Name, call, s.userdata)
			if outcome.Transfer != nil {
				s.active.ctx.Append(NewToolResultTurn(call.ID, call.Tool, outcome.Transfer.Message))
				return s.performTransfer(ctx, *outcome.Transfer)
			}
			s.active.ctx.Append(NewToolResultTurn(call.ID, call.Tool, renderOutcome(outcome)))
		}
	}

	log.Warn().Str("session", s.id).Str("agent", string(s.active.def.Name)).Int("steps", s.maxToolSteps).Msg("tool step budget exhausted")
	s.active.ctx.Append(NewAgentTurn(toolBudgetReply))
	return toolBudgetReply, nil
}

// performTransfer hands the conversation to the directive's target and
// activates it. A target absent from the registry is fatal: the directive is
// not retried and no fallback agent is substituted.
func (s *Session) performTransfer(ctx context.Context, directive contractx.TransferDirective) (string, error) {
	target, ok := s.registry[directive.Target]
	if !ok {
		return "", fmt.Errorf("%w: transfer to %q", contractx.ErrUnknownAgent, directive.Target)
	}

	from := s.active
	s.userdata.PrevAgent = from.def.Name
	s.active = target

	log.Info().
		Str("session", s.id).
		Str("from", string(from.def.Name)).
		Str("to", string(target.def.Name)).
		Msg("agent transfer")

	return s.activate(ctx, transferGreetingHint(target.def))
}

// activate runs the activation protocol for the current active agent: splice
// the previous agent's context tail in, inject the fresh state summary as a
// system turn, then ask the model for a greeting framed by styleHint. The
// agent's context is replaced in a single step so a failed model call leaves
// it untouched except for the already-merged transcript.
func (s *Session) activate(ctx context.Context, styleHint string) (string, error) {
	agent := s.active

	merged := agent.ctx.Turns()
	if prev := s.userdata.PrevAgent; prev != "" {
		if source, ok := s.registry[prev]; ok {
			merged = Splice(source.ctx.Turns(), merged, s.maxCarried)
		}
	}

	summary, err := s.userdata.Summarize()
	if err != nil {
		return "", err
	}
	merged = append(merged, NewSystemTurn(activationDirectives(agent.def, summary, s.userdata.EffectiveLanguage())))
	agent.ctx.Replace(merged)

	completion, err := s.complete(ctx, styleHint)
	if err != nil {
		return "", err
	}
	agent.ctx.Append(NewAgentTurn(completion.Text))
	return completion.Text, nil
}

func (s *Session) complete(ctx context.Context, styleHint string) (contractx.Completion, error) {
	agent := s.active
	req := contractx.CompletionRequest{
		Turns:     agent.ctx.Turns(),
		Tools:     s.executor.SpecsFor(agent.def.Name),
		StyleHint: styleHint,
	}
	completion, err := s.model.Complete(ctx, agent.def.Name, req)
	if err != nil {
		return contractx.Completion{}, fmt.Errorf("%w: agent=%s: %v", contractx.ErrModelInvoke, agent.def.Name, err)
	}
	return completion, nil
}

// renderOutcome flattens a tool outcome into the text fed back to the model.
func renderOutcome(outcome contractx.ToolOutcome) string {
	if outcome.Failed() {
		return outcome.Failure
	}
	if outcome.Result == nil {
		return "ok"
	}
	raw, err := json.Marshal(outcome.Result)
	if err != nil {
		return fmt.Sprintf("%v", outcome.Result)
	}
	return string(raw)
}
