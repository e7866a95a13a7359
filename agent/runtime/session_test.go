package runtime

import (
	"context"
	"errors"
	"strings"
	"testing"

	agentsx "github.com/cartup/cartup-agent/agent/agents"
	contractx "github.com/cartup/cartup-agent/agent/contract"
	statex "github.com/cartup/cartup-agent/agent/state"
	storex "github.com/cartup/cartup-agent/agent/store"
	toolx "github.com/cartup/cartup-agent/agent/tool"
)

type modelStep func(agent contractx.AgentName, req contractx.CompletionRequest) contractx.Completion

// scriptedModel replays a fixed decision sequence and records every request
// so tests can inspect what each agent saw.
type scriptedModel struct {
	t     *testing.T
	steps []modelStep
	idx   int

	agents   []contractx.AgentName
	requests []contractx.CompletionRequest
}

func (m *scriptedModel) Complete(_ context.Context, agent contractx.AgentName, req contractx.CompletionRequest) (contractx.Completion, error) {
	m.agents = append(m.agents, agent)
	m.requests = append(m.requests, req)
	if m.idx >= len(m.steps) {
		m.t.Fatalf("model called %d times, only %d steps scripted", m.idx+1, len(m.steps))
	}
	step := m.steps[m.idx]
	m.idx++
	return step(agent, req), nil
}

func reply(text string) modelStep {
	return func(contractx.AgentName, contractx.CompletionRequest) contractx.Completion {
		return contractx.Completion{Text: text}
	}
}

func callTool(id, tool string, args map[string]any) modelStep {
	return func(contractx.AgentName, contractx.CompletionRequest) contractx.Completion {
		return contractx.Completion{ToolCalls: []contractx.ToolRequest{{ID: id, Tool: tool, Args: args}}}
	}
}

func newTestSession(t *testing.T, model contractx.ChatModel) (*Session, *statex.UserData) {
	t.Helper()

	defs := agentsx.All(agentsx.VoiceConfig{})
	executor, err := toolx.NewExecutor(storex.NewSeededMemoryStore(), agentsx.DeclaredTools(defs))
	if err != nil {
		t.Fatalf("executor: %v", err)
	}
	ud := statex.New("")
	session, err := NewSession(model, executor, defs, ud, Config{SessionID: "test-session"})
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	return session, ud
}

func findSystemTurn(t *testing.T, turns []contractx.Turn) contractx.Turn {
	t.Helper()
	for _, turn := range turns {
		if turn.Role == contractx.RoleSystem {
			return turn
		}
	}
	t.Fatal("no system turn found")
	return contractx.Turn{}
}

func TestStartActivatesRouter(t *testing.T) {
	t.Parallel()

	model := &scriptedModel{t: t, steps: []modelStep{
		reply("Welcome to CartUp. How can I help you today?"),
	}}
	session, ud := newTestSession(t, model)

	greeting, err := session.Start(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if greeting != "Welcome to CartUp. How can I help you today?" {
		t.Fatalf("unexpected greeting: %q", greeting)
	}
	if session.ActiveAgent() != contractx.AgentRouter {
		t.Fatalf("expected router active, got %s", session.ActiveAgent())
	}
	if ud.PrevAgent != "" {
		t.Fatalf("prev agent must be empty at start, got %s", ud.PrevAgent)
	}

	req := model.requests[0]
	sys := findSystemTurn(t, req.Turns)
	if !strings.Contains(sys.Content, "user_id: unknown") {
		t.Fatalf("activation system turn missing fresh summary:\n%s", sys.Content)
	}
	if !strings.Contains(req.StyleHint, "Welcome to Bangladesh number one e-commerce platform CartUp") {
		t.Fatalf("opening style hint missing: %q", req.StyleHint)
	}
	if len(req.Tools) == 0 {
		t.Fatal("router tools must be advertised at activation")
	}
}

func TestStartTwiceFails(t *testing.T) {
	t.Parallel()

	model := &scriptedModel{t: t, steps: []modelStep{reply("hi")}}
	session, _ := newTestSession(t, model)

	if _, err := session.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := session.Start(context.Background()); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestHandleUserTextPlainReply(t *testing.T) {
	t.Parallel()

	model := &scriptedModel{t: t, steps: []modelStep{
		reply("hello"),
		reply("I can help with orders, tickets, returns, or recommendations."),
	}}
	session, _ := newTestSession(t, model)

	if _, err := session.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	out, err := session.HandleUserText(context.Background(), "what can you do?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "orders, tickets") {
		t.Fatalf("unexpected reply: %q", out)
	}

	// The second request must include the appended user turn.
	req := model.requests[1]
	last := req.Turns[len(req.Turns)-1]
	if last.Role != contractx.RoleUser || last.Content != "what can you do?" {
		t.Fatalf("user turn not appended, got %+v", last)
	}
}

func TestHandleUserTextToolThenReply(t *testing.T) {
	t.Parallel()

	model := &scriptedModel{t: t, steps: []modelStep{
		reply("hello"),
		callTool("call-1", toolx.ToolSetUser, map[string]any{"user_id": " U 101 "}),
		reply("Thanks Alex, you're signed in."),
	}}
	session, ud := newTestSession(t, model)

	if _, err := session.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	out, err := session.HandleUserText(context.Background(), "I am user u101")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "Thanks Alex, you're signed in." {
		t.Fatalf("unexpected reply: %q", out)
	}
	if ud.UserID != "u101" {
		t.Fatalf("tool did not normalize user id: %q", ud.UserID)
	}

	// The follow-up model call must see the tool call and its result.
	req := model.requests[2]
	var sawCall, sawResult bool
	for _, turn := range req.Turns {
		switch turn.Role {
		case contractx.RoleToolCall:
			sawCall = turn.Tool == toolx.ToolSetUser && turn.ToolCallID == "call-1"
		case contractx.RoleToolResult:
			sawResult = turn.ToolCallID == "call-1"
		}
	}
	if !sawCall || !sawResult {
		t.Fatalf("tool turns missing from follow-up context (call=%v result=%v)", sawCall, sawResult)
	}
}

func TestTransferCarriesContextAndState(t *testing.T) {
	t.Parallel()

	model := &scriptedModel{t: t, steps: []modelStep{
		reply("hello"),
		callTool("call-1", toolx.ToolSetCurrentOrder, map[string]any{"order_id": "O 302"}),
		callTool("call-2", toolx.ToolToOrder, nil),
		reply("Hi, I'm the order agent. Your order o302 is in focus."),
	}}
	session, ud := newTestSession(t, model)

	if _, err := session.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	out, err := session.HandleUserText(context.Background(), "check order O 302 please")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "order agent") {
		t.Fatalf("unexpected reply: %q", out)
	}
	if session.ActiveAgent() != contractx.AgentOrder {
		t.Fatalf("expected order agent active, got %s", session.ActiveAgent())
	}
	if ud.PrevAgent != contractx.AgentRouter {
		t.Fatalf("expected prev agent router, got %s", ud.PrevAgent)
	}

	// Last request is the order agent's activation.
	activation := model.requests[len(model.requests)-1]
	if model.agents[len(model.agents)-1] != contractx.AgentOrder {
		t.Fatalf("activation went to %s", model.agents[len(model.agents)-1])
	}

	sys := findSystemTurn(t, activation.Turns)
	if !strings.Contains(sys.Content, "current_order_id: o302") {
		t.Fatalf("summary missing spliced-in state:\n%s", sys.Content)
	}
	if !strings.Contains(sys.Content, "You are Order Agent") {
		t.Fatalf("activation directives missing display name:\n%s", sys.Content)
	}

	var sawUser, sawTransferResult bool
	for _, turn := range activation.Turns {
		if turn.Role == contractx.RoleUser && strings.Contains(turn.Content, "check order") {
			sawUser = true
		}
		if turn.Role == contractx.RoleToolResult && turn.Content == "Transferring to order." {
			sawTransferResult = true
		}
	}
	if !sawUser {
		t.Fatal("user turn did not carry across the transfer")
	}
	if !sawTransferResult {
		t.Fatal("transfer tool result did not carry across the transfer")
	}

	// Carried turns precede the injected summary system turn.
	sysIdx, userIdx := -1, -1
	for i, turn := range activation.Turns {
		if turn.Role == contractx.RoleSystem {
			sysIdx = i
		}
		if turn.Role == contractx.RoleUser {
			userIdx = i
		}
	}
	if userIdx > sysIdx {
		t.Fatalf("carried turns must precede the summary turn (user=%d system=%d)", userIdx, sysIdx)
	}
}

func TestEndToEndOrderLookupAfterTransfer(t *testing.T) {
	t.Parallel()

	model := &scriptedModel{t: t, steps: []modelStep{
		reply("Welcome to CartUp."),
		callTool("call-1", toolx.ToolSetCurrentOrder, map[string]any{"order_id": "O 302"}),
		callTool("call-2", toolx.ToolToOrder, nil),
		reply("Let me check order o302 for you."),
		callTool("call-3", toolx.ToolGetOrderDetails, map[string]any{"order_id": "o302"}),
		reply("Your order is in transit and arrives on November 10."),
	}}
	session, ud := newTestSession(t, model)

	ctx := context.Background()
	if _, err := session.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := session.HandleUserText(ctx, "track my order O 302"); err != nil {
		t.Fatalf("transfer turn: %v", err)
	}
	if session.ActiveAgent() != contractx.AgentOrder {
		t.Fatalf("expected order agent, got %s", session.ActiveAgent())
	}

	out, err := session.HandleUserText(ctx, "so where is it?")
	if err != nil {
		t.Fatalf("lookup turn: %v", err)
	}
	if !strings.Contains(out, "in transit") {
		t.Fatalf("unexpected reply: %q", out)
	}
	if ud.CurrentOrderID != "o302" {
		t.Fatalf("order id must persist across the transfer, got %q", ud.CurrentOrderID)
	}

	// The lookup succeeded against the seeded store; its result turn must be
	// in the order agent's context for the final reply.
	final := model.requests[len(model.requests)-1]
	var sawLookupResult bool
	for _, turn := range final.Turns {
		if turn.Role == contractx.RoleToolResult && strings.Contains(turn.Content, `"status":"In Transit"`) {
			sawLookupResult = true
		}
	}
	if !sawLookupResult {
		t.Fatal("order lookup result missing from final context")
	}
}

func TestRoundTripTransferDoesNotDuplicateTurns(t *testing.T) {
	t.Parallel()

	model := &scriptedModel{t: t, steps: []modelStep{
		reply("hello"),
		callTool("call-1", toolx.ToolToOrder, nil),
		reply("order agent here"),
		callTool("call-2", toolx.ToolToRouter, nil),
		reply("router again"),
	}}
	session, _ := newTestSession(t, model)

	ctx := context.Background()
	if _, err := session.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := session.HandleUserText(ctx, "order please"); err != nil {
		t.Fatalf("first transfer: %v", err)
	}
	if _, err := session.HandleUserText(ctx, "take me back"); err != nil {
		t.Fatalf("second transfer: %v", err)
	}
	if session.ActiveAgent() != contractx.AgentRouter {
		t.Fatalf("expected router active, got %s", session.ActiveAgent())
	}

	// The router re-activation sees "order please" exactly once even though
	// both contexts held a copy.
	activation := model.requests[len(model.requests)-1]
	count := 0
	for _, turn := range activation.Turns {
		if turn.Role == contractx.RoleUser && turn.Content == "order please" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected shared turn exactly once, got %d", count)
	}
}

func TestToolStepBudgetExhausted(t *testing.T) {
	t.Parallel()

	steps := []modelStep{reply("hello")}
	for i := 0; i < DefaultMaxToolSteps; i++ {
		steps = append(steps, callTool("call-loop", toolx.ToolSetUser, map[string]any{"user_id": "u101"}))
	}
	model := &scriptedModel{t: t, steps: steps}
	session, _ := newTestSession(t, model)

	ctx := context.Background()
	if _, err := session.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	out, err := session.HandleUserText(ctx, "loop forever")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != toolBudgetReply {
		t.Fatalf("expected budget apology, got %q", out)
	}
}

func TestRecoverableToolFailureStaysInLoop(t *testing.T) {
	t.Parallel()

	model := &scriptedModel{t: t, steps: []modelStep{
		reply("hello"),
		callTool("call-1", toolx.ToolSetCurrentOrder, map[string]any{"order_id": "  "}),
		reply("Which order did you mean?"),
	}}
	session, _ := newTestSession(t, model)

	ctx := context.Background()
	if _, err := session.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	out, err := session.HandleUserText(ctx, "my order")
	if err != nil {
		t.Fatalf("recoverable failure must not error: %v", err)
	}
	if out != "Which order did you mean?" {
		t.Fatalf("unexpected reply: %q", out)
	}

	req := model.requests[2]
	var sawFailure bool
	for _, turn := range req.Turns {
		if turn.Role == contractx.RoleToolResult && strings.Contains(turn.Content, "order_id is required") {
			sawFailure = true
		}
	}
	if !sawFailure {
		t.Fatal("failure text must be fed back to the model")
	}
}

func TestNewSessionValidation(t *testing.T) {
	t.Parallel()

	defs := agentsx.All(agentsx.VoiceConfig{})
	executor, err := toolx.NewExecutor(storex.NewSeededMemoryStore(), agentsx.DeclaredTools(defs))
	if err != nil {
		t.Fatalf("executor: %v", err)
	}
	model := &scriptedModel{t: t}
	ud := statex.New("")

	if _, err := NewSession(nil, executor, defs, ud, Config{}); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("nil model: %v", err)
	}
	if _, err := NewSession(model, executor, nil, ud, Config{}); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("no defs: %v", err)
	}

	// Duplicate names are rejected.
	dup := append([]agentsx.Definition{}, defs...)
	dup = append(dup, defs[0])
	if _, err := NewSession(model, executor, dup, ud, Config{}); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("duplicate defs: %v", err)
	}

	// A declared transfer to an unregistered agent is a config error, not a
	// runtime fallback.
	partial := make([]agentsx.Definition, 0, len(defs)-1)
	for _, def := range defs {
		if def.Name != contractx.AgentOrder {
			partial = append(partial, def)
		}
	}
	if _, err := NewSession(model, executor, partial, ud, Config{}); !errors.Is(err, contractx.ErrUnknownAgent) {
		t.Fatalf("unregistered target: %v", err)
	}

	// Missing router.
	noRouter := make([]agentsx.Definition, 0, len(defs)-1)
	for _, def := range defs {
		if def.Name != contractx.AgentRouter {
			noRouter = append(noRouter, def)
		}
	}
	if _, err := NewSession(model, executor, noRouter, ud, Config{}); err == nil {
		t.Fatal("expected error for missing router")
	}
}

func TestModelErrorTerminates(t *testing.T) {
	t.Parallel()

	failing := modelFunc(func(contractx.AgentName, contractx.CompletionRequest) (contractx.Completion, error) {
		return contractx.Completion{}, errors.New("upstream down")
	})
	session, _ := newTestSession(t, failing)

	if _, err := session.Start(context.Background()); !errors.Is(err, contractx.ErrModelInvoke) {
		t.Fatalf("expected model invoke error, got %v", err)
	}
}

type modelFunc func(agent contractx.AgentName, req contractx.CompletionRequest) (contractx.Completion, error)

func (f modelFunc) Complete(_ context.Context, agent contractx.AgentName, req contractx.CompletionRequest) (contractx.Completion, error) {
	return f(agent, req)
}
