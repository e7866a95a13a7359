package tool

import (
	"context"
	"strings"
	"testing"
	"time"

	contractx "github.com/cartup/cartup-agent/agent/contract"
	statex "github.com/cartup/cartup-agent/agent/state"
	storex "github.com/cartup/cartup-agent/agent/store"
)

func testExecutor(t *testing.T) *Executor {
	t.Helper()

	declared := map[contractx.AgentName][]string{
		contractx.AgentRouter: {ToolSetUser, ToolSetLanguage, ToolToOrder},
		contractx.AgentOrder:  {ToolGetOrderDetails, ToolGetUserOrders, ToolUpdateDeliveryAddress, ToolToRouter},
		contractx.AgentTicket: {ToolCreateTicket, ToolTrackTicket},
	}
	e, err := NewExecutor(storex.NewSeededMemoryStore(), declared)
	if err != nil {
		t.Fatalf("executor: %v", err)
	}
	return e.WithClock(func() time.Time {
		return time.Date(2025, 11, 20, 10, 0, 0, 0, time.UTC)
	})
}

func TestNewExecutorRejectsUnknownDeclaredTool(t *testing.T) {
	t.Parallel()

	declared := map[contractx.AgentName][]string{
		contractx.AgentRouter: {"no_such_tool"},
	}
	if _, err := NewExecutor(storex.NewSeededMemoryStore(), declared); err == nil {
		t.Fatal("expected error for unknown declared tool")
	}
}

func TestExecuteUndeclaredToolIsRecoverable(t *testing.T) {
	t.Parallel()

	e := testExecutor(t)
	ud := statex.New("")
	out := e.Execute(context.Background(), contractx.AgentRouter, contractx.ToolRequest{
		ID: "call-1", Tool: ToolGetOrderDetails,
		Args: map[string]any{"order_id": "o302"},
	}, ud)
	if !out.Failed() {
		t.Fatal("expected failure outcome")
	}
	if !strings.Contains(out.Failure, "unavailable for agent=router") {
		t.Fatalf("unexpected failure message: %s", out.Failure)
	}
}

func TestExecuteValidatesArguments(t *testing.T) {
	t.Parallel()

	e := testExecutor(t)
	ud := statex.New("")
	out := e.Execute(context.Background(), contractx.AgentOrder, contractx.ToolRequest{
		ID: "call-1", Tool: ToolGetOrderDetails,
		Args: map[string]any{"order_id": 42},
	}, ud)
	if !out.Failed() {
		t.Fatal("expected validation failure")
	}
	if !strings.Contains(out.Failure, "invalid arguments") {
		t.Fatalf("unexpected failure message: %s", out.Failure)
	}
}

func TestSetUserNormalizesID(t *testing.T) {
	t.Parallel()

	e := testExecutor(t)
	ud := statex.New("")
	out := e.Execute(context.Background(), contractx.AgentRouter, contractx.ToolRequest{
		ID: "call-1", Tool: ToolSetUser,
		Args: map[string]any{"user_id": " U 101 "},
	}, ud)
	if out.Failed() {
		t.Fatalf("unexpected failure: %s", out.Failure)
	}
	if ud.UserID != "u101" {
		t.Fatalf("expected normalized user id u101, got %q", ud.UserID)
	}
}

func TestSetLanguageRejectsUnknownCode(t *testing.T) {
	t.Parallel()

	e := testExecutor(t)
	ud := statex.New("")
	out := e.Execute(context.Background(), contractx.AgentRouter, contractx.ToolRequest{
		ID: "call-1", Tool: ToolSetLanguage,
		Args: map[string]any{"language": "fr-FR"},
	}, ud)
	if !out.Failed() {
		t.Fatal("expected failure for unknown language")
	}
	if ud.Language != statex.LanguageEnglish {
		t.Fatalf("language must not change on failure, got %s", ud.Language)
	}
}

func TestGetOrderDetailsUpdatesState(t *testing.T) {
	t.Parallel()

	e := testExecutor(t)
	ud := statex.New("")
	out := e.Execute(context.Background(), contractx.AgentOrder, contractx.ToolRequest{
		ID: "call-1", Tool: ToolGetOrderDetails,
		Args: map[string]any{"order_id": "O 302"},
	}, ud)
	if out.Failed() {
		t.Fatalf("unexpected failure: %s", out.Failure)
	}
	if ud.CurrentOrderID != "o302" {
		t.Fatalf("expected current order o302, got %q", ud.CurrentOrderID)
	}
	result, ok := out.Result.(map[string]any)
	if !ok {
		t.Fatalf("unexpected result type %T", out.Result)
	}
	if result["status"] != "In Transit" {
		t.Fatalf("unexpected status: %v", result["status"])
	}
}

func TestGetOrderDetailsNotFoundIsRecoverable(t *testing.T) {
	t.Parallel()

	e := testExecutor(t)
	ud := statex.New("")
	out := e.Execute(context.Background(), contractx.AgentOrder, contractx.ToolRequest{
		ID: "call-1", Tool: ToolGetOrderDetails,
		Args: map[string]any{"order_id": "o999"},
	}, ud)
	if !out.Failed() {
		t.Fatal("expected failure for unknown order")
	}
	if !strings.Contains(out.Failure, "o999 not found") {
		t.Fatalf("unexpected failure message: %s", out.Failure)
	}
	if ud.CurrentOrderID != "" {
		t.Fatalf("state must not change on failure, got %q", ud.CurrentOrderID)
	}
}

func TestCreateTicketSequencesIDs(t *testing.T) {
	t.Parallel()

	e := testExecutor(t)
	ud := statex.New("")
	out := e.Execute(context.Background(), contractx.AgentTicket, contractx.ToolRequest{
		ID: "call-1", Tool: ToolCreateTicket,
		Args: map[string]any{"order_id": "o302", "issue": "Late delivery"},
	}, ud)
	if out.Failed() {
		t.Fatalf("unexpected failure: %s", out.Failure)
	}
	if ud.CurrentTicketID != "t601" {
		t.Fatalf("expected first new ticket t601, got %q", ud.CurrentTicketID)
	}
	if ud.CurrentOrderID != "o302" {
		t.Fatalf("expected current order o302, got %q", ud.CurrentOrderID)
	}
}

func TestTransferToolReturnsDirective(t *testing.T) {
	t.Parallel()

	e := testExecutor(t)
	ud := statex.New("")
	out := e.Execute(context.Background(), contractx.AgentRouter, contractx.ToolRequest{
		ID: "call-1", Tool: ToolToOrder,
	}, ud)
	if out.Failed() {
		t.Fatalf("unexpected failure: %s", out.Failure)
	}
	if out.Transfer == nil {
		t.Fatal("expected transfer directive")
	}
	if out.Transfer.Target != contractx.AgentOrder {
		t.Fatalf("unexpected target: %s", out.Transfer.Target)
	}
	if out.Transfer.Message != "Transferring to order." {
		t.Fatalf("unexpected message: %s", out.Transfer.Message)
	}
	if ud.LastIntent != "order" {
		t.Fatalf("expected last_intent order, got %q", ud.LastIntent)
	}
}

func TestSpecsForDeclarationOrder(t *testing.T) {
	t.Parallel()

	e := testExecutor(t)
	specs := e.SpecsFor(contractx.AgentOrder)
	want := []string{ToolGetOrderDetails, ToolGetUserOrders, ToolUpdateDeliveryAddress, ToolToRouter}
	if len(specs) != len(want) {
		t.Fatalf("expected %d specs, got %d", len(want), len(specs))
	}
	for i, name := range want {
		if specs[i].Name != name {
			t.Fatalf("position %d: expected %s, got %s", i, name, specs[i].Name)
		}
	}
}
