package runtime

import (
	"fmt"
	"testing"

	contractx "github.com/cartup/cartup-agent/agent/contract"
)

func turn(id string, role contractx.Role, content string) contractx.Turn {
	return contractx.Turn{ID: id, Role: role, Content: content}
}

func TestSpliceExcludesSystemTurns(t *testing.T) {
	t.Parallel()

	outgoing := []contractx.Turn{
		turn("s1", contractx.RoleSystem, "directives"),
		turn("u1", contractx.RoleUser, "hello"),
		turn("a1", contractx.RoleAgent, "hi"),
	}
	merged := Splice(outgoing, nil, MaxCarriedTurns)
	if len(merged) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(merged))
	}
	for _, tr := range merged {
		if tr.Role == contractx.RoleSystem {
			t.Fatalf("system turn %s carried across splice", tr.ID)
		}
	}
}

func TestSpliceCarriesToolTurns(t *testing.T) {
	t.Parallel()

	outgoing := []contractx.Turn{
		{ID: "c1", Role: contractx.RoleToolCall, Tool: "get_order_details", ToolCallID: "call-1"},
		{ID: "r1", Role: contractx.RoleToolResult, Tool: "get_order_details", ToolCallID: "call-1", Content: `{"order_id":"o302"}`},
	}
	merged := Splice(outgoing, nil, MaxCarriedTurns)
	if len(merged) != 2 {
		t.Fatalf("expected tool turns to carry, got %d turns", len(merged))
	}
	if merged[0].Role != contractx.RoleToolCall || merged[1].Role != contractx.RoleToolResult {
		t.Fatalf("unexpected roles: %s, %s", merged[0].Role, merged[1].Role)
	}
}

func TestSpliceTruncatesToMostRecent(t *testing.T) {
	t.Parallel()

	outgoing := make([]contractx.Turn, 0, 30)
	for i := 0; i < 30; i++ {
		outgoing = append(outgoing, turn(fmt.Sprintf("u%d", i), contractx.RoleUser, "msg"))
	}
	merged := Splice(outgoing, nil, MaxCarriedTurns)
	if len(merged) != MaxCarriedTurns {
		t.Fatalf("expected %d turns, got %d", MaxCarriedTurns, len(merged))
	}
	if merged[0].ID != "u10" {
		t.Fatalf("expected oldest carried turn u10, got %s", merged[0].ID)
	}
	if merged[len(merged)-1].ID != "u29" {
		t.Fatalf("expected newest carried turn u29, got %s", merged[len(merged)-1].ID)
	}
}

func TestSpliceDropsDuplicateIDs(t *testing.T) {
	t.Parallel()

	shared := turn("shared", contractx.RoleUser, "incoming copy")
	outgoing := []contractx.Turn{
		turn("shared", contractx.RoleUser, "outgoing copy"),
		turn("fresh", contractx.RoleAgent, "only outgoing"),
	}
	incoming := []contractx.Turn{shared}

	merged := Splice(outgoing, incoming, MaxCarriedTurns)
	if len(merged) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(merged))
	}
	if merged[0].Content != "incoming copy" {
		t.Fatalf("incoming copy must win for shared ID, got %q", merged[0].Content)
	}
	if merged[1].ID != "fresh" {
		t.Fatalf("expected fresh turn appended, got %s", merged[1].ID)
	}
}

func TestSplicePreservesRelativeOrder(t *testing.T) {
	t.Parallel()

	outgoing := []contractx.Turn{
		turn("u1", contractx.RoleUser, "first"),
		turn("a1", contractx.RoleAgent, "second"),
		turn("u2", contractx.RoleUser, "third"),
	}
	incoming := []contractx.Turn{
		turn("i1", contractx.RoleAgent, "existing"),
	}
	merged := Splice(outgoing, incoming, MaxCarriedTurns)
	want := []string{"i1", "u1", "a1", "u2"}
	if len(merged) != len(want) {
		t.Fatalf("expected %d turns, got %d", len(want), len(merged))
	}
	for i, id := range want {
		if merged[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, merged[i].ID)
		}
	}
}

func TestSpliceDoesNotMutateInputs(t *testing.T) {
	t.Parallel()

	outgoing := []contractx.Turn{turn("u1", contractx.RoleUser, "msg")}
	incoming := []contractx.Turn{turn("i1", contractx.RoleAgent, "existing")}
	_ = Splice(outgoing, incoming, MaxCarriedTurns)

	if len(outgoing) != 1 || outgoing[0].ID != "u1" {
		t.Fatal("outgoing slice mutated")
	}
	if len(incoming) != 1 || incoming[0].ID != "i1" {
		t.Fatal("incoming slice mutated")
	}
}

func TestChatContextTurnsReturnsCopy(t *testing.T) {
	t.Parallel()

	ctx := NewChatContext()
	ctx.Append(NewUserTurn("hello"))

	snapshot := ctx.Turns()
	snapshot[0].Content = "mutated"

	if ctx.Turns()[0].Content != "hello" {
		t.Fatal("context exposed internal slice")
	}
}
