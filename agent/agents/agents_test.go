package agents

import (
	"testing"

	contractx "github.com/cartup/cartup-agent/agent/contract"
)

func TestAllRegistersFiveVariants(t *testing.T) {
	t.Parallel()

	defs := All(VoiceConfig{})
	if len(defs) != 5 {
		t.Fatalf("expected 5 variants, got %d", len(defs))
	}

	seen := map[contractx.AgentName]bool{}
	for _, def := range defs {
		if seen[def.Name] {
			t.Fatalf("duplicate variant %s", def.Name)
		}
		seen[def.Name] = true
		if def.Instructions == "" {
			t.Fatalf("variant %s has no instructions", def.Name)
		}
		if len(def.Tools) == 0 {
			t.Fatalf("variant %s declares no tools", def.Name)
		}
	}
	for _, name := range []contractx.AgentName{
		contractx.AgentRouter, contractx.AgentOrder, contractx.AgentTicket,
		contractx.AgentReturns, contractx.AgentRecommend,
	} {
		if !seen[name] {
			t.Fatalf("variant %s missing", name)
		}
	}
}

func TestFullMeshReachability(t *testing.T) {
	t.Parallel()

	defs := All(VoiceConfig{})
	names := make([]contractx.AgentName, 0, len(defs))
	byName := map[contractx.AgentName]Definition{}
	for _, def := range defs {
		names = append(names, def.Name)
		byName[def.Name] = def
	}

	for _, from := range names {
		targets := map[contractx.AgentName]bool{}
		for _, target := range byName[from].TransferTargets() {
			targets[target] = true
		}
		for _, to := range names {
			if from == to {
				if targets[to] {
					t.Fatalf("%s declares a transfer to itself", from)
				}
				continue
			}
			if !targets[to] {
				t.Fatalf("%s cannot reach %s in one hop", from, to)
			}
		}
	}
}

func TestDeclaredTools(t *testing.T) {
	t.Parallel()

	defs := All(VoiceConfig{})
	declared := DeclaredTools(defs)
	if len(declared) != len(defs) {
		t.Fatalf("expected %d entries, got %d", len(defs), len(declared))
	}
	for _, def := range defs {
		tools := declared[def.Name]
		if len(tools) != len(def.Tools) {
			t.Fatalf("variant %s: expected %d tools, got %d", def.Name, len(def.Tools), len(tools))
		}
	}
}

func TestVoiceDefaults(t *testing.T) {
	t.Parallel()

	defs := All(VoiceConfig{Router: "en-IN-Chirp-HD-F"})
	for _, def := range defs {
		if def.Name == contractx.AgentRouter && def.Voice != "en-IN-Chirp-HD-F" {
			t.Fatalf("router voice not applied: %s", def.Voice)
		}
	}
}
