package state

import (
	"errors"
	"strings"
	"testing"

	contractx "github.com/cartup/cartup-agent/agent/contract"
)

func TestParseLanguage(t *testing.T) {
	t.Parallel()

	if lang, err := ParseLanguage("en-IN"); err != nil || lang != LanguageEnglish {
		t.Fatalf("unexpected: %v, %v", lang, err)
	}
	if lang, err := ParseLanguage(" bn-BD "); err != nil || lang != LanguageBengali {
		t.Fatalf("unexpected: %v, %v", lang, err)
	}
	if _, err := ParseLanguage("fr-FR"); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestNewDefaultsToEnglish(t *testing.T) {
	t.Parallel()

	ud := New("")
	if ud.Language != LanguageEnglish {
		t.Fatalf("expected default language en-IN, got %s", ud.Language)
	}
	if ud.PrevAgent != "" {
		t.Fatalf("prev agent must start empty, got %s", ud.PrevAgent)
	}
	if ud.UpdatedAt.IsZero() {
		t.Fatal("updated_at must be set")
	}
}

func TestSummarizePlaceholders(t *testing.T) {
	t.Parallel()

	ud := New(LanguageEnglish)
	summary, err := ud.Summarize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{
		"user_id: unknown",
		"current_order_id: none",
		"current_ticket_id: none",
		"current_product_id: none",
		"last_intent: none",
		"language: en-IN",
	} {
		if !strings.Contains(summary, want) {
			t.Fatalf("summary missing %q:\n%s", want, summary)
		}
	}
}

func TestSummarizeDeterministicOrder(t *testing.T) {
	t.Parallel()

	ud := New(LanguageBengali)
	ud.UserID = "u101"
	ud.CurrentOrderID = "o302"

	first, err := ud.Summarize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := ud.Summarize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Fatal("summary must be deterministic")
	}

	userIdx := strings.Index(first, "user_id:")
	orderIdx := strings.Index(first, "current_order_id:")
	if userIdx < 0 || orderIdx < 0 || userIdx > orderIdx {
		t.Fatalf("unexpected key order:\n%s", first)
	}
	if !strings.Contains(first, "user_id: u101") {
		t.Fatalf("summary missing set value:\n%s", first)
	}
}

func TestEffectiveLanguage(t *testing.T) {
	t.Parallel()

	var nilUD *UserData
	if nilUD.EffectiveLanguage() != LanguageEnglish {
		t.Fatal("nil state must default to English")
	}

	ud := New(LanguageBengali)
	if ud.EffectiveLanguage() != LanguageBengali {
		t.Fatal("explicit language must stick")
	}
}
