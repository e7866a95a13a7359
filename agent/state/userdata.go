package state

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	contractx "github.com/cartup/cartup-agent/agent/contract"
)

// Language is the conversation language preference.
type Language string

const (
	LanguageEnglish Language = "en-IN"
	LanguageBengali Language = "bn-BD"
)

// ParseLanguage validates a language code. Unknown codes are rejected so a
// bad value never silently changes the response style.
func ParseLanguage(code string) (Language, error) {
	switch Language(strings.TrimSpace(code)) {
	case LanguageEnglish:
		return LanguageEnglish, nil
	case LanguageBengali:
		return LanguageBengali, nil
	default:
		return "", fmt.Errorf("%w: unsupported language code %q", contractx.ErrValidation, code)
	}
}

// UserData is the cross-agent mutable record for one live conversation.
// Tool handlers set the identifier fields as entities are looked up so later
// agents need not re-ask the user. PrevAgent is a handle, never an owning
// reference: it names the agent that was active immediately before the
// current one, one hop only, and is empty at session start.
type UserData struct {
	UserID           string `json:"user_id,omitempty"`
	CurrentOrderID   string `json:"current_order_id,omitempty"`
	CurrentTicketID  string `json:"current_ticket_id,omitempty"`
	CurrentProductID string `json:"current_product_id,omitempty"`

	LastIntent string   `json:"last_intent,omitempty"`
	Language   Language `json:"language,omitempty"`

	PrevAgent contractx.AgentName `json:"prev_agent,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// New returns session state with the given language preference. An empty
// language defaults to English.
func New(language Language) *UserData {
	if language == "" {
		language = LanguageEnglish
	}
	return &UserData{
		Language:  language,
		UpdatedAt: time.Now().UTC(),
	}
}

func (u *UserData) Touch(now time.Time) {
	u.UpdatedAt = now.UTC()
}

// EffectiveLanguage returns the language preference, defaulting to English
// when unset.
func (u *UserData) EffectiveLanguage() Language {
	if u == nil || u.Language == "" {
		return LanguageEnglish
	}
	return u.Language
}

// summary is the flat key-to-scalar view injected into every activating
// agent's context. Field order here is the rendered key order; every
// optional field is present with an explicit placeholder when unset so the
// model never sees a silently dropped key.
type summary struct {
	UserID           string `yaml:"user_id"`
	CurrentOrderID   string `yaml:"current_order_id"`
	CurrentTicketID  string `yaml:"current_ticket_id"`
	CurrentProductID string `yaml:"current_product_id"`
	LastIntent       string `yaml:"last_intent"`
	Language         string `yaml:"language"`
}

// Summarize renders the session state deterministically for model grounding.
func (u *UserData) Summarize() (string, error) {
	s := summary{
		UserID:           orPlaceholder(u.UserID, "unknown"),
		CurrentOrderID:   orPlaceholder(u.CurrentOrderID, "none"),
		CurrentTicketID:  orPlaceholder(u.CurrentTicketID, "none"),
		CurrentProductID: orPlaceholder(u.CurrentProductID, "none"),
		LastIntent:       orPlaceholder(u.LastIntent, "none"),
		Language:         string(u.EffectiveLanguage()),
	}
	out, err := yaml.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("marshal session summary: %w", err)
	}
	return string(out), nil
}

func orPlaceholder(v, placeholder string) string {
	if strings.TrimSpace(v) == "" {
		return placeholder
	}
	return v
}
