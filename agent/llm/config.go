package llm

import (
	"fmt"
	"strings"

	contractx "github.com/cartup/cartup-agent/agent/contract"
)

// Config holds the default model plus per-agent overrides. A temperature
// override below zero means "use the default"; envconfig cannot distinguish
// an unset float from zero otherwise.
type Config struct {
	Model              string  `envconfig:"MODEL" split_words:"true"`
	Temperature        float32 `envconfig:"TEMPERATURE" split_words:"true" default:"0.5"`
	MaxCompletionToken int     `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`

	RouterModel    string `envconfig:"ROUTER_MODEL" split_words:"true"`
	OrderModel     string `envconfig:"ORDER_MODEL" split_words:"true"`
	TicketModel    string `envconfig:"TICKET_MODEL" split_words:"true"`
	ReturnsModel   string `envconfig:"RETURNS_MODEL" split_words:"true"`
	RecommendModel string `envconfig:"RECOMMEND_MODEL" split_words:"true"`

	RouterTemperature    float32 `envconfig:"ROUTER_TEMPERATURE" split_words:"true" default:"-1"`
	OrderTemperature     float32 `envconfig:"ORDER_TEMPERATURE" split_words:"true" default:"-1"`
	TicketTemperature    float32 `envconfig:"TICKET_TEMPERATURE" split_words:"true" default:"-1"`
	ReturnsTemperature   float32 `envconfig:"RETURNS_TEMPERATURE" split_words:"true" default:"-1"`
	RecommendTemperature float32 `envconfig:"RECOMMEND_TEMPERATURE" split_words:"true" default:"-1"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: default model is required", contractx.ErrValidation)
	}
	if c.MaxCompletionToken <= 0 {
		return fmt.Errorf("%w: max completion token must be positive", contractx.ErrValidation)
	}
	return nil
}

// ModelFor resolves the model name and temperature for one agent variant.
func (c Config) ModelFor(agent contractx.AgentName) (string, float32) {
	model := strings.TrimSpace(c.Model)
	temp := c.Temperature

	override := func(m string, t float32) {
		if v := strings.TrimSpace(m); v != "" {
			model = v
		}
		if t >= 0 {
			temp = t
		}
	}

	switch agent {
	case contractx.AgentRouter:
		override(c.RouterModel, c.RouterTemperature)
	case contractx.AgentOrder:
		override(c.OrderModel, c.OrderTemperature)
	case contractx.AgentTicket:
		override(c.TicketModel, c.TicketTemperature)
	case contractx.AgentReturns:
		override(c.ReturnsModel, c.ReturnsTemperature)
	case contractx.AgentRecommend:
		override(c.RecommendModel, c.RecommendTemperature)
	}
	return model, temp
}
