// Package agents declares the five CartUp agent variants. The set is closed:
// every variant is known at compile time and registered once at session
// start.
package agents

import (
	contractx "github.com/cartup/cartup-agent/agent/contract"
	promptx "github.com/cartup/cartup-agent/agent/prompt"
	toolx "github.com/cartup/cartup-agent/agent/tool"
)

// Definition is one agent variant: instructions, declared tool set, and
// per-agent overrides. Variants differ only in these fields; behavior is
// shared runtime code.
type Definition struct {
	Name         contractx.AgentName
	DisplayName  string
	Instructions string
	Tools        []string
	Voice        string

	// TransferGreeting frames the reply generated when this agent becomes
	// active after a transfer. Empty means the default acknowledgment.
	TransferGreeting string
}

// TransferTargets lists the agents reachable from this variant's declared
// tool set, in declaration order.
func (d Definition) TransferTargets() []contractx.AgentName {
	targets := make([]contractx.AgentName, 0, 4)
	for _, name := range d.Tools {
		if target, ok := toolx.TransferTarget(name); ok {
			targets = append(targets, target)
		}
	}
	return targets
}

// VoiceConfig selects a TTS voice per variant. Injected at session
// construction; there is no process-wide default table.
type VoiceConfig struct {
	Router    string `envconfig:"ROUTER" split_words:"true" default:"en-IN-Chirp-HD-F"`
	Order     string `envconfig:"ORDER" split_words:"true" default:"en-IN-Chirp-HD-F"`
	Ticket    string `envconfig:"TICKET" split_words:"true" default:"en-IN-Chirp-HD-F"`
	Returns   string `envconfig:"RETURNS" split_words:"true" default:"en-IN-Chirp-HD-F"`
	Recommend string `envconfig:"RECOMMEND" split_words:"true" default:"en-IN-Chirp-HD-F"`
}

// All returns the full variant set with the connectivity the declared tool
// sets encode: the router reaches every domain agent, and every domain agent
// reaches the router and every other domain agent in one hop. No agent
// declares a transfer to itself.
func All(voices VoiceConfig) []Definition {
	prompts := promptx.LoadPromptSet()

	return []Definition{
		{
			Name:         contractx.AgentRouter,
			DisplayName:  "CartUp Assistant",
			Instructions: prompts.Router,
			Voice:        voices.Router,
			Tools: []string{
				toolx.ToolSetUser,
				toolx.ToolSetCurrentOrder,
				toolx.ToolSetLanguage,
				toolx.ToolToOrder,
				toolx.ToolToTicket,
				toolx.ToolToReturns,
				toolx.ToolToRecommend,
			},
			TransferGreeting: "Say concisely: 'Welcome to Bangladesh number one e-commerce platform CartUp. How can I help you today?' Then wait for the user's response.",
		},
		{
			Name:         contractx.AgentOrder,
			DisplayName:  "Order Agent",
			Instructions: prompts.Order,
			Voice:        voices.Order,
			Tools: []string{
				toolx.ToolSetCurrentOrder,
				toolx.ToolGetOrderDetails,
				toolx.ToolGetUserOrders,
				toolx.ToolUpdateDeliveryAddress,
				toolx.ToolToRouter,
				toolx.ToolToTicket,
				toolx.ToolToReturns,
				toolx.ToolToRecommend,
			},
			TransferGreeting: "Greet the user briefly and let them know you're here to help with their order. Mention you can check order status, details, delivery addresses, or order history.",
		},
		{
			Name:         contractx.AgentTicket,
			DisplayName:  "Ticket Agent",
			Instructions: prompts.Ticket,
			Voice:        voices.Ticket,
			Tools: []string{
				toolx.ToolCreateTicket,
				toolx.ToolTrackTicket,
				toolx.ToolToRouter,
				toolx.ToolToOrder,
				toolx.ToolToReturns,
				toolx.ToolToRecommend,
			},
			TransferGreeting: "Greet the user briefly and let them know you can create a support ticket or check the status of an existing one.",
		},
		{
			Name:         contractx.AgentReturns,
			DisplayName:  "Returns Agent",
			Instructions: prompts.Returns,
			Voice:        voices.Returns,
			Tools: []string{
				toolx.ToolInitiateReturn,
				toolx.ToolGetReturnStatus,
				toolx.ToolUpdateRefundStatus,
				toolx.ToolToRouter,
				toolx.ToolToOrder,
				toolx.ToolToTicket,
				toolx.ToolToRecommend,
			},
			TransferGreeting: "Greet the user briefly and let them know you can start a return or check return and refund status.",
		},
		{
			Name:         contractx.AgentRecommend,
			DisplayName:  "Recommend Agent",
			Instructions: prompts.Recommend,
			Voice:        voices.Recommend,
			Tools: []string{
				toolx.ToolGetRecommendations,
				toolx.ToolGetProductDetails,
				toolx.ToolAddToWishlist,
				toolx.ToolToRouter,
				toolx.ToolToOrder,
				toolx.ToolToTicket,
				toolx.ToolToReturns,
			},
			TransferGreeting: "Greet the user briefly and let them know you can suggest products, share product details, or add items to their wishlist.",
		},
	}
}

// DeclaredTools maps each variant to its declared tool names, the shape the
// tool executor expects.
func DeclaredTools(defs []Definition) map[contractx.AgentName][]string {
	declared := make(map[contractx.AgentName][]string, len(defs))
	for _, def := range defs {
		declared[def.Name] = def.Tools
	}
	return declared
}
