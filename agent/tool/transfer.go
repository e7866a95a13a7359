package tool

import (
	"context"
	"fmt"

	contractx "github.com/cartup/cartup-agent/agent/contract"
	statex "github.com/cartup/cartup-agent/agent/state"
)

// displayIntents records the advisory last_intent hint a transfer leaves
// behind for the next agent's summary.
var displayIntents = map[contractx.AgentName]string{
	contractx.AgentRouter:    "routing",
	contractx.AgentOrder:     "order",
	contractx.AgentTicket:    "ticket",
	contractx.AgentReturns:   "returns",
	contractx.AgentRecommend: "recommendations",
}

// Transfer tools are handlers with no domain logic: each immediately builds
// a directive naming its fixed target. The runtime consumes the directive
// exactly once.
func (e *Executor) registerTransfers() {
	transfers := []struct {
		name   string
		target contractx.AgentName
		desc   string
	}{
		{ToolToRouter, contractx.AgentRouter, "Route the caller back to the main assistant."},
		{ToolToOrder, contractx.AgentOrder, "Transfer to the order agent for order-related queries."},
		{ToolToTicket, contractx.AgentTicket, "Transfer to the ticket agent for support ticket creation and tracking."},
		{ToolToReturns, contractx.AgentReturns, "Transfer to the returns agent for returns and refunds."},
		{ToolToRecommend, contractx.AgentRecommend, "Transfer to the recommend agent for product recommendations."},
	}
	for _, t := range transfers {
		target := t.target
		e.add(contractx.ToolSpec{
			Name:        t.name,
			Description: t.desc,
			Parameters:  objectSchema(map[string]any{}),
		}, func(_ context.Context, ud *statex.UserData, _ map[string]any) contractx.ToolOutcome {
			ud.LastIntent = displayIntents[target]
			return contractx.ToolOutcome{Transfer: &contractx.TransferDirective{
				Target:  target,
				Message: fmt.Sprintf("Transferring to %s.", target),
			}}
		})
	}
}
