package tool

import (
	"context"
	"fmt"

	contractx "github.com/cartup/cartup-agent/agent/contract"
	statex "github.com/cartup/cartup-agent/agent/state"
	storex "github.com/cartup/cartup-agent/agent/store"
)

func (e *Executor) registerTicket() {
	e.add(contractx.ToolSpec{
		Name:        ToolCreateTicket,
		Description: "Create a support ticket for an order issue.",
		Parameters: objectSchema(map[string]any{
			"order_id": stringProp("Related order ID (e.g., o302)"),
			"issue":    stringProp("Short issue description"),
		}, "order_id", "issue"),
	}, e.createTicket)

	e.add(contractx.ToolSpec{
		Name:        ToolTrackTicket,
		Description: "Fetch ticket status and details.",
		Parameters: objectSchema(map[string]any{
			"ticket_id": stringProp("Ticket ID to check (e.g., t602)"),
		}, "ticket_id"),
	}, e.trackTicket)
}

func (e *Executor) createTicket(ctx context.Context, ud *statex.UserData, args map[string]any) contractx.ToolOutcome {
	orderID := NormalizeID(stringArg(args, "order_id"))
	issue := stringArg(args, "issue")

	if _, err := e.store.Order(ctx, orderID); err != nil {
		return storeFailure(err, fmt.Sprintf("Order %s not found", orderID))
	}

	ticketID, err := e.store.NextID(ctx, storex.EntityTicket)
	if err != nil {
		return storeFailure(err, fmt.Sprintf("Failed to create ticket for order %s", orderID))
	}

	ticket := storex.Ticket{
		TicketID:  ticketID,
		OrderID:   orderID,
		Issue:     issue,
		Status:    "Open",
		CreatedAt: e.now().Format("2006-01-02"),
	}
	if err := e.store.CreateTicket(ctx, ticket); err != nil {
		return storeFailure(err, fmt.Sprintf("Failed to create ticket for order %s", orderID))
	}

	ud.CurrentTicketID = ticketID
	ud.CurrentOrderID = orderID
	return contractx.ToolOutcome{Result: map[string]any{
		"ticket_id": ticketID,
		"order_id":  orderID,
		"issue":     issue,
		"status":    ticket.Status,
	}}
}

func (e *Executor) trackTicket(ctx context.Context, ud *statex.UserData, args map[string]any) contractx.ToolOutcome {
	ticketID := NormalizeID(stringArg(args, "ticket_id"))
	ticket, err := e.store.Ticket(ctx, ticketID)
	if err != nil {
		return storeFailure(err, fmt.Sprintf("Ticket %s not found", ticketID))
	}

	ud.CurrentTicketID = ticketID
	return contractx.ToolOutcome{Result: map[string]any{
		"ticket_id":  ticketID,
		"order_id":   ticket.OrderID,
		"issue":      ticket.Issue,
		"status":     ticket.Status,
		"created_at": ticket.CreatedAt,
	}}
}
