package tool

import (
	"context"
	"fmt"

	contractx "github.com/cartup/cartup-agent/agent/contract"
	statex "github.com/cartup/cartup-agent/agent/state"
	storex "github.com/cartup/cartup-agent/agent/store"
)

func (e *Executor) registerReturns() {
	e.add(contractx.ToolSpec{
		Name:        ToolInitiateReturn,
		Description: "Create or overwrite a return record for an order.",
		Parameters: objectSchema(map[string]any{
			"order_id": stringProp("Order to return (e.g., o302)"),
			"reason":   stringProp("Why the order is being returned"),
		}, "order_id", "reason"),
	}, e.initiateReturn)

	e.add(contractx.ToolSpec{
		Name:        ToolGetReturnStatus,
		Description: "Fetch the current return status for an order, if any.",
		Parameters: objectSchema(map[string]any{
			"order_id": stringProp("Order ID (e.g., o302)"),
		}, "order_id"),
	}, e.getReturnStatus)

	e.add(contractx.ToolSpec{
		Name:        ToolUpdateRefundStatus,
		Description: "Update refund progress for an existing return.",
		Parameters: objectSchema(map[string]any{
			"order_id":      stringProp("Order ID (e.g., o302)"),
			"refund_status": stringProp("New refund status"),
		}, "order_id", "refund_status"),
	}, e.updateRefundStatus)
}

func (e *Executor) initiateReturn(ctx context.Context, ud *statex.UserData, args map[string]any) contractx.ToolOutcome {
	orderID := NormalizeID(stringArg(args, "order_id"))
	reason := stringArg(args, "reason")

	ret := storex.Return{
		OrderID:      orderID,
		Status:       "Pending Courier Pickup",
		RefundStatus: "Not Initiated",
		Reason:       reason,
		CreatedAt:    e.now().Format("2006-01-02"),
	}
	if err := e.store.CreateReturn(ctx, ret); err != nil {
		return storeFailure(err, fmt.Sprintf("Order %s not found", orderID))
	}

	ud.CurrentOrderID = orderID
	return contractx.ToolOutcome{Result: map[string]any{
		"order_id":      orderID,
		"status":        ret.Status,
		"refund_status": ret.RefundStatus,
		"reason":        ret.Reason,
	}}
}

func (e *Executor) getReturnStatus(ctx context.Context, ud *statex.UserData, args map[string]any) contractx.ToolOutcome {
	orderID := NormalizeID(stringArg(args, "order_id"))
	ret, err := e.store.Return(ctx, orderID)
	if err != nil {
		return storeFailure(err, fmt.Sprintf("No return found for order %s", orderID))
	}

	ud.CurrentOrderID = orderID
	return contractx.ToolOutcome{Result: map[string]any{
		"order_id":      orderID,
		"status":        ret.Status,
		"refund_status": ret.RefundStatus,
		"reason":        ret.Reason,
		"created_at":    ret.CreatedAt,
	}}
}

func (e *Executor) updateRefundStatus(ctx context.Context, ud *statex.UserData, args map[string]any) contractx.ToolOutcome {
	orderID := NormalizeID(stringArg(args, "order_id"))
	refundStatus := stringArg(args, "refund_status")

	if err := e.store.UpdateRefundStatus(ctx, orderID, refundStatus); err != nil {
		return storeFailure(err, fmt.Sprintf("No return found for order %s", orderID))
	}

	ud.CurrentOrderID = orderID
	return contractx.ToolOutcome{Result: fmt.Sprintf("Refund status for order %s set to %s", orderID, refundStatus)}
}
