package tool

import (
	"context"
	"fmt"

	contractx "github.com/cartup/cartup-agent/agent/contract"
	statex "github.com/cartup/cartup-agent/agent/state"
)

func (e *Executor) registerOrder() {
	e.add(contractx.ToolSpec{
		Name:        ToolGetOrderDetails,
		Description: "Fetch order details: status, items, amount, delivery date, address.",
		Parameters: objectSchema(map[string]any{
			"order_id": stringProp("Order ID to fetch (e.g., o302)"),
		}, "order_id"),
	}, e.getOrderDetails)

	e.add(contractx.ToolSpec{
		Name:        ToolGetUserOrders,
		Description: "Get all orders for a user.",
		Parameters: objectSchema(map[string]any{
			"user_id": stringProp("User ID to fetch orders for (e.g., u101)"),
		}, "user_id"),
	}, e.getUserOrders)

	e.add(contractx.ToolSpec{
		Name:        ToolUpdateDeliveryAddress,
		Description: "Update the delivery address for an order.",
		Parameters: objectSchema(map[string]any{
			"order_id":    stringProp("Order ID to update (e.g., o302)"),
			"new_address": stringProp("New delivery address"),
		}, "order_id", "new_address"),
	}, e.updateDeliveryAddress)
}

func (e *Executor) getOrderDetails(ctx context.Context, ud *statex.UserData, args map[string]any) contractx.ToolOutcome {
	orderID := NormalizeID(stringArg(args, "order_id"))
	order, err := e.store.Order(ctx, orderID)
	if err != nil {
		return storeFailure(err, fmt.Sprintf("Order %s not found", orderID))
	}

	ud.CurrentOrderID = orderID
	return contractx.ToolOutcome{Result: map[string]any{
		"order_id":      orderID,
		"status":        order.Status,
		"items":         order.Items,
		"amount":        order.Amount,
		"delivery_date": order.DeliveryDate,
		"address":       order.Address,
	}}
}

func (e *Executor) getUserOrders(ctx context.Context, ud *statex.UserData, args map[string]any) contractx.ToolOutcome {
	userID := NormalizeID(stringArg(args, "user_id"))
	user, err := e.store.User(ctx, userID)
	if err != nil {
		return storeFailure(err, fmt.Sprintf("User %s not found", userID))
	}

	orders := make([]map[string]any, 0, len(user.Orders))
	for _, orderID := range user.Orders {
		order, err := e.store.Order(ctx, orderID)
		if err != nil {
			continue
		}
		orders = append(orders, map[string]any{
			"order_id":      orderID,
			"status":        order.Status,
			"items":         order.Items,
			"amount":        order.Amount,
			"delivery_date": order.DeliveryDate,
		})
	}

	ud.UserID = userID
	return contractx.ToolOutcome{Result: map[string]any{
		"user_id":      userID,
		"orders":       orders,
		"total_orders": len(orders),
	}}
}

func (e *Executor) updateDeliveryAddress(ctx context.Context, ud *statex.UserData, args map[string]any) contractx.ToolOutcome {
	orderID := NormalizeID(stringArg(args, "order_id"))
	address := stringArg(args, "new_address")

	if err := e.store.UpdateOrderAddress(ctx, orderID, address); err != nil {
		return storeFailure(err, fmt.Sprintf("Order %s not found", orderID))
	}

	ud.CurrentOrderID = orderID
	return contractx.ToolOutcome{Result: fmt.Sprintf("Address for order %s updated to %s", orderID, address)}
}
