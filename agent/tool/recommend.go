package tool

import (
	"context"
	"fmt"

	contractx "github.com/cartup/cartup-agent/agent/contract"
	statex "github.com/cartup/cartup-agent/agent/state"
)

func (e *Executor) registerRecommend() {
	e.add(contractx.ToolSpec{
		Name:        ToolGetRecommendations,
		Description: "Fetch recommended items for a user.",
		Parameters: objectSchema(map[string]any{
			"user_id": stringProp("User ID to recommend for (e.g., u101)"),
		}, "user_id"),
	}, e.getRecommendations)

	e.add(contractx.ToolSpec{
		Name:        ToolGetProductDetails,
		Description: "Get product information: name, description, price, availability.",
		Parameters: objectSchema(map[string]any{
			"product_id": stringProp("Product ID to fetch (e.g., p001)"),
		}, "product_id"),
	}, e.getProductDetails)

	e.add(contractx.ToolSpec{
		Name:        ToolAddToWishlist,
		Description: "Add a product to the user's wishlist.",
		Parameters: objectSchema(map[string]any{
			"user_id":    stringProp("User ID (e.g., u101)"),
			"product_id": stringProp("Product ID to add (e.g., p001)"),
		}, "user_id", "product_id"),
	}, e.addToWishlist)
}

func (e *Executor) getRecommendations(ctx context.Context, ud *statex.UserData, args map[string]any) contractx.ToolOutcome {
	userID := NormalizeID(stringArg(args, "user_id"))
	recommendations, err := e.store.Recommendations(ctx, userID)
	if err != nil {
		return storeFailure(err, fmt.Sprintf("User %s not found", userID))
	}

	ud.UserID = userID
	return contractx.ToolOutcome{Result: map[string]any{
		"user_id":         userID,
		"recommendations": recommendations,
	}}
}

func (e *Executor) getProductDetails(ctx context.Context, ud *statex.UserData, args map[string]any) contractx.ToolOutcome {
	productID := NormalizeID(stringArg(args, "product_id"))
	product, err := e.store.Product(ctx, productID)
	if err != nil {
		return storeFailure(err, fmt.Sprintf("Product %s not found", productID))
	}

	ud.CurrentProductID = productID
	return contractx.ToolOutcome{Result: map[string]any{
		"product_id":  productID,
		"name":        product.Name,
		"description": product.Description,
		"price":       product.Price,
		"category":    product.Category,
		"in_stock":    product.InStock,
	}}
}

func (e *Executor) addToWishlist(ctx context.Context, ud *statex.UserData, args map[string]any) contractx.ToolOutcome {
	userID := NormalizeID(stringArg(args, "user_id"))
	productID := NormalizeID(stringArg(args, "product_id"))

	product, err := e.store.Product(ctx, productID)
	if err != nil {
		return storeFailure(err, fmt.Sprintf("Product %s not found", productID))
	}

	if err := e.store.AddToWishlist(ctx, userID, productID); err != nil {
		return storeFailure(err, fmt.Sprintf("Failed to add product %s to wishlist for user %s", productID, userID))
	}

	ud.UserID = userID
	ud.CurrentProductID = productID
	return contractx.ToolOutcome{Result: fmt.Sprintf("Product %s (%s) added to wishlist for user %s", productID, product.Name, userID)}
}
