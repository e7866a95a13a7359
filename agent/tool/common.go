package tool

import (
	"context"
	"errors"
	"fmt"

	contractx "github.com/cartup/cartup-agent/agent/contract"
	statex "github.com/cartup/cartup-agent/agent/state"
	storex "github.com/cartup/cartup-agent/agent/store"
)

func errorsIsNotFound(err error) bool {
	return errors.Is(err, storex.ErrNotFound)
}

// Common state-setting tools, declared by every agent.
func (e *Executor) registerCommon() {
	e.add(contractx.ToolSpec{
		Name:        ToolSetUser,
		Description: "Attach a known user_id to the session (simulates auth / caller lookup).",
		Parameters: objectSchema(map[string]any{
			"user_id": stringProp("The authenticated/assumed user id (e.g., u101)"),
		}, "user_id"),
	}, e.setUser)

	e.add(contractx.ToolSpec{
		Name:        ToolSetCurrentOrder,
		Description: "Set the focal order id for follow-up queries (track/modify).",
		Parameters: objectSchema(map[string]any{
			"order_id": stringProp("Order id to focus on (e.g., o302)"),
		}, "order_id"),
	}, e.setCurrentOrder)

	e.add(contractx.ToolSpec{
		Name:        ToolSetLanguage,
		Description: "Set the preferred language for the conversation session.",
		Parameters: objectSchema(map[string]any{
			"language": stringProp("Language code: 'en-IN' for English or 'bn-BD' for Bangladesh Bengali"),
		}, "language"),
	}, e.setLanguage)
}

func (e *Executor) setUser(_ context.Context, ud *statex.UserData, args map[string]any) contractx.ToolOutcome {
	userID := NormalizeID(stringArg(args, "user_id"))
	if userID == "" {
		return contractx.ToolOutcome{Failure: "user_id is required"}
	}
	ud.UserID = userID
	return contractx.ToolOutcome{Result: fmt.Sprintf("User set to %s", userID)}
}

func (e *Executor) setCurrentOrder(_ context.Context, ud *statex.UserData, args map[string]any) contractx.ToolOutcome {
	orderID := NormalizeID(stringArg(args, "order_id"))
	if orderID == "" {
		return contractx.ToolOutcome{Failure: "order_id is required"}
	}
	ud.CurrentOrderID = orderID
	return contractx.ToolOutcome{Result: fmt.Sprintf("Current order set to %s", orderID)}
}

func (e *Executor) setLanguage(_ context.Context, ud *statex.UserData, args map[string]any) contractx.ToolOutcome {
	lang, err := statex.ParseLanguage(stringArg(args, "language"))
	if err != nil {
		return contractx.ToolOutcome{Failure: "Invalid language code. Please use 'en-IN' for English or 'bn-BD' for Bangladesh Bengali."}
	}
	ud.Language = lang

	name := "English"
	if lang == statex.LanguageBengali {
		name = "Bengali (Bangladesh)"
	}
	return contractx.ToolOutcome{Result: fmt.Sprintf("Language set to %s (%s). All responses will now be in %s.", name, lang, name)}
}
