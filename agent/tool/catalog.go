package tool

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xeipuuv/gojsonschema"

	contractx "github.com/cartup/cartup-agent/agent/contract"
	statex "github.com/cartup/cartup-agent/agent/state"
	storex "github.com/cartup/cartup-agent/agent/store"
)

// Tool names. Transfer tools carry no domain logic; they only name a fixed
// target agent.
const (
	ToolSetUser         = "set_user"
	ToolSetCurrentOrder = "set_current_order"
	ToolSetLanguage     = "set_language"

	ToolGetOrderDetails       = "get_order_details"
	ToolGetUserOrders         = "get_user_orders"
	ToolUpdateDeliveryAddress = "update_delivery_address"

	ToolCreateTicket = "create_ticket"
	ToolTrackTicket  = "track_ticket"

	ToolInitiateReturn     = "initiate_return"
	ToolGetReturnStatus    = "get_return_status"
	ToolUpdateRefundStatus = "update_refund_status"

	ToolGetRecommendations = "get_recommendations"
	ToolGetProductDetails  = "get_product_details"
	ToolAddToWishlist      = "add_to_wishlist"

	ToolToRouter    = "to_router"
	ToolToOrder     = "to_order"
	ToolToTicket    = "to_ticket"
	ToolToReturns   = "to_returns"
	ToolToRecommend = "to_recommend"
)

// transferTargets maps each transfer tool to its fixed target.
var transferTargets = map[string]contractx.AgentName{
	ToolToRouter:    contractx.AgentRouter,
	ToolToOrder:     contractx.AgentOrder,
	ToolToTicket:    contractx.AgentTicket,
	ToolToReturns:   contractx.AgentReturns,
	ToolToRecommend: contractx.AgentRecommend,
}

// TransferTarget returns the fixed target of a transfer tool, if name is one.
func TransferTarget(name string) (contractx.AgentName, bool) {
	target, ok := transferTargets[name]
	return target, ok
}

// Handler executes one tool call against session state and the store. A
// handler never returns a Go error: everything below the runtime boundary is
// recovered into the outcome (failures are text the model can act on).
type Handler func(ctx context.Context, ud *statex.UserData, args map[string]any) contractx.ToolOutcome

type definition struct {
	spec    contractx.ToolSpec
	handler Handler
}

// Executor owns the tool catalog: specs, compiled argument schemas, and
// handlers, plus the per-agent declared tool sets that bound what each agent
// may call.
type Executor struct {
	store    storex.Store
	now      func() time.Time
	defs     map[string]definition
	schemas  map[string]*gojsonschema.Schema
	declared map[contractx.AgentName][]string
}

// NewExecutor builds the catalog and compiles one JSON schema per tool.
// declared maps each agent to its declared tool names; a name that is not in
// the catalog is a configuration error.
func NewExecutor(st storex.Store, declared map[contractx.AgentName][]string) (*Executor, error) {
	if st == nil {
		return nil, fmt.Errorf("%w: store is required", contractx.ErrValidation)
	}

	e := &Executor{
		store:    st,
		now:      time.Now,
		defs:     make(map[string]definition),
		schemas:  make(map[string]*gojsonschema.Schema),
		declared: make(map[contractx.AgentName][]string, len(declared)),
	}
	e.register()

	for agent, tools := range declared {
		names := make([]string, 0, len(tools))
		for _, name := range tools {
			if _, ok := e.defs[name]; !ok {
				return nil, fmt.Errorf("%w: agent=%s declares unknown tool %q", contractx.ErrValidation, agent, name)
			}
			names = append(names, name)
		}
		e.declared[agent] = names
	}

	for name, def := range e.defs {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(def.spec.Parameters))
		if err != nil {
			return nil, fmt.Errorf("compile schema for tool %s: %w", name, err)
		}
		e.schemas[name] = schema
	}

	return e, nil
}

// WithClock overrides the time source; tests use this for stable created_at
// dates.
func (e *Executor) WithClock(now func() time.Time) *Executor {
	if now != nil {
		e.now = now
	}
	return e
}

// SpecsFor returns the declared tool specs for an agent, in declaration
// order. This is the exact set advertised to the model.
func (e *Executor) SpecsFor(agent contractx.AgentName) []contractx.ToolSpec {
	names := e.declared[agent]
	specs := make([]contractx.ToolSpec, 0, len(names))
	for _, name := range names {
		specs = append(specs, e.defs[name].spec)
	}
	return specs
}

// Execute runs one tool call for the given agent. Unknown or undeclared
// tools, bad arguments, missing entities, and store failures all come back as
// recoverable outcomes; only the transfer path changes control flow.
func (e *Executor) Execute(ctx context.Context, agent contractx.AgentName, req contractx.ToolRequest, ud *statex.UserData) (outcome contractx.ToolOutcome) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("tool", req.Tool).Interface("panic", r).Msg("tool handler panicked")
			outcome = contractx.ToolOutcome{Failure: fmt.Sprintf("tool %s failed unexpectedly, please try again", req.Tool)}
		}
	}()

	if !e.allowed(agent, req.Tool) {
		return contractx.ToolOutcome{Failure: fmt.Sprintf("tool=%s is unavailable for agent=%s", req.Tool, agent)}
	}

	args := req.Args
	if args == nil {
		args = map[string]any{}
	}
	if failure := e.validateArgs(req.Tool, args); failure != "" {
		return contractx.ToolOutcome{Failure: failure}
	}

	out := e.defs[req.Tool].handler(ctx, ud, args)
	if !out.Failed() {
		ud.Touch(e.now())
	}

	log.Debug().
		Str("agent", string(agent)).
		Str("tool", req.Tool).
		Bool("failed", out.Failed()).
		Bool("transfer", out.Transfer != nil).
		Msg("tool executed")
	return out
}

func (e *Executor) allowed(agent contractx.AgentName, tool string) bool {
	for _, name := range e.declared[agent] {
		if name == tool {
			return true
		}
	}
	return false
}

func (e *Executor) validateArgs(tool string, args map[string]any) string {
	schema := e.schemas[tool]
	if schema == nil {
		return ""
	}
	result, err := schema.Validate(gojsonschema.NewGoLoader(args))
	if err != nil {
		return fmt.Sprintf("invalid arguments for %s: %v", tool, err)
	}
	if result.Valid() {
		return ""
	}
	reasons := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		reasons = append(reasons, desc.String())
	}
	return fmt.Sprintf("invalid arguments for %s: %s", tool, strings.Join(reasons, "; "))
}

func (e *Executor) register() {
	e.registerCommon()
	e.registerOrder()
	e.registerTicket()
	e.registerReturns()
	e.registerRecommend()
	e.registerTransfers()
}

func (e *Executor) add(spec contractx.ToolSpec, h Handler) {
	e.defs[spec.Name] = definition{spec: spec, handler: h}
}

func objectSchema(props map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func stringProp(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

func stringArg(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}

// storeFailure converts a store error into a recoverable outcome: missing
// entities get a precise message the model can relay, anything else gets a
// generic retry apology so external-dependency failures never escape as
// faults.
func storeFailure(err error, notFound string) contractx.ToolOutcome {
	if errorsIsNotFound(err) {
		return contractx.ToolOutcome{Failure: notFound}
	}
	log.Warn().Err(err).Msg("store call failed")
	return contractx.ToolOutcome{Failure: "The store is temporarily unavailable, please try again in a moment."}
}
