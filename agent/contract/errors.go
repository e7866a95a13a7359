package contract

import "errors"

var (
	// ErrUnknownAgent marks a transfer directive naming an unregistered
	// agent. This is a configuration bug and terminates the session; it is
	// never downgraded into a default agent.
	ErrUnknownAgent = errors.New("unknown agent")

	ErrModelInvoke = errors.New("model invoke failed")
	ErrValidation  = errors.New("validation failed")
)
