package gateway

import (
	"fmt"

	"bookkeeping/internal/config"
	"bookkeeping/internal/core"
)

// ErrorPolicy decides whether an envelope is a rejection.
//
// The polarity of the backend's success flag is not settled, so both readings
// are available and the choice is configuration.
type ErrorPolicy func(env core.Envelope) bool

// SuccessFlagSet treats success == true as a rejection.
func SuccessFlagSet(env core.Envelope) bool {
	return env.Success
}

// SuccessFlagUnset treats success == false as a rejection.
func SuccessFlagUnset(env core.Envelope) bool {
	return !env.Success
}

// PolicyByName resolves a configured policy name.
func PolicyByName(name string) (ErrorPolicy, error) {
	switch name {
	case "", config.PolicySuccessFlagSet:
		return SuccessFlagSet, nil
	case config.PolicySuccessFlagUnset:
		return SuccessFlagUnset, nil
	default:
		return nil, fmt.Errorf("unknown error policy %q", name)
	}
}
