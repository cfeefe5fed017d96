package state

import (
	"fmt"
	"sudsy/pkg/model"
)

// transitions is the complete lifecycle graph. Cancellation edges are
// added for every non-terminal state below; disputed is only reachable
// from the pending-approval review window.
var transitions = map[string][]string{
	model.StatusPlaced:        {model.StatusAwaitingMatch},
	model.StatusAwaitingMatch: {model.StatusMatched},
	model.StatusMatched:       {model.StatusOnTheWay},
	model.StatusOnTheWay:      {model.StatusArrived},
	model.StatusArrived:       {model.StatusInProgress},
	model.StatusInProgress:    {model.StatusPendingReview},
	model.StatusPendingReview: {model.StatusApproved, model.StatusDisputed},
	model.StatusApproved:      {},
	model.StatusCancelled:     {},
	model.StatusDisputed:      {},
}

var terminal = map[string]bool{
	model.StatusApproved:  true,
	model.StatusCancelled: true,
	model.StatusDisputed:  true,
}

// IsValid reports whether status is a known lifecycle state.
func IsValid(status string) bool {
	_, ok := transitions[status]
	return ok
}

// IsTerminal reports whether status ends the lifecycle.
func IsTerminal(status string) bool {
	return terminal[status]
}

// CanTransition reports whether from -> to is a legal edge.
func CanTransition(from, to string) bool {
	if !IsValid(from) || !IsValid(to) {
		return false
	}
	if to == model.StatusCancelled {
		return !IsTerminal(from)
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition validates the edge and returns a descriptive error for
// illegal moves. State only ever advances; going backwards requires
// cancelling and rebooking.
func Transition(from, to string) error {
	if !IsValid(to) {
		return fmt.Errorf("unknown booking status %q", to)
	}
	if !IsValid(from) {
		return fmt.Errorf("unknown booking status %q", from)
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("illegal booking transition %s -> %s", from, to)
	}
	return nil
}
