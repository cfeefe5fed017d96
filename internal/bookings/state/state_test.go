package state

import (
	"sudsy/pkg/model"
	"testing"
)

func TestHappyPathIsLegal(t *testing.T) {
	path := []string{
		model.StatusPlaced,
		model.StatusAwaitingMatch,
		model.StatusMatched,
		model.StatusOnTheWay,
		model.StatusArrived,
		model.StatusInProgress,
		model.StatusPendingReview,
		model.StatusApproved,
	}

	for i := 0; i < len(path)-1; i++ {
		if err := Transition(path[i], path[i+1]); err != nil {
			t.Errorf("expected %s -> %s to be legal: %v", path[i], path[i+1], err)
		}
	}
}

func TestCancellableFromAnyNonTerminal(t *testing.T) {
	nonTerminal := []string{
		model.StatusPlaced,
		model.StatusAwaitingMatch,
		model.StatusMatched,
		model.StatusOnTheWay,
		model.StatusArrived,
		model.StatusInProgress,
		model.StatusPendingReview,
	}
	for _, from := range nonTerminal {
		if !CanTransition(from, model.StatusCancelled) {
			t.Errorf("expected %s -> cancelled to be legal", from)
		}
	}

	for _, from := range []string{model.StatusApproved, model.StatusCancelled, model.StatusDisputed} {
		if CanTransition(from, model.StatusCancelled) {
			t.Errorf("terminal state %s must not be cancellable", from)
		}
	}
}

func TestDisputedOnlyFromPendingReview(t *testing.T) {
	if !CanTransition(model.StatusPendingReview, model.StatusDisputed) {
		t.Error("expected completed_pending_approval -> disputed to be legal")
	}

	for from := range map[string]bool{
		model.StatusPlaced:        true,
		model.StatusAwaitingMatch: true,
		model.StatusMatched:       true,
		model.StatusOnTheWay:      true,
		model.StatusArrived:       true,
		model.StatusInProgress:    true,
		model.StatusApproved:      true,
	} {
		if CanTransition(from, model.StatusDisputed) {
			t.Errorf("%s -> disputed must be illegal", from)
		}
	}
}

func TestNoBackwardsTransitions(t *testing.T) {
	backwards := [][2]string{
		{model.StatusMatched, model.StatusAwaitingMatch},
		{model.StatusOnTheWay, model.StatusMatched},
		{model.StatusApproved, model.StatusPendingReview},
		{model.StatusInProgress, model.StatusArrived},
	}
	for _, edge := range backwards {
		if CanTransition(edge[0], edge[1]) {
			t.Errorf("%s -> %s must be illegal", edge[0], edge[1])
		}
	}
}

func TestNoSkippingStates(t *testing.T) {
	if CanTransition(model.StatusAwaitingMatch, model.StatusInProgress) {
		t.Error("awaiting_match -> in_progress must be illegal")
	}
	if CanTransition(model.StatusPlaced, model.StatusMatched) {
		t.Error("placed -> matched must be illegal")
	}
}

func TestUnknownStatus(t *testing.T) {
	if err := Transition("teleporting", model.StatusMatched); err == nil {
		t.Error("expected error for unknown source status")
	}
	if err := Transition(model.StatusPlaced, "teleporting"); err == nil {
		t.Error("expected error for unknown target status")
	}
	if IsValid("") {
		t.Error("empty status must be invalid")
	}
}

func TestTerminalStates(t *testing.T) {
	for _, status := range []string{model.StatusApproved, model.StatusCancelled, model.StatusDisputed} {
		if !IsTerminal(status) {
			t.Errorf("%s must be terminal", status)
		}
		if len(transitions[status]) != 0 {
			t.Errorf("%s must have no outgoing edges", status)
		}
	}
	if IsTerminal(model.StatusMatched) {
		t.Error("matched must not be terminal")
	}
}
