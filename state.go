package parsim

import (
	"fmt"
)

// State is the lifecycle stage of a Simulation.
type State uint8

const (
	Uninitialized State = iota
	Initialized
	Running
	Completed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "Uninitialized"
	case Initialized:
		return "Initialized"
	case Running:
		return "Running"
	case Completed:
		return "Completed"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// IsTerminal reports whether no further transitions are possible from s.
func (s State) IsTerminal() bool { return s == Completed }

func isAllowedTransition(from, to State) bool {
	switch from {
	case Uninitialized:
		return to == Initialized
	case Initialized:
		// A zero-step run completes without ever running.
		return to == Running || to == Completed
	case Running:
		return to == Completed
	default:
		return false
	}
}

func (sim *Simulation) transition(to State) error {
	if !isAllowedTransition(sim.state, to) {
		return fmt.Errorf(
			"Disallowed simulation transition: %s -> %s.", sim.state, to,
		)
	}
	sim.state = to
	return nil
}
