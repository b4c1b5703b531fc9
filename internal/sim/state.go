package sim

import "fmt"

// State is the tick loop's position within a frame.
type State int

const (
	Idle State = iota
	Resetting
	Assigning
	Updating
	Publishing
	Terminated
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Resetting:
		return "resetting"
	case Assigning:
		return "assigning"
	case Updating:
		return "updating"
	case Publishing:
		return "publishing"
	case Terminated:
		return "terminated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// StateObserver is notified on every state transition.
type StateObserver func(from, to State)
