package workflow

// State represents a stage of one export invocation
type State string

const (
	StateIdle       State = "IDLE"
	StateBuilding   State = "BUILDING"
	StateRendering  State = "RENDERING"
	StateAssembling State = "ASSEMBLING"
	StateDelivering State = "DELIVERING"
	StateDone       State = "DONE"
	StateFailed     State = "FAILED"
)

var validStates = map[State]bool{
	StateIdle:       true,
	StateBuilding:   true,
	StateRendering:  true,
	StateAssembling: true,
	StateDelivering: true,
	StateDone:       true,
	StateFailed:     true,
}

var terminalStates = map[State]bool{
	StateDone:   true,
	StateFailed: true,
}

// IsTerminal returns true if the state is a terminal state (no further transitions allowed)
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is a valid export state
func (s State) IsValid() bool {
	return validStates[s]
}
