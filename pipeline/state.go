package pipeline

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned for a state change the state machine does not allow
var ErrInvalidTransition = errors.New("invalid state transition")

// State is the lifecycle state of a run
type State int32

const (
	NotStarted State = iota
	Phase1Running
	Phase1Done
	Phase2Running
	Complete
	Failed
)

var stateNames = [...]string{
	NotStarted:    "not_started",
	Phase1Running: "phase1_running",
	Phase1Done:    "phase1_done",
	Phase2Running: "phase2_running",
	Complete:      "complete",
	Failed:        "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int32(s))
	}
	return stateNames[s]
}

// MarshalText implements encoding.TextMarshaler
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Running reports whether a stage of the run may be executing
func (s State) Running() bool {
	return s == Phase1Running || s == Phase2Running
}

// Terminal reports whether the run is over
func (s State) Terminal() bool {
	return s == Complete || s == Failed
}

var transitions = map[State][]State{
	NotStarted:    {Phase1Running},
	Phase1Running: {Phase1Done, Failed},
	Phase1Done:    {Phase2Running, Failed},
	Phase2Running: {Complete, Failed},
}

// CanTransition reports whether the state machine allows moving from s to to
func (s State) CanTransition(to State) bool {
	for _, v := range transitions[s] {
		if v == to {
			return true
		}
	}
	return false
}

// Phase groups stages sharing a dependency boundary
type Phase int

const (
	Phase1 Phase = iota + 1
	Phase2
)

// running returns the state of a run while stages of phase p execute
func (p Phase) running() State {
	if p == Phase2 {
		return Phase2Running
	}
	return Phase1Running
}
