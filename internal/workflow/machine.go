// Package workflow models the multi-step experiment workflow (upload data,
// upload images, analyze, create campaign) as an explicit state machine
// with a central transition table, so illegal jumps (such as creating a
// campaign before any data exists) are rejected in one place instead of
// being gated by scattered boolean flags.
package workflow

import "fmt"

// State is a named step of the experiment workflow.
type State string

const (
	// StateAwaitingData is the initial state: no campaign data uploaded.
	StateAwaitingData State = "awaiting_data"
	// StateDataReady means campaign data is available; images are optional.
	StateDataReady State = "data_ready"
	// StateImagesReady means an image corpus has been attached.
	StateImagesReady State = "images_ready"
	// StateAnalyzing means an experiment submission is in flight.
	StateAnalyzing State = "analyzing"
	// StateResultsReady means a results bundle and summary are displayed.
	StateResultsReady State = "results_ready"
	// StateGenerating means a campaign generation is in flight.
	StateGenerating State = "generating"
	// StateDone means a generated campaign artifact is displayed.
	StateDone State = "done"
)

// transitions is the single source of truth for legal moves. Re-running an
// analysis from the results or done screens is allowed; everything not
// listed is illegal.
var transitions = map[State][]State{
	StateAwaitingData: {StateDataReady},
	StateDataReady:    {StateImagesReady, StateAnalyzing, StateAwaitingData},
	StateImagesReady:  {StateAnalyzing, StateDataReady, StateAwaitingData},
	StateAnalyzing:    {StateResultsReady, StateDataReady, StateImagesReady},
	StateResultsReady: {StateGenerating, StateAnalyzing, StateAwaitingData},
	StateGenerating:   {StateDone, StateResultsReady},
	StateDone:         {StateGenerating, StateResultsReady, StateAnalyzing, StateAwaitingData},
}

// TransitionError reports an illegal state transition.
type TransitionError struct {
	From State
	To   State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("workflow: illegal transition %s -> %s", e.From, e.To)
}

// Machine tracks the current workflow state. Machine is not goroutine
// safe; owners that share one across requests synchronize around it.
type Machine struct {
	state State
}

// NewMachine creates a machine in the initial state.
func NewMachine() *Machine {
	return &Machine{state: StateAwaitingData}
}

// Current returns the current state.
func (m *Machine) Current() State {
	return m.state
}

// Next returns the legal target states from the current state, in table
// order.
func (m *Machine) Next() []State {
	next := transitions[m.state]
	out := make([]State, len(next))
	copy(out, next)
	return out
}

// CanAdvance reports whether moving to the target state is legal.
func (m *Machine) CanAdvance(to State) bool {
	for _, next := range transitions[m.state] {
		if next == to {
			return true
		}
	}
	return false
}

// Advance moves to the target state, or returns a TransitionError if the
// move is not in the transition table.
func (m *Machine) Advance(to State) error {
	if !m.CanAdvance(to) {
		return &TransitionError{From: m.state, To: to}
	}
	m.state = to
	return nil
}

// Reset returns the machine to the initial state, discarding progress.
func (m *Machine) Reset() {
	m.state = StateAwaitingData
}
