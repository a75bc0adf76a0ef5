// Defines the Process contract and the TaxiProcess state machine that drives
// one taxi through leave → (pick up → drop off) × trips → go home.

package sim

import "fmt"

// Process is a resumable simulated entity. It owns no scheduling logic:
// given the current time it only decides what its next event is.
type Process interface {
	// ID returns the process identity; it doubles as the queue tie-breaker.
	ID() int
	// Start returns the first event. It must be called exactly once, before Resume.
	Start() (Event, error)
	// Resume advances the process one step. The returned event carries inputTime
	// as its time, or Done is set once the process has nothing left to emit.
	Resume(inputTime int64) (Outcome, error)
}

// Outcome is the result of Process.Resume: either the next event or Done.
type Outcome struct {
	Event Event
	Done  bool
}

// Phase represents where a taxi is in its shift.
// Phases only move forward.
type Phase string

const (
	PhaseNotStarted      Phase = "not_started"
	PhaseAwaitingPickup  Phase = "awaiting_pickup"
	PhaseAwaitingDropoff Phase = "awaiting_dropoff"
	PhaseAwaitingReturn  Phase = "awaiting_return"
	PhaseReturned        Phase = "returned"
	PhaseDone            Phase = "done"
)

// ProcessState is the mutable record owned by a TaxiProcess.
type ProcessState struct {
	ID             int
	RemainingTrips int
	Phase          Phase
	LastEventTime  int64 // time of the most recently emitted event
}

// TaxiProcess emits exactly 2*trips+2 events, then reports Done.
type TaxiProcess struct {
	state     ProcessState
	startTime int64
}

// NewTaxiProcess creates a taxi that leaves the garage at startTime and serves trips passengers.
// Panics if trips or startTime is negative.
func NewTaxiProcess(id, trips int, startTime int64) *TaxiProcess {
	if trips < 0 {
		panic(fmt.Sprintf("NewTaxiProcess: trips must be >= 0, got %d", trips))
	}
	if startTime < 0 {
		panic(fmt.Sprintf("NewTaxiProcess: startTime must be >= 0, got %d", startTime))
	}
	return &TaxiProcess{
		state: ProcessState{
			ID:             id,
			RemainingTrips: trips,
			Phase:          PhaseNotStarted,
		},
		startTime: startTime,
	}
}

// ID returns the taxi's identity.
func (p *TaxiProcess) ID() int {
	return p.state.ID
}

// State returns a copy of the taxi's current state.
func (p *TaxiProcess) State() ProcessState {
	return p.state
}

// Start emits the "leave garage" event at the configured start time.
func (p *TaxiProcess) Start() (Event, error) {
	if p.state.Phase != PhaseNotStarted {
		return Event{}, fmt.Errorf("taxi %d: start in phase %s: %w", p.state.ID, p.state.Phase, ErrInvalidState)
	}
	if p.state.RemainingTrips > 0 {
		p.state.Phase = PhaseAwaitingPickup
	} else {
		p.state.Phase = PhaseAwaitingReturn
	}
	return p.emit(p.startTime, ActionLeaveGarage), nil
}

// Resume is a pure transition over the current phase and inputTime.
func (p *TaxiProcess) Resume(inputTime int64) (Outcome, error) {
	switch p.state.Phase {
	case PhaseNotStarted, PhaseDone:
		return Outcome{}, fmt.Errorf("taxi %d: resume in phase %s: %w", p.state.ID, p.state.Phase, ErrInvalidState)
	case PhaseReturned:
		p.state.Phase = PhaseDone
		return Outcome{Done: true}, nil
	}

	if inputTime < p.state.LastEventTime {
		return Outcome{}, fmt.Errorf("taxi %d: resume at %d before last event at %d: %w",
			p.state.ID, inputTime, p.state.LastEventTime, ErrInvalidState)
	}

	var action Action
	switch p.state.Phase {
	case PhaseAwaitingPickup:
		action = ActionPickUp
		p.state.Phase = PhaseAwaitingDropoff
	case PhaseAwaitingDropoff:
		action = ActionDropOff
		p.state.RemainingTrips--
		if p.state.RemainingTrips > 0 {
			p.state.Phase = PhaseAwaitingPickup
		} else {
			p.state.Phase = PhaseAwaitingReturn
		}
	case PhaseAwaitingReturn:
		action = ActionGoHome
		p.state.Phase = PhaseReturned
	}
	return Outcome{Event: p.emit(inputTime, action)}, nil
}

func (p *TaxiProcess) emit(t int64, action Action) Event {
	p.state.LastEventTime = t
	return Event{Time: t, ProcessID: p.state.ID, Action: action}
}
