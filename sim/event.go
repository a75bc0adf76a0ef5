package sim

import "fmt"

// Action labels what happened at an Event. The scheduler never interprets it;
// only processes assign meaning to their own actions.
type Action string

// Taxi actions, in the order a TaxiProcess emits them.
const (
	ActionLeaveGarage Action = "leave garage"
	ActionPickUp      Action = "pick up passenger"
	ActionDropOff     Action = "drop off passenger"
	ActionGoHome      Action = "going home"
)

// Event is one state transition of one process at a simulated time (in ticks).
// Events are values; nothing mutates an Event after it is produced.
type Event struct {
	Time      int64
	ProcessID int
	Action    Action
}

// Less reports whether e must be dispatched before other.
// Order by: time → process ID. Action never participates.
func (e Event) Less(other Event) bool {
	if e.Time != other.Time {
		return e.Time < other.Time
	}
	return e.ProcessID < other.ProcessID
}

// String renders the event as a trace line: "time, processId, action".
func (e Event) String() string {
	return fmt.Sprintf("%d, %d, %s", e.Time, e.ProcessID, e.Action)
}
