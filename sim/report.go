package sim

import (
	"io"

	"github.com/inference-sim/fleetsim/sim/trace"
)

// TerminalReason says why Scheduler.Run stopped. Both values are normal outcomes.
type TerminalReason string

const (
	// EndOfEvents: the queue drained; every process reported Done.
	EndOfEvents TerminalReason = "end-of-events"
	// EndOfBudget: the earliest pending event lies beyond the end time.
	EndOfBudget TerminalReason = "end-of-budget"
)

func (r TerminalReason) String() string {
	return string(r)
}

// RunReport is the result of one Scheduler.Run.
type RunReport struct {
	Events  []Event        // Dispatched events, in dispatch order
	Reason  TerminalReason // Why the run stopped
	Pending int            // Queue size at termination; non-zero only for EndOfBudget
	Clock   int64          // Time of the last dispatched event
	Retired []int          // Process IDs in the order they reported Done
}

// EventsFor returns the dispatched events of one process, in dispatch order.
func (r *RunReport) EventsFor(processID int) []Event {
	var out []Event
	for _, e := range r.Events {
		if e.ProcessID == processID {
			out = append(out, e)
		}
	}
	return out
}

// DispatchRecords converts the dispatched events to trace records.
func (r *RunReport) DispatchRecords() []trace.DispatchRecord {
	records := make([]trace.DispatchRecord, len(r.Events))
	for i, e := range r.Events {
		records[i] = trace.DispatchRecord{Clock: e.Time, ProcessID: e.ProcessID, Action: string(e.Action)}
	}
	return records
}

// WriteTrace writes the line-oriented trace ("time, processId, action") of the run.
func (r *RunReport) WriteTrace(w io.Writer) error {
	return trace.WriteLines(w, r.DispatchRecords())
}
