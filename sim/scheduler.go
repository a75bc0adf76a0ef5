// sim/scheduler.go
package sim

import (
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/fleetsim/sim/trace"
)

// SchedulerConfig groups the scheduler's collaborators.
type SchedulerConfig struct {
	// Delay computes the gap between an event and the next event of the same process. Required.
	Delay DelayPolicy
	// Trace, when enabled, receives every dispatch and retirement. Optional.
	Trace *trace.SimulationTrace
	// Metrics receives run-wide counters. Optional.
	Metrics *Metrics
}

// Scheduler owns the virtual clock, the event queue and the process registry,
// and drives the simulation loop. It is single-use: create one per run.
//
// Thread-safety: NOT thread-safe. Processes are interleaved on one goroutine
// through synchronous Start/Resume calls.
type Scheduler struct {
	clock    int64
	queue    *EventQueue
	registry map[int]Process
	delay    DelayPolicy
	trace    *trace.SimulationTrace
	metrics  *Metrics
	hasRun   bool
}

// NewScheduler creates a Scheduler with an empty registry.
// Panics if cfg.Delay is nil.
func NewScheduler(cfg SchedulerConfig) *Scheduler {
	if cfg.Delay == nil {
		panic("NewScheduler: Delay policy must not be nil")
	}
	return &Scheduler{
		queue:    NewEventQueue(),
		registry: make(map[int]Process),
		delay:    cfg.Delay,
		trace:    cfg.Trace,
		metrics:  cfg.Metrics,
	}
}

// Register adds a process before the run starts.
func (s *Scheduler) Register(p Process) error {
	if s.hasRun {
		return fmt.Errorf("register process %d after run: %w", p.ID(), ErrInvalidState)
	}
	if _, exists := s.registry[p.ID()]; exists {
		return fmt.Errorf("register process %d: %w", p.ID(), ErrDuplicateID)
	}
	s.registry[p.ID()] = p
	return nil
}

// Clock returns the time of the most recently dispatched event.
func (s *Scheduler) Clock() int64 {
	return s.clock
}

// Registered returns the number of processes that have not yet reported Done.
func (s *Scheduler) Registered() int {
	return len(s.registry)
}

// Run executes the simulation until the queue drains (EndOfEvents) or the
// earliest pending event lies beyond endTime (EndOfBudget). The undispatched
// queue is left untouched and only its size is reported.
// Panics if called more than once.
func (s *Scheduler) Run(endTime int64) (*RunReport, error) {
	if s.hasRun {
		panic("Scheduler.Run() called more than once")
	}
	s.hasRun = true

	report := &RunReport{Events: make([]Event, 0)}

	// 1. Seed the queue with every process's first event, ascending by ID
	for _, id := range slices.Sorted(maps.Keys(s.registry)) {
		first, err := s.registry[id].Start()
		if err != nil {
			return nil, err
		}
		s.queue.Schedule(first)
	}

	// 2. Dispatch loop
	for {
		next, ok := s.queue.Peek()
		if !ok {
			report.Reason = EndOfEvents
			logrus.Infof("[tick %07d] *** end of events ***", s.clock)
			break
		}
		if next.Time > endTime {
			report.Reason = EndOfBudget
			report.Pending = s.queue.Len()
			logrus.Infof("[tick %07d] *** end of simulation time: %d events pending ***", s.clock, report.Pending)
			break
		}

		ev, err := s.queue.PopNext()
		if err != nil {
			return nil, err
		}
		s.clock = ev.Time
		s.dispatch(report, ev)

		delay := s.delay(s.clock)
		if delay > 0 && s.clock > math.MaxInt64-delay {
			return nil, fmt.Errorf("process %d: next event at %d + %d overflows the clock: %w",
				ev.ProcessID, s.clock, delay, ErrInvalidState)
		}
		outcome, err := s.registry[ev.ProcessID].Resume(s.clock + delay)
		if err != nil {
			return nil, err
		}
		if outcome.Done {
			s.retire(report, ev.ProcessID)
			continue
		}
		s.queue.Schedule(outcome.Event)
	}

	report.Clock = s.clock
	if s.metrics != nil {
		s.metrics.finalize(report)
	}
	return report, nil
}

func (s *Scheduler) dispatch(report *RunReport, ev Event) {
	logrus.Infof("[tick %07d] process %d: %s", s.clock, ev.ProcessID, ev.Action)
	report.Events = append(report.Events, ev)
	if s.trace.Enabled() {
		s.trace.RecordDispatch(trace.DispatchRecord{Clock: ev.Time, ProcessID: ev.ProcessID, Action: string(ev.Action)})
	}
	if s.metrics != nil {
		s.metrics.recordDispatch(ev)
	}
}

// retire removes a finished process permanently; it is never re-added.
func (s *Scheduler) retire(report *RunReport, id int) {
	logrus.Debugf("[tick %07d] process %d done, deregistered", s.clock, id)
	delete(s.registry, id)
	report.Retired = append(report.Retired, id)
	if s.trace.Enabled() {
		s.trace.RecordRetirement(trace.RetirementRecord{Clock: s.clock, ProcessID: id})
	}
	if s.metrics != nil {
		s.metrics.recordRetirement()
	}
}
