package sim

import (
	"bytes"
	"errors"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/fleetsim/sim/trace"
)

type taxiParams struct {
	id    int
	trips int
	start int64
}

// classicFleet is the three-taxi fleet: 2, 4 and 6 trips leaving at 0, 5 and 10.
var classicFleet = []taxiParams{{0, 2, 0}, {1, 4, 5}, {2, 6, 10}}

func newTestScheduler(t *testing.T, delay DelayPolicy, fleet []taxiParams) *Scheduler {
	t.Helper()
	s := NewScheduler(SchedulerConfig{Delay: delay})
	for _, f := range fleet {
		require.NoError(t, s.Register(NewTaxiProcess(f.id, f.trips, f.start)))
	}
	return s
}

func assertOrdered(t *testing.T, events []Event) {
	t.Helper()
	for i := 1; i < len(events); i++ {
		if events[i].Less(events[i-1]) {
			t.Fatalf("event %d (%v) dispatched after later event %v", i, events[i], events[i-1])
		}
	}
}

func TestScheduler_ClassicFleet_ConstantDelay(t *testing.T) {
	// GIVEN the classic fleet with a constant delay of 3
	s := newTestScheduler(t, ConstantDelay(3), classicFleet)

	// WHEN run with end time 50
	report, err := s.Run(50)
	require.NoError(t, err)

	// THEN every taxi emits 2n+2 events at start + 3*k, and nothing is left
	assert.Len(t, report.EventsFor(0), 6)
	assert.Len(t, report.EventsFor(1), 10)
	assert.Len(t, report.EventsFor(2), 14)
	assert.Len(t, report.Events, 30)
	for _, f := range classicFleet {
		for k, e := range report.EventsFor(f.id) {
			assert.Equal(t, f.start+3*int64(k), e.Time, "taxi %d step %d", f.id, k)
		}
	}
	assertOrdered(t, report.Events)

	// Last event is taxi 2 going home at 10 + 3*13 = 49 <= 50, so the queue drains
	assert.Equal(t, EndOfEvents, report.Reason)
	assert.Equal(t, 0, report.Pending)
	assert.Equal(t, int64(49), report.Clock)
	assert.Equal(t, []int{0, 1, 2}, report.Retired)
	assert.Equal(t, 0, s.Registered())
}

func TestScheduler_ClassicFleet_EndOfBudget(t *testing.T) {
	// GIVEN the classic fleet with a constant delay of 3
	s := newTestScheduler(t, ConstantDelay(3), classicFleet)

	// WHEN run with end time 40
	report, err := s.Run(40)
	require.NoError(t, err)

	// THEN taxi 2 stops after its event at 40; its event at 43 stays pending
	assert.Equal(t, EndOfBudget, report.Reason)
	assert.Equal(t, 1, report.Pending)
	assert.Len(t, report.Events, 27)
	assert.Len(t, report.EventsFor(2), 11)
	assert.Equal(t, int64(40), report.Clock)
	assert.Equal(t, int64(40), s.Clock())
	assert.Equal(t, []int{0, 1}, report.Retired)
	assert.Equal(t, 1, s.Registered())
}

func TestScheduler_PerProcessSequencing(t *testing.T) {
	// GIVEN a random fleet and random delays
	rng := rand.New(rand.NewSource(3))
	var fleet []taxiParams
	for i := 0; i < 8; i++ {
		fleet = append(fleet, taxiParams{id: i, trips: rng.Intn(6), start: int64(rng.Intn(20))})
	}
	s := newTestScheduler(t, UniformDelay(rand.New(rand.NewSource(11)), 1, 5), fleet)

	// WHEN run to completion
	report, err := s.Run(1 << 40)
	require.NoError(t, err)

	// THEN each taxi's events follow leave → (pick up → drop off) × n → go home
	for _, f := range fleet {
		var got []Action
		for _, e := range report.EventsFor(f.id) {
			got = append(got, e.Action)
		}
		want := []Action{ActionLeaveGarage}
		for i := 0; i < f.trips; i++ {
			want = append(want, ActionPickUp, ActionDropOff)
		}
		want = append(want, ActionGoHome)
		assert.Equal(t, want, got, "taxi %d", f.id)
	}
	assertOrdered(t, report.Events)
}

func TestScheduler_Conservation(t *testing.T) {
	// GIVEN fleets of various sizes and no end-time truncation
	for seed := int64(1); seed <= 5; seed++ {
		rng := rand.New(rand.NewSource(seed))
		var fleet []taxiParams
		want := 0
		for i := 0; i < 10; i++ {
			trips := rng.Intn(8)
			fleet = append(fleet, taxiParams{id: i * 3, trips: trips, start: int64(rng.Intn(50))})
			want += 2*trips + 2
		}
		s := newTestScheduler(t, UniformDelay(rand.New(rand.NewSource(seed)), 1, 5), fleet)

		// WHEN run
		report, err := s.Run(1 << 40)
		require.NoError(t, err)

		// THEN total dispatched = sum(2n+2) and all processes retired
		assert.Len(t, report.Events, want, "seed %d", seed)
		assert.Len(t, report.Retired, len(fleet), "seed %d", seed)
		assert.Equal(t, EndOfEvents, report.Reason)
	}
}

func TestScheduler_BudgetTruncation(t *testing.T) {
	// GIVEN the full, untruncated trace of the classic fleet
	full, err := newTestScheduler(t, ConstantDelay(3), classicFleet).Run(1 << 40)
	require.NoError(t, err)

	for k := 1; k <= len(full.Events); k++ {
		if k > 1 && full.Events[k-2].Time == full.Events[k-1].Time {
			continue // end time cannot split events sharing a time
		}
		// WHEN the end time lies just below the k-th earliest event
		endTime := full.Events[k-1].Time - 1
		report, err := newTestScheduler(t, ConstantDelay(3), classicFleet).Run(endTime)
		require.NoError(t, err)

		// THEN exactly k-1 events are dispatched and some remain pending
		assert.Equal(t, full.Events[:k-1], report.Events, "k=%d", k)
		assert.Equal(t, EndOfBudget, report.Reason, "k=%d", k)
		assert.Positive(t, report.Pending, "k=%d", k)
	}
}

func TestScheduler_NoProcesses_EndsImmediately(t *testing.T) {
	s := NewScheduler(SchedulerConfig{Delay: ConstantDelay(1)})

	report, err := s.Run(100)
	require.NoError(t, err)

	assert.Equal(t, EndOfEvents, report.Reason)
	assert.Empty(t, report.Events)
	assert.Equal(t, 0, report.Pending)
}

func TestScheduler_TieBreakByProcessID(t *testing.T) {
	// GIVEN two taxis with identical schedules, registered highest ID first
	s := newTestScheduler(t, ConstantDelay(2), []taxiParams{{5, 2, 0}, {3, 2, 0}})

	// WHEN run
	report, err := s.Run(100)
	require.NoError(t, err)

	// THEN at every shared time the smaller ID is dispatched first
	require.Len(t, report.Events, 12)
	for i := 0; i < len(report.Events); i += 2 {
		assert.Equal(t, report.Events[i].Time, report.Events[i+1].Time)
		assert.Equal(t, 3, report.Events[i].ProcessID)
		assert.Equal(t, 5, report.Events[i+1].ProcessID)
	}
}

func TestScheduler_SameSeed_IdenticalTrace(t *testing.T) {
	run := func(seed int64) []Event {
		rng := NewPartitionedRNG(NewSimulationKey(seed))
		s := newTestScheduler(t, UniformDelay(rng.ForSubsystem(SubsystemDelay), DefaultDelayMin, DefaultDelayMax), classicFleet)
		report, err := s.Run(50)
		require.NoError(t, err)
		return report.Events
	}

	assert.Equal(t, run(42), run(42))
	assertOrdered(t, run(7))
}

func TestScheduler_Register_DuplicateID(t *testing.T) {
	s := NewScheduler(SchedulerConfig{Delay: ConstantDelay(1)})
	require.NoError(t, s.Register(NewTaxiProcess(1, 1, 0)))

	err := s.Register(NewTaxiProcess(1, 3, 9))

	assert.True(t, errors.Is(err, ErrDuplicateID), "err = %v", err)
	assert.Equal(t, 1, s.Registered())
}

func TestScheduler_Register_AfterRun(t *testing.T) {
	s := NewScheduler(SchedulerConfig{Delay: ConstantDelay(1)})
	_, err := s.Run(10)
	require.NoError(t, err)

	err = s.Register(NewTaxiProcess(1, 1, 0))
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestScheduler_RunTwice_Panics(t *testing.T) {
	s := NewScheduler(SchedulerConfig{Delay: ConstantDelay(1)})
	_, err := s.Run(10)
	require.NoError(t, err)

	assert.Panics(t, func() { _, _ = s.Run(10) })
}

func TestNewScheduler_NilDelay_Panics(t *testing.T) {
	assert.Panics(t, func() { NewScheduler(SchedulerConfig{}) })
}

func TestScheduler_NegativeDelay_PropagatesInvalidState(t *testing.T) {
	// GIVEN a delay policy that sends processes back in time
	s := newTestScheduler(t, func(int64) int64 { return -10 }, []taxiParams{{0, 1, 20}})

	// WHEN run
	_, err := s.Run(100)

	// THEN the contract violation surfaces immediately
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestScheduler_ClockOverflow_ReportsClearError(t *testing.T) {
	// GIVEN a taxi leaving just before the end of representable time
	s := newTestScheduler(t, ConstantDelay(3), []taxiParams{{0, 1, math.MaxInt64 - 1}})

	// WHEN run without an end time
	_, err := s.Run(math.MaxInt64)

	// THEN the overflow is named instead of surfacing as a backward-time resume
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Contains(t, err.Error(), "overflows the clock")
}

// startedProcess fails Start because it was already started elsewhere.
type startedProcess struct{ id int }

func (p startedProcess) ID() int { return p.id }
func (p startedProcess) Start() (Event, error) {
	return Event{}, ErrInvalidState
}
func (p startedProcess) Resume(int64) (Outcome, error) {
	return Outcome{}, ErrInvalidState
}

func TestScheduler_StartError_Propagates(t *testing.T) {
	s := NewScheduler(SchedulerConfig{Delay: ConstantDelay(1)})
	require.NoError(t, s.Register(startedProcess{id: 4}))

	report, err := s.Run(10)

	assert.Nil(t, report)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestScheduler_TraceAndMetrics(t *testing.T) {
	// GIVEN a scheduler with tracing and metrics
	st := trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevelEvents})
	m := NewMetrics()
	s := NewScheduler(SchedulerConfig{Delay: ConstantDelay(3), Trace: st, Metrics: m})
	for _, f := range classicFleet {
		require.NoError(t, s.Register(NewTaxiProcess(f.id, f.trips, f.start)))
	}

	// WHEN run with a budget that leaves taxi 2 unfinished
	report, err := s.Run(40)
	require.NoError(t, err)

	// THEN the trace mirrors the report
	require.Len(t, st.Dispatches, len(report.Events))
	assert.Equal(t, report.DispatchRecords(), st.Dispatches)
	require.Len(t, st.Retirements, 2)
	assert.Equal(t, trace.RetirementRecord{Clock: 15, ProcessID: 0}, st.Retirements[0])

	// AND metrics count what was dispatched and left behind
	assert.Equal(t, 27, m.DispatchedEvents)
	assert.Equal(t, 2, m.RetiredProcesses)
	assert.Equal(t, 1, m.PendingEvents)
	assert.Equal(t, int64(40), m.SimEndedTime)
	assert.Equal(t, EndOfBudget, m.Reason)
	assert.Equal(t, 3, m.ActionCounts[ActionLeaveGarage])
	assert.Equal(t, 2, m.ActionCounts[ActionGoHome])
}

func TestRunReport_WriteTrace(t *testing.T) {
	s := newTestScheduler(t, ConstantDelay(3), []taxiParams{{0, 1, 0}})
	report, err := s.Run(100)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, report.WriteTrace(&buf))

	want := strings.Join([]string{
		"0, 0, leave garage",
		"3, 0, pick up passenger",
		"6, 0, drop off passenger",
		"9, 0, going home",
	}, "\n") + "\n"
	assert.Equal(t, want, buf.String())
}
