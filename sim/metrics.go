// Tracks run-wide counters: dispatched events per action, retired processes,
// and what was left pending when the run stopped.

package sim

import (
	"fmt"
	"io"
	"slices"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics aggregates statistics about a simulation run for final reporting.
// It also implements prometheus.Collector so a run can be exported in the
// Prometheus text format.
type Metrics struct {
	DispatchedEvents int            // Number of events popped and reported
	RetiredProcesses int            // Number of processes that reported Done
	PendingEvents    int            // Events left in the queue at termination
	SimEndedTime     int64          // Clock at termination (in ticks)
	ActionCounts     map[Action]int // Dispatched events per action label
	Reason           TerminalReason // Why the run stopped
}

// NewMetrics creates an empty Metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		ActionCounts: make(map[Action]int),
	}
}

func (m *Metrics) recordDispatch(e Event) {
	m.DispatchedEvents++
	m.ActionCounts[e.Action]++
}

func (m *Metrics) recordRetirement() {
	m.RetiredProcesses++
}

func (m *Metrics) finalize(report *RunReport) {
	m.PendingEvents = report.Pending
	m.SimEndedTime = report.Clock
	m.Reason = report.Reason
}

// Print displays aggregated metrics at the end of the simulation.
func (m *Metrics) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Simulation Metrics ===")
	fmt.Fprintf(w, "Terminal Reason      : %s\n", m.Reason)
	fmt.Fprintf(w, "Dispatched Events    : %d\n", m.DispatchedEvents)
	fmt.Fprintf(w, "Retired Processes    : %d\n", m.RetiredProcesses)
	fmt.Fprintf(w, "Pending Events       : %d\n", m.PendingEvents)
	fmt.Fprintf(w, "Simulation Ended At  : %d ticks\n", m.SimEndedTime)
	for _, action := range m.sortedActions() {
		fmt.Fprintf(w, "  %-19s: %d\n", action, m.ActionCounts[action])
	}
}

func (m *Metrics) sortedActions() []Action {
	actions := make([]Action, 0, len(m.ActionCounts))
	for a := range m.ActionCounts {
		actions = append(actions, a)
	}
	slices.Sort(actions)
	return actions
}

var (
	dispatchedDesc = prometheus.NewDesc(
		"fleetsim_events_dispatched_total",
		"Total number of events dispatched by the scheduler.",
		[]string{"action"}, nil,
	)
	retiredDesc = prometheus.NewDesc(
		"fleetsim_processes_retired_total",
		"Total number of processes removed from the registry after reporting done.",
		nil, nil,
	)
	pendingDesc = prometheus.NewDesc(
		"fleetsim_events_pending",
		"Events left in the queue when the run stopped.",
		nil, nil,
	)
	clockDesc = prometheus.NewDesc(
		"fleetsim_clock_ticks",
		"Virtual clock when the run stopped.",
		nil, nil,
	)
)

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	ch <- dispatchedDesc
	ch <- retiredDesc
	ch <- pendingDesc
	ch <- clockDesc
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	for _, action := range m.sortedActions() {
		ch <- prometheus.MustNewConstMetric(dispatchedDesc, prometheus.CounterValue,
			float64(m.ActionCounts[action]), string(action))
	}
	ch <- prometheus.MustNewConstMetric(retiredDesc, prometheus.CounterValue, float64(m.RetiredProcesses))
	ch <- prometheus.MustNewConstMetric(pendingDesc, prometheus.GaugeValue, float64(m.PendingEvents))
	ch <- prometheus.MustNewConstMetric(clockDesc, prometheus.GaugeValue, float64(m.SimEndedTime))
}
