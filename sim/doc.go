// Package sim provides the core discrete-event simulation engine for fleetsim.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - event.go: the immutable Event value and its (time, process ID) ordering
//   - process.go: the Process contract and the TaxiProcess state machine
//   - scheduler.go: the event loop, virtual clock, and termination policy
//
// # Architecture
//
// The scheduler never interprets actions and never decides timing on its own:
//   - Process: given a time, produces its next event or reports Done
//   - DelayPolicy: given the clock, produces the gap until a process's next event
//   - EventQueue: orders pending events, ties broken by ascending process ID
//
// Sub-packages:
//   - sim/trace/: dispatch trace recording and the line-oriented trace format
//   - sim/fleet/: YAML fleet specifications and random fleet synthesis
//
// Runs are reproducible: seed the delay policy from a PartitionedRNG and two
// runs with the same SimulationKey produce identical traces.
package sim
