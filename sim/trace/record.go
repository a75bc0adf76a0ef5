// Package trace provides dispatch-trace recording for simulation runs.
// This package has no dependencies on sim/; it stores pure data types.
package trace

// DispatchRecord captures one event popped from the queue and reported.
type DispatchRecord struct {
	Clock     int64
	ProcessID int
	Action    string
}

// RetirementRecord captures a process leaving the registry after it reported Done.
type RetirementRecord struct {
	Clock     int64
	ProcessID int
}
