package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalDispatched     int
	RetiredCount        int
	LastClock           int64
	UniqueProcesses     int
	ProcessDistribution map[int]int    // process ID → count of dispatched events
	ActionDistribution  map[string]int // action → count of dispatched events
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		ProcessDistribution: make(map[int]int),
		ActionDistribution:  make(map[string]int),
	}
	if st == nil {
		return summary
	}

	summary.TotalDispatched = len(st.Dispatches)
	for _, d := range st.Dispatches {
		summary.ProcessDistribution[d.ProcessID]++
		summary.ActionDistribution[d.Action]++
		if d.Clock > summary.LastClock {
			summary.LastClock = d.Clock
		}
	}
	summary.RetiredCount = len(st.Retirements)
	summary.UniqueProcesses = len(summary.ProcessDistribution)

	return summary
}
