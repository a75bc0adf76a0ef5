package fleet

import (
	"fmt"
	"math"
	"math/rand"
)

// Classic returns the three-taxi fleet: taxi i leaves at 5*i and serves 2*(i+1) trips.
func Classic() *Spec {
	return &Spec{
		Version: "1",
		Seed:    42,
		Taxis: []TaxiSpec{
			{ID: 0, Trips: 2, StartTime: 0},
			{ID: 1, Trips: 4, StartTime: 5},
			{ID: 2, Trips: 6, StartTime: 10},
		},
	}
}

// Synthesize builds a random fleet of n taxis with IDs 0..n-1. Taxi i leaves
// at i*startSpacing and serves a uniformly drawn number of trips in [0, maxTrips].
// The delay policy is left empty (uniform default).
func Synthesize(rng *rand.Rand, n, maxTrips int, startSpacing int64) (*Spec, error) {
	if rng == nil {
		return nil, fmt.Errorf("fleet rng must not be nil")
	}
	if n < 0 {
		return nil, fmt.Errorf("taxi count must be non-negative, got %d", n)
	}
	if maxTrips < 0 || maxTrips >= math.MaxInt {
		return nil, fmt.Errorf("max trips must be in [0, %d), got %d", math.MaxInt, maxTrips)
	}
	if startSpacing < 0 {
		return nil, fmt.Errorf("start spacing must be non-negative, got %d", startSpacing)
	}
	if n > 1 && startSpacing > math.MaxInt64/int64(n-1) {
		return nil, fmt.Errorf("start spacing %d overflows start times for %d taxis", startSpacing, n)
	}
	spec := &Spec{Version: "1", Taxis: make([]TaxiSpec, n)}
	for i := range spec.Taxis {
		spec.Taxis[i] = TaxiSpec{
			ID:        i,
			Trips:     rng.Intn(maxTrips + 1),
			StartTime: int64(i) * startSpacing,
		}
	}
	return spec, nil
}
