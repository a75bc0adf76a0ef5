package sim

import (
	"fmt"
	"math"
	"math/rand"
)

// Default bounds (inclusive, in ticks) of the uniform delay between two
// consecutive events of the same process.
const (
	DefaultDelayMin int64 = 1
	DefaultDelayMax int64 = 5
)

// DelayPolicy computes how long after now a process's next event happens.
// Processes never choose their own timing; the scheduler asks the policy.
type DelayPolicy func(now int64) int64

// ConstantDelay returns a policy that always answers d.
// Panics if d is negative.
func ConstantDelay(d int64) DelayPolicy {
	if d < 0 {
		panic(fmt.Sprintf("ConstantDelay: delay must be >= 0, got %d", d))
	}
	return func(int64) int64 { return d }
}

// UniformDelay returns a policy drawing integers uniformly from [lo, hi].
// The rng is consumed once per call; pass a PartitionedRNG subsystem for reproducible runs.
// Panics if rng is nil, lo is negative, hi < lo, or the range holds more than MaxInt64 values.
func UniformDelay(rng *rand.Rand, lo, hi int64) DelayPolicy {
	if rng == nil {
		panic("UniformDelay: rng must not be nil")
	}
	if lo < 0 || hi < lo {
		panic(fmt.Sprintf("UniformDelay: invalid range [%d, %d]", lo, hi))
	}
	if hi-lo == math.MaxInt64 {
		panic(fmt.Sprintf("UniformDelay: range [%d, %d] too wide", lo, hi))
	}
	span := hi - lo + 1
	return func(int64) int64 {
		return lo + rng.Int63n(span)
	}
}
