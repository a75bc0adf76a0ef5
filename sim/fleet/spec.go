// Package fleet loads, validates and synthesizes taxi fleet specifications
// and turns them into processes and a delay policy for the sim scheduler.
package fleet

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/inference-sim/fleetsim/sim"
)

// Spec is the top-level fleet configuration.
// Loaded from YAML via LoadSpec(path).
type Spec struct {
	Version string     `yaml:"version"`
	Seed    int64      `yaml:"seed"`
	EndTime *int64     `yaml:"end_time,omitempty"` // nil = unlimited (run until events drain)
	Delay   DelaySpec  `yaml:"delay"`
	Taxis   []TaxiSpec `yaml:"taxis"`
}

// TaxiSpec registers one taxi: the only per-process configuration surface.
type TaxiSpec struct {
	ID        int   `yaml:"id"`
	Trips     int   `yaml:"trips"`
	StartTime int64 `yaml:"start_time"`
}

// LoadSpec reads and parses a YAML fleet specification file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadSpec(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fleet spec: %w", err)
	}
	return ParseSpec(data)
}

// ParseSpec parses a YAML fleet specification from memory.
func ParseSpec(data []byte) (*Spec, error) {
	var spec Spec
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil {
		return nil, fmt.Errorf("parsing fleet spec: %w", err)
	}
	if spec.Version == "" {
		spec.Version = "1"
	}
	return &spec, nil
}

// Validate checks that all fields in the spec are valid.
func (s *Spec) Validate() error {
	if s.Version != "1" {
		return fmt.Errorf("unsupported fleet spec version %q; valid: 1", s.Version)
	}
	if s.EndTime != nil && *s.EndTime < 0 {
		return fmt.Errorf("end_time must be non-negative, got %d", *s.EndTime)
	}
	if len(s.Taxis) == 0 {
		logrus.Warn("fleet spec has no taxis; the run will end immediately")
	}
	seen := make(map[int]int, len(s.Taxis))
	for i, t := range s.Taxis {
		prefix := fmt.Sprintf("taxis[%d]", i)
		if prev, dup := seen[t.ID]; dup {
			return fmt.Errorf("%s: id %d already used by taxis[%d]", prefix, t.ID, prev)
		}
		seen[t.ID] = i
		if t.Trips < 0 {
			return fmt.Errorf("%s: trips must be non-negative, got %d", prefix, t.Trips)
		}
		if t.StartTime < 0 {
			return fmt.Errorf("%s: start_time must be non-negative, got %d", prefix, t.StartTime)
		}
	}
	if _, err := s.Delay.decode(); err != nil {
		return fmt.Errorf("delay: %w", err)
	}
	return nil
}

// Horizon returns the end time to pass to Scheduler.Run. An absent end_time
// means unlimited; an explicit 0 dispatches only the events at time 0.
func (s *Spec) Horizon() int64 {
	if s.EndTime == nil {
		return math.MaxInt64
	}
	return *s.EndTime
}

// Processes builds one TaxiProcess per taxi, in spec order.
// Call Validate first: invalid taxis make the constructor panic.
func (s *Spec) Processes() []sim.Process {
	procs := make([]sim.Process, len(s.Taxis))
	for i, t := range s.Taxis {
		procs[i] = sim.NewTaxiProcess(t.ID, t.Trips, t.StartTime)
	}
	return procs
}

// TotalEvents returns how many events the fleet emits if nothing truncates the run.
func (s *Spec) TotalEvents() int {
	total := 0
	for _, t := range s.Taxis {
		total += 2*t.Trips + 2
	}
	return total
}
