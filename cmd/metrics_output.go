package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	sim "github.com/inference-sim/fleetsim/sim"
)

// writeMetrics gathers m through a private registry and writes it in the
// Prometheus text exposition format.
func writeMetrics(w io.Writer, m *sim.Metrics) error {
	registry := prometheus.NewRegistry()
	if err := registry.Register(m); err != nil {
		return fmt.Errorf("registering metrics: %w", err)
	}
	families, err := registry.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("writing metric family %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

func writeMetricsFile(path string, m *sim.Metrics) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating metrics file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing metrics file: %w", cerr)
		}
	}()
	return writeMetrics(f, m)
}
