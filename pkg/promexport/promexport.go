// Package promexport writes check results in the Prometheus text format so
// node_exporter's textfile collector can pick them up after a CI run.
package promexport

import (
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vertti/dripcheck/pkg/check"
)

// Registry builds a registry holding one sample per result plus totals.
// suite labels every series, e.g. "health" or "ml".
func Registry(suite string, results []check.Result) (*prometheus.Registry, error) {
	reg := prometheus.NewRegistry()

	success := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name:        "drip_check_success",
		Help:        "Whether the check passed (1) or failed (0).",
		ConstLabels: prometheus.Labels{"suite": suite},
	}, []string{"check", "number"})
	duration := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name:        "drip_check_duration_seconds",
		Help:        "Wall time of the check.",
		ConstLabels: prometheus.Labels{"suite": suite},
	}, []string{"check", "number"})
	total := prometheus.NewGauge(prometheus.GaugeOpts{
		Name:        "drip_checks_total",
		Help:        "Number of checks executed.",
		ConstLabels: prometheus.Labels{"suite": suite},
	})
	failed := prometheus.NewGauge(prometheus.GaugeOpts{
		Name:        "drip_checks_failed",
		Help:        "Number of checks that failed.",
		ConstLabels: prometheus.Labels{"suite": suite},
	})

	for _, c := range []prometheus.Collector{success, duration, total, failed} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register collector: %w", err)
		}
	}

	for _, r := range results {
		labels := prometheus.Labels{"check": r.Name, "number": strconv.Itoa(r.Number)}
		v := 0.0
		if r.OK() {
			v = 1
		}
		success.With(labels).Set(v)
		duration.With(labels).Set(r.Duration.Seconds())
	}

	passedCount, failedCount := check.Summary(results)
	total.Set(float64(passedCount + failedCount))
	failed.Set(float64(failedCount))

	return reg, nil
}

// WriteFile atomically writes the results to path.
func WriteFile(path, suite string, results []check.Result) error {
	reg, err := Registry(suite, results)
	if err != nil {
		return err
	}
	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	return nil
}
