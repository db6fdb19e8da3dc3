// Package metrics collects counters for one batch run and writes them in the
// Prometheus text format for the node-exporter textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus counters and histograms for a batch run.
type Metrics struct {
	registry         *prometheus.Registry
	replaysProcessed prometheus.Counter
	replaysFailed    prometheus.Counter
	playersScored    prometheus.Counter
	camerasSkipped   prometheus.Counter
	parseSeconds     prometheus.Histogram
}

// New creates and registers the run metrics on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	replaysProcessed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ballcam_replays_processed_total",
		Help: "Total number of replays analyzed successfully",
	})
	replaysFailed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ballcam_replays_failed_total",
		Help: "Total number of replays that could not be analyzed",
	})
	playersScored := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ballcam_players_scored_total",
		Help: "Total number of player results produced",
	})
	camerasSkipped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ballcam_cameras_skipped_total",
		Help: "Camera lifetimes that could not be attributed to a player",
	})
	parseSeconds := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ballcam_replay_parse_seconds",
		Help:    "Time spent decoding and analyzing one replay",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
	})

	registry.MustRegister(
		replaysProcessed,
		replaysFailed,
		playersScored,
		camerasSkipped,
		parseSeconds,
	)

	return &Metrics{
		registry:         registry,
		replaysProcessed: replaysProcessed,
		replaysFailed:    replaysFailed,
		playersScored:    playersScored,
		camerasSkipped:   camerasSkipped,
		parseSeconds:     parseSeconds,
	}
}

// ObserveReplay records the outcome of one replay.
func (m *Metrics) ObserveReplay(took time.Duration, players, skipped int, err error) {
	m.parseSeconds.Observe(took.Seconds())
	if err != nil {
		m.replaysFailed.Inc()
		return
	}
	m.replaysProcessed.Inc()
	m.playersScored.Add(float64(players))
	m.camerasSkipped.Add(float64(skipped))
}

// Registry returns the registry holding the run metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the current values to path atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
