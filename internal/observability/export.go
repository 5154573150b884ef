// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package observability exports the metrics of a single command run.
//
// The accounts tool is short-lived, so metrics are never scraped from it.
// Instead a run writes them to a node_exporter textfile, pushes them to a
// Pushgateway, or both.
package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/samber/oops"
)

// Job is the Pushgateway job name for accounts runs.
const Job = "accounts"

// Target names where run metrics go. Empty fields are skipped.
type Target struct {
	Textfile string
	PushURL  string
}

// Enabled reports whether any export target is set.
func (t Target) Enabled() bool { return t.Textfile != "" || t.PushURL != "" }

// Run collects the metrics of one command invocation.
type Run struct {
	command  string
	started  time.Time
	now      func() time.Time
	registry *prometheus.Registry

	duration    *prometheus.GaugeVec
	lastSuccess prometheus.Gauge
}

// NewRun creates a Run for command on a fresh registry carrying Go build
// info. The command name is not a metric label; pushes carry it as the
// grouping key.
func NewRun(command string) *Run {
	return newRun(command, time.Now)
}

func newRun(command string, now func() time.Time) *Run {
	r := &Run{
		command:  command,
		started:  now(),
		now:      now,
		registry: prometheus.NewRegistry(),
		duration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "accounts_run_duration_seconds",
			Help: "Wall time of the last accounts run by result",
		}, []string{"result"}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "accounts_run_last_success_timestamp_seconds",
			Help: "Unix time of the last successful accounts run",
		}),
	}
	r.registry.MustRegister(collectors.NewBuildInfoCollector(), r.duration, r.lastSuccess)
	return r
}

// Registry is where callers register their own collectors.
func (r *Run) Registry() *prometheus.Registry { return r.registry }

// Finish records the run outcome.
func (r *Run) Finish(err error) {
	end := r.now()
	result := "ok"
	if err != nil {
		result = "error"
	} else {
		r.lastSuccess.Set(float64(end.Unix()))
	}
	r.duration.WithLabelValues(result).Set(end.Sub(r.started).Seconds())
}

// Export sends the run's metrics to every target. Both targets are tried
// even if the first fails.
func (r *Run) Export(ctx context.Context, target Target) error {
	var errs []error
	if target.Textfile != "" {
		if err := prometheus.WriteToTextfile(target.Textfile, r.registry); err != nil {
			errs = append(errs, oops.Code("METRICS_EXPORT_FAILED").
				With("textfile", target.Textfile).
				Wrap(err))
		}
	}
	if target.PushURL != "" {
		err := push.New(target.PushURL, Job).
			Grouping("command", r.command).
			Gatherer(r.registry).
			PushContext(ctx)
		if err != nil {
			errs = append(errs, oops.Code("METRICS_EXPORT_FAILED").
				With("push_url", target.PushURL).
				Wrap(err))
		}
	}
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	default:
		return oops.Code("METRICS_EXPORT_FAILED").Join(errs...)
	}
}
