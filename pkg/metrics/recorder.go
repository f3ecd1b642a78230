/*
Copyright 2026 The Flux authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/fluxcd/replica-scaler/pkg/scaler"
)

// Recorder records scale runs as Prometheus metrics
type Recorder struct {
	info     *prometheus.GaugeVec
	duration *prometheus.HistogramVec
	runs     *prometheus.CounterVec
	status   *prometheus.GaugeVec
	attempts *prometheus.GaugeVec
	replicas *prometheus.GaugeVec
}

// NewRecorder creates a new recorder and registers the Prometheus metrics with reg when not nil
func NewRecorder(subsystem string, reg prometheus.Registerer) Recorder {
	info := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Subsystem: subsystem,
		Name:      "info",
		Help:      "Replica scaler version information",
	}, []string{"version", "revision"})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Subsystem: subsystem,
		Name:      "run_duration_seconds",
		Help:      "Seconds spent locating, scaling and confirming a workload.",
		Buckets:   []float64{1, 5, 10, 30, 60, 120, 180, 300},
	}, []string{"kind", "namespace"})

	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Subsystem: subsystem,
		Name:      "runs_total",
		Help:      "Total number of scale runs by outcome",
	}, []string{"kind", "namespace", "outcome"})

	// 0 - failed, 1 - successful
	status := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Subsystem: subsystem,
		Name:      "run_status",
		Help:      "Last scale run result",
	}, []string{"prefix", "namespace"})

	attempts := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Subsystem: subsystem,
		Name:      "run_attempts",
		Help:      "Attempts made by each phase of the last scale run",
	}, []string{"prefix", "namespace", "phase"})

	replicas := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Subsystem: subsystem,
		Name:      "target_replicas",
		Help:      "Replica count requested by the last scale run",
	}, []string{"prefix", "namespace"})

	if reg != nil {
		reg.MustRegister(info, duration, runs, status, attempts, replicas)
	}

	return Recorder{
		info:     info,
		duration: duration,
		runs:     runs,
		status:   status,
		attempts: attempts,
		replicas: replicas,
	}
}

// SetInfo sets the version and revision labels
func (cr *Recorder) SetInfo(version string, revision string) {
	cr.info.WithLabelValues(version, revision).Set(1)
}

// RecordRun records the result of one orchestration run
func (cr *Recorder) RecordRun(req scaler.ScaleRequest, res scaler.Result) {
	kind := strings.ToLower(string(req.Kind))
	cr.duration.WithLabelValues(kind, req.Namespace).Observe(res.Duration.Seconds())
	cr.runs.WithLabelValues(kind, req.Namespace, res.Outcome.String()).Inc()

	status := 0.0
	if res.Succeeded() {
		status = 1
	}
	cr.status.WithLabelValues(req.DeploymentPrefix, req.Namespace).Set(status)
	cr.replicas.WithLabelValues(req.DeploymentPrefix, req.Namespace).Set(float64(req.Replicas))

	cr.attempts.WithLabelValues(req.DeploymentPrefix, req.Namespace, "discovery").Set(float64(res.Attempts.Discovery))
	cr.attempts.WithLabelValues(req.DeploymentPrefix, req.Namespace, "invocation").Set(float64(res.Attempts.Invocation))
	cr.attempts.WithLabelValues(req.DeploymentPrefix, req.Namespace, "confirmation").Set(float64(res.Attempts.Confirmation))
}

// Collectors returns every metric of the recorder
func (cr *Recorder) Collectors() []prometheus.Collector {
	return []prometheus.Collector{cr.info, cr.duration, cr.runs, cr.status, cr.attempts, cr.replicas}
}
