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
	"context"
	"fmt"
	"net/url"

	"github.com/prometheus/client_golang/prometheus/push"
)

// Pusher publishes the recorder metrics to a Prometheus Pushgateway.
// A scale run is too short lived to be scraped.
type Pusher struct {
	URL string
	Job string
}

// NewPusher validates the Pushgateway URL and returns a Pusher
func NewPusher(address string, job string) (*Pusher, error) {
	if _, err := url.ParseRequestURI(address); err != nil {
		return nil, fmt.Errorf("invalid Pushgateway URL %s", address)
	}
	if job == "" {
		job = "replica_scaler"
	}
	return &Pusher{URL: address, Job: job}, nil
}

// Push replaces the metrics of the job grouped by the prefix.namespace target.
// The recorder labels already carry namespace and prefix and cannot be used for grouping.
func (p *Pusher) Push(ctx context.Context, recorder Recorder, namespace, prefix string) error {
	pusher := push.New(p.URL, p.Job).
		Grouping("target", fmt.Sprintf("%s.%s", prefix, namespace))
	for _, c := range recorder.Collectors() {
		pusher = pusher.Collector(c)
	}

	if err := pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("pushing metrics to %s failed: %w", p.URL, err)
	}
	return nil
}
