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
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxcd/replica-scaler/pkg/scaler"
)

var testRequest = scaler.ScaleRequest{
	APIEndpoint:      "https://api.example.com:6443",
	Namespace:        "default",
	DeploymentPrefix: "podinfo",
	Replicas:         3,
	Kind:             scaler.KindReplicationController,
}

func TestRecorder_RecordRun(t *testing.T) {
	recorder := NewRecorder("test", prometheus.NewRegistry())

	recorder.RecordRun(testRequest, scaler.Result{
		Outcome:  scaler.OutcomeSuccess,
		Attempts: scaler.Attempts{Discovery: 2, Invocation: 1, Confirmation: 3},
		Duration: 12 * time.Second,
	})
	recorder.RecordRun(testRequest, scaler.Result{
		Outcome:  scaler.OutcomeConfirmationTimedOut,
		Attempts: scaler.Attempts{Discovery: 1, Invocation: 1, Confirmation: 5},
		Duration: 15 * time.Second,
	})

	tests := []struct {
		name     string
		metric   prometheus.Collector
		expected float64
	}{
		{"success runs", recorder.runs.WithLabelValues("replicationcontroller", "default", "Success"), 1},
		{"timed out runs", recorder.runs.WithLabelValues("replicationcontroller", "default", "ConfirmationTimedOut"), 1},
		{"status", recorder.status.WithLabelValues("podinfo", "default"), 0},
		{"replicas", recorder.replicas.WithLabelValues("podinfo", "default"), 3},
		{"confirmation attempts", recorder.attempts.WithLabelValues("podinfo", "default", "confirmation"), 5},
		{"discovery attempts", recorder.attempts.WithLabelValues("podinfo", "default", "discovery"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, testutil.ToFloat64(tt.metric))
		})
	}

	assert.Equal(t, 1, testutil.CollectAndCount(recorder.duration))
}

func TestRecorder_SetInfo(t *testing.T) {
	recorder := NewRecorder("test", nil)
	recorder.SetInfo("0.1.0", "abc123")
	assert.Equal(t, 1.0, testutil.ToFloat64(recorder.info.WithLabelValues("0.1.0", "abc123")))
}

func TestRecorder_Register(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewRecorder("test", reg)
	assert.Panics(t, func() { NewRecorder("test", reg) })
}

func TestPusher_Push(t *testing.T) {
	var path, body string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	pusher, err := NewPusher(ts.URL, "")
	require.NoError(t, err)

	recorder := NewRecorder("replica_scaler", nil)
	recorder.RecordRun(testRequest, scaler.Result{Outcome: scaler.OutcomeSuccess, Duration: time.Second})

	require.NoError(t, pusher.Push(context.Background(), recorder, "default", "podinfo"))
	assert.Equal(t, "/metrics/job/replica_scaler/target/podinfo.default", path)
	assert.NotEmpty(t, body)
}

func TestPusher_PushError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	pusher, err := NewPusher(ts.URL, "replica_scaler")
	require.NoError(t, err)
	assert.Error(t, pusher.Push(context.Background(), NewRecorder("replica_scaler", nil), "default", "podinfo"))

	_, err = NewPusher("not a url", "")
	assert.Error(t, err)
}
