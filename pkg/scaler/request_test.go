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

package scaler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReplicaCount(t *testing.T) {
	tests := []struct {
		value   string
		want    int32
		wantErr string
	}{
		{value: "3", want: 3},
		{value: "0", want: 0},
		{value: "+5", want: 5},
		{value: "0x10", want: 16},
		{value: "0X10", want: 16},
		{value: "#10", want: 16},
		{value: "010", want: 8},
		{value: "2147483647", want: 2147483647},
		{value: "", wantErr: "replica count is required"},
		{value: "-1", wantErr: "replica count must be non-negative, got -1"},
		{value: "abc", wantErr: "replica count must be an integer"},
		{value: "3.5", wantErr: "replica count must be an integer"},
		{value: "2147483648", wantErr: "replica count must be an integer"},
		{value: "--1", wantErr: "replica count must be an integer"},
		{value: "#", wantErr: "replica count must be an integer"},
		{value: "1_000", wantErr: "replica count must be an integer"},
		{value: "0_3", wantErr: "replica count must be an integer"},
		{value: "0b11", wantErr: "replica count must be an integer"},
		{value: "0B11", wantErr: "replica count must be an integer"},
		{value: "0o7", wantErr: "replica count must be an integer"},
		{value: "#_a", wantErr: "replica count must be an integer"},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := ParseReplicaCount(tt.value)
			if tt.wantErr != "" {
				require.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseKind(t *testing.T) {
	for _, value := range []string{"", "rc", "ReplicationController", "replicationcontrollers"} {
		kind, err := ParseKind(value)
		require.NoError(t, err)
		assert.Equal(t, KindReplicationController, kind)
	}
	for _, value := range []string{"deploy", "Deployment", "deployments"} {
		kind, err := ParseKind(value)
		require.NoError(t, err)
		assert.Equal(t, KindDeployment, kind)
	}

	_, err := ParseKind("StatefulSet")
	require.Error(t, err)
}

func TestNewScaleRequest(t *testing.T) {
	req, err := NewScaleRequest("https://api.example.com:6443", "shop", "frontend", "#a", "token", "deploy")
	require.NoError(t, err)
	assert.Equal(t, ScaleRequest{
		APIEndpoint:      "https://api.example.com:6443",
		Namespace:        "shop",
		DeploymentPrefix: "frontend",
		Replicas:         10,
		AuthToken:        "token",
		Kind:             KindDeployment,
	}, req)
}

func TestNewScaleRequest_AggregatesErrors(t *testing.T) {
	_, err := NewScaleRequest("", "", "", "many", "", "Pod")
	require.Error(t, err)

	for _, msg := range []string{
		"api URL is required",
		"deployment prefix is required",
		"namespace is required",
		"replica count must be an integer",
		`unsupported kind "Pod"`,
	} {
		assert.Contains(t, err.Error(), msg)
	}
}

func TestNewScaleRequest_EmptyTokenIsAllowed(t *testing.T) {
	req, err := NewScaleRequest("https://api.example.com:6443", "shop", "frontend", "1", "", "")
	require.NoError(t, err)
	assert.Empty(t, req.AuthToken)
	assert.Equal(t, KindReplicationController, req.Kind)
}

func TestResourceRef(t *testing.T) {
	ref := ResourceRef{Kind: KindDeployment, Name: "frontend-v2", Namespace: "shop"}
	assert.Equal(t, "deployment/frontend-v2", ref.Resource())
	assert.Equal(t, "deployment frontend-v2.shop", ref.String())

	req := newTestRequest(t, "frontend", "1")
	copied := req.WithAuthToken("other")
	assert.Equal(t, "token", req.AuthToken)
	assert.Equal(t, "other", copied.AuthToken)
}
