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

package cluster

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/version"
	fakediscovery "k8s.io/client-go/discovery/fake"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/fluxcd/replica-scaler/pkg/scaler"
)

func TestConnector_RestConfig(t *testing.T) {
	req := scaler.ScaleRequest{APIEndpoint: "https://api.example.com:6443", AuthToken: "sa-token"}

	c := &Connector{Timeout: 30 * time.Second, UserAgent: "replica-scaler/test"}
	cfg, err := c.RestConfig(req)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com:6443", cfg.Host)
	assert.Equal(t, "sa-token", cfg.BearerToken)
	assert.False(t, cfg.TLSClientConfig.Insecure)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, "replica-scaler/test", cfg.UserAgent)

	c = &Connector{CAFile: "/etc/ssl/cluster-ca.pem"}
	cfg, err = c.RestConfig(req)
	require.NoError(t, err)
	assert.Equal(t, "/etc/ssl/cluster-ca.pem", cfg.TLSClientConfig.CAFile)

	c = &Connector{InsecureSkipTLSVerify: true, CAFile: "/etc/ssl/cluster-ca.pem"}
	cfg, err = c.RestConfig(req)
	require.NoError(t, err)
	assert.True(t, cfg.TLSClientConfig.Insecure)
	assert.Empty(t, cfg.TLSClientConfig.CAFile)
}

func TestConnector_Connect(t *testing.T) {
	c := &Connector{}
	client, err := c.Connect(context.TODO(), scaler.ScaleRequest{APIEndpoint: "https://api.example.com:6443", AuthToken: "sa-token"})
	require.NoError(t, err)
	assert.IsType(t, &Client{}, client)
}

func TestConnector_MissingKubeconfig(t *testing.T) {
	c := &Connector{Kubeconfig: "/does/not/exist/kubeconfig"}
	_, err := c.Connect(context.TODO(), scaler.ScaleRequest{APIEndpoint: "https://api.example.com:6443"})
	require.Error(t, err)
}

func TestCheckServerVersion(t *testing.T) {
	tests := []struct {
		gitVersion string
		constraint string
		wantErr    bool
	}{
		{"v1.31.4", ">=1.16.0", false},
		{"v1.30.4-eks-a737599", ">=1.16.0", false},
		{"v1.15.12", ">=1.16.0", true},
		{"v1.31.4", "not-a-constraint", true},
		{"unknown", ">=1.16.0", true},
	}

	for _, tt := range tests {
		t.Run(tt.gitVersion+" "+tt.constraint, func(t *testing.T) {
			kubeClient := fake.NewSimpleClientset()
			kubeClient.Discovery().(*fakediscovery.FakeDiscovery).FakedServerVersion = &version.Info{GitVersion: tt.gitVersion}

			got, err := CheckServerVersion(kubeClient.Discovery(), tt.constraint)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.gitVersion, got)
		})
	}
}
