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
	"fmt"
	"time"

	"github.com/Masterminds/semver/v3"
	"k8s.io/client-go/discovery"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/fluxcd/replica-scaler/pkg/scaler"
)

// Connector builds Kubernetes clients for the endpoint and token of a scale request
type Connector struct {
	// Kubeconfig is used instead of the request endpoint when set
	Kubeconfig string
	// InsecureSkipTLSVerify disables server certificate validation
	InsecureSkipTLSVerify bool
	// CAFile is the PEM bundle used to validate the server certificate
	CAFile string
	// Timeout bounds every API call, zero means no timeout
	Timeout time.Duration
	// UserAgent is sent with every API call
	UserAgent string
}

// Connect returns a ClusterClient for req
func (c *Connector) Connect(_ context.Context, req scaler.ScaleRequest) (scaler.ClusterClient, error) {
	cfg, err := c.RestConfig(req)
	if err != nil {
		return nil, err
	}

	kubeClient, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("error building kubernetes clientset: %w", err)
	}
	return NewClient(kubeClient), nil
}

// RestConfig returns the client configuration for req
func (c *Connector) RestConfig(req scaler.ScaleRequest) (*rest.Config, error) {
	var cfg *rest.Config
	if c.Kubeconfig != "" {
		var err error
		cfg, err = clientcmd.BuildConfigFromFlags(req.APIEndpoint, c.Kubeconfig)
		if err != nil {
			return nil, fmt.Errorf("error building kubeconfig: %w", err)
		}
	} else {
		cfg = &rest.Config{Host: req.APIEndpoint}
	}

	if req.AuthToken != "" {
		cfg.BearerToken = req.AuthToken
		cfg.BearerTokenFile = ""
	}
	if c.InsecureSkipTLSVerify {
		cfg.TLSClientConfig.Insecure = true
		cfg.TLSClientConfig.CAFile = ""
		cfg.TLSClientConfig.CAData = nil
	} else if c.CAFile != "" {
		cfg.TLSClientConfig.CAFile = c.CAFile
		cfg.TLSClientConfig.CAData = nil
	}
	if c.Timeout > 0 {
		cfg.Timeout = c.Timeout
	}
	if c.UserAgent != "" {
		cfg.UserAgent = c.UserAgent
	}
	return cfg, nil
}

// CheckServerVersion verifies that the API server version satisfies constraint
func CheckServerVersion(client discovery.ServerVersionInterface, constraint string) (string, error) {
	ver, err := client.ServerVersion()
	if err != nil {
		return "", fmt.Errorf("error getting kubernetes server version: %w", err)
	}

	// the -alpha.1 suffix lets pre-release and vendor builds like v1.30.4-eks-a737599 pass the check
	c, err := semver.NewConstraint(constraint + "-alpha.1")
	if err != nil {
		return "", fmt.Errorf("invalid kubernetes version constraint %q: %w", constraint, err)
	}

	v, err := semver.NewVersion(ver.GitVersion)
	if err != nil {
		return "", fmt.Errorf("invalid kubernetes server version %q: %w", ver.GitVersion, err)
	}

	if !c.Check(v) {
		return ver.GitVersion, fmt.Errorf("kubernetes version %s does not satisfy %s", ver.GitVersion, constraint)
	}
	return ver.GitVersion, nil
}
