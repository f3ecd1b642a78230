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
	"errors"
	"fmt"
	"strconv"
	"strings"

	utilerrors "k8s.io/apimachinery/pkg/util/errors"
)

// Kind is the type of workload being scaled
type Kind string

const (
	KindReplicationController Kind = "ReplicationController"
	KindDeployment            Kind = "Deployment"
)

// ParseKind accepts the kind name in any case, its plural and its kubectl short name.
// An empty value selects ReplicationController.
func ParseKind(value string) (Kind, error) {
	switch strings.ToLower(value) {
	case "", "replicationcontroller", "replicationcontrollers", "rc":
		return KindReplicationController, nil
	case "deployment", "deployments", "deploy":
		return KindDeployment, nil
	}
	return "", fmt.Errorf("unsupported kind %q, can be ReplicationController or Deployment", value)
}

// ScaleRequest describes one orchestration run. It is passed by value and never modified.
type ScaleRequest struct {
	APIEndpoint      string
	Namespace        string
	DeploymentPrefix string
	Replicas         int32
	AuthToken        string
	Kind             Kind
}

// NewScaleRequest validates the step configuration and parses the replica count
func NewScaleRequest(apiURL, namespace, prefix, replicaCount, token string, kind Kind) (ScaleRequest, error) {
	var errs []error
	if apiURL == "" {
		errs = append(errs, errors.New("api URL is required"))
	}
	if prefix == "" {
		errs = append(errs, errors.New("deployment prefix is required"))
	}
	if namespace == "" {
		errs = append(errs, errors.New("namespace is required"))
	}

	replicas, err := ParseReplicaCount(replicaCount)
	if err != nil {
		errs = append(errs, err)
	}

	kind, err = ParseKind(string(kind))
	if err != nil {
		errs = append(errs, err)
	}

	if err := utilerrors.NewAggregate(errs); err != nil {
		return ScaleRequest{}, fmt.Errorf("invalid scale request: %w", err)
	}

	return ScaleRequest{
		APIEndpoint:      apiURL,
		Namespace:        namespace,
		DeploymentPrefix: prefix,
		Replicas:         replicas,
		AuthToken:        token,
		Kind:             kind,
	}, nil
}

// WithAuthToken returns a copy of the request using token
func (r ScaleRequest) WithAuthToken(token string) ScaleRequest {
	r.AuthToken = token
	return r
}

// ParseReplicaCount decodes a non-negative 32 bit integer.
// Decimal, 0x, 0X and # hexadecimal and leading zero octal notations are accepted.
func ParseReplicaCount(value string) (int32, error) {
	if value == "" {
		return 0, errors.New("replica count is required")
	}

	sign, body := "", value
	if body[0] == '-' || body[0] == '+' {
		sign, body = body[:1], body[1:]
	}
	if strings.HasPrefix(body, "#") {
		body = "0x" + body[1:]
	}
	if body == "" || body[0] == '-' || body[0] == '+' || strings.Contains(body, "_") {
		return 0, errors.New("replica count must be an integer")
	}
	// binary and 0o octal prefixes are Go literal syntax only
	if lower := strings.ToLower(body); strings.HasPrefix(lower, "0b") || strings.HasPrefix(lower, "0o") {
		return 0, errors.New("replica count must be an integer")
	}

	n, err := strconv.ParseInt(sign+body, 0, 32)
	if err != nil {
		return 0, errors.New("replica count must be an integer")
	}
	if n < 0 {
		return 0, fmt.Errorf("replica count must be non-negative, got %d", n)
	}
	return int32(n), nil
}

// ResourceRef identifies the located workload for the lifetime of one run
type ResourceRef struct {
	Kind      Kind
	Name      string
	Namespace string
}

// Resource returns the kubectl style kind/name reference
func (r ResourceRef) Resource() string {
	return fmt.Sprintf("%s/%s", strings.ToLower(string(r.Kind)), r.Name)
}

func (r ResourceRef) String() string {
	return fmt.Sprintf("%s %s.%s", strings.ToLower(string(r.Kind)), r.Name, r.Namespace)
}

// Resource is a point in time read of a workload
type Resource struct {
	Kind      Kind
	Name      string
	Namespace string
	// DesiredReplicas is the requested replica count from spec.replicas
	DesiredReplicas int32
	// CurrentReplicas is the observed replica count from status.replicas
	CurrentReplicas int32
}
