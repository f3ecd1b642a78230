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
	"context"
	"errors"
	"io"
)

// ErrResourceNotFound is returned by ClusterClient.GetResource when the workload does not exist
var ErrResourceNotFound = errors.New("resource not found")

// ClusterClient reads and scales workloads of one cluster
type ClusterClient interface {
	ListResources(ctx context.Context, kind Kind, namespace string) (map[string]Resource, error)
	GetResource(ctx context.Context, kind Kind, name string, namespace string) (*Resource, error)
	ScaleResource(ctx context.Context, kind Kind, name string, namespace string, replicas int32) error
}

// Connector establishes a client for the endpoint and token of a request
type Connector interface {
	Connect(ctx context.Context, req ScaleRequest) (ClusterClient, error)
}

// Command is a running scale command. Reading drains its output,
// Wait reports how it exited and Stop releases everything it holds.
type Command interface {
	io.Reader
	Wait() error
	Stop() error
}

// CommandRunner starts scale commands
type CommandRunner interface {
	Start(ctx context.Context, client ClusterClient, req ScaleRequest, ref ResourceRef) (Command, error)
}

// ProgressLog is the append only, human readable log of a run
type ProgressLog interface {
	io.Writer
	Printf(format string, args ...interface{})
}

// CredentialResolver turns the configured token into the token used for the run
type CredentialResolver interface {
	DeriveAuth(token string) string
}
