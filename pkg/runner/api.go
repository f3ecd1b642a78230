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

package runner

import (
	"context"
	"fmt"
	"strings"

	"github.com/fluxcd/replica-scaler/pkg/scaler"
)

// APIRunner scales workloads with an update of the replica count through the cluster client
type APIRunner struct{}

// Start performs the update and returns its result as a finished Command
func (r *APIRunner) Start(ctx context.Context, client scaler.ClusterClient, req scaler.ScaleRequest, ref scaler.ResourceRef) (scaler.Command, error) {
	err := client.ScaleResource(ctx, ref.Kind, ref.Name, ref.Namespace, req.Replicas)
	if err != nil {
		return &doneCommand{Reader: strings.NewReader(fmt.Sprintf("error: %v\n", err)), err: err}, nil
	}
	return &doneCommand{Reader: strings.NewReader(fmt.Sprintf("%s scaled\n", ref.Resource()))}, nil
}

type doneCommand struct {
	*strings.Reader
	err error
}

func (c *doneCommand) Wait() error {
	return c.err
}

func (c *doneCommand) Stop() error {
	return nil
}
