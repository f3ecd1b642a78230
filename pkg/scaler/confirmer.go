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

	"go.uber.org/zap"

	"github.com/fluxcd/replica-scaler/pkg/retry"
)

// Confirmer polls the workload until its replica count matches the request
type Confirmer struct {
	Policy   retry.Policy
	Clock    retry.Clock
	Progress ProgressLog
	Logger   *zap.SugaredLogger
}

// Confirm returns nil once the current replica count equals the target,
// ErrResourceVanished as soon as the workload is gone and
// ErrConfirmationTimeout when the policy runs out.
// A failed read counts as an attempt.
func (c *Confirmer) Confirm(ctx context.Context, client ClusterClient, req ScaleRequest, ref ResourceRef) (int, error) {
	start := c.Clock.Now()

	reads, err := c.Policy.Poll(ctx, c.Clock, func(ctx context.Context, attempt int) (bool, error) {
		res, err := client.GetResource(ctx, ref.Kind, ref.Name, ref.Namespace)
		if errors.Is(err, ErrResourceNotFound) {
			c.Progress.Printf("%s disappeared", ref)
			return false, ErrResourceVanished
		}
		if err != nil {
			if ctx.Err() != nil {
				return false, ctx.Err()
			}
			c.Logger.With("resource", ref.Name, "namespace", ref.Namespace, "elapsed", c.Clock.Now().Sub(start)).
				Warnf("Reading replica count failed: %v", err)
			c.Progress.Printf("reading %s failed: %v", ref, err)
			return false, nil
		}

		c.Progress.Printf("%s current replica count %d, want %d", ref, res.CurrentReplicas, req.Replicas)
		return res.CurrentReplicas == req.Replicas, nil
	})

	if errors.Is(err, retry.ErrAttemptsExhausted) || errors.Is(err, retry.ErrTimeout) {
		c.Progress.Printf("%s did not reach %d replicas after %d reads", ref, req.Replicas, reads)
		return reads, ErrConfirmationTimeout
	}
	return reads, err
}
