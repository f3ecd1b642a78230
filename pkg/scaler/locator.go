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
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fluxcd/replica-scaler/pkg/retry"
)

// Locator finds the workload whose name starts with the request prefix
type Locator struct {
	Policy   retry.Policy
	Clock    retry.Clock
	Progress ProgressLog
	Logger   *zap.SugaredLogger
}

// Locate lists the workloads of the request namespace until one matches the prefix.
// When nothing matches and zero replicas are requested it returns ErrNotFound right away,
// a missing workload is already scaled down. Otherwise it keeps looking until the
// policy deadline and then returns ErrNotFound wrapping ErrDiscoveryTimeout.
// If several workloads share the prefix the first one encountered is used.
func (l *Locator) Locate(ctx context.Context, client ClusterClient, req ScaleRequest) (ResourceRef, int, error) {
	kind := strings.ToLower(string(req.Kind))
	start := l.Clock.Now()

	var ref ResourceRef
	attempts, err := l.Policy.Poll(ctx, l.Clock, func(ctx context.Context, attempt int) (bool, error) {
		l.Progress.Printf("looking for %s with prefix %q in namespace %s (attempt %d)",
			kind, req.DeploymentPrefix, req.Namespace, attempt)

		resources, err := client.ListResources(ctx, req.Kind, req.Namespace)
		if err != nil {
			if ctx.Err() != nil {
				return false, ctx.Err()
			}
			l.Logger.With("prefix", req.DeploymentPrefix, "namespace", req.Namespace, "elapsed", l.Clock.Now().Sub(start)).
				Warnf("Listing %s failed: %v", kind, err)
			l.Progress.Printf("listing %s in namespace %s failed: %v, retrying in %v",
				kind, req.Namespace, err, l.Policy.Interval)
			return false, nil
		}

		if name, ok := matchPrefix(resources, req.DeploymentPrefix); ok {
			ref = ResourceRef{Kind: req.Kind, Name: name, Namespace: req.Namespace}
			l.Progress.Printf("found %s matching prefix %q", ref, req.DeploymentPrefix)
			return true, nil
		}

		if req.Replicas == 0 {
			return true, nil
		}

		l.Progress.Printf("no %s matches prefix %q yet, retrying in %v", kind, req.DeploymentPrefix, l.Policy.Interval)
		return false, nil
	})

	switch {
	case err == nil && ref.Name != "":
		return ref, attempts, nil
	case err == nil:
		l.Progress.Printf("no %s matches prefix %q in namespace %s, nothing to scale down",
			kind, req.DeploymentPrefix, req.Namespace)
		return ResourceRef{}, attempts, ErrNotFound
	case errors.Is(err, retry.ErrTimeout):
		l.Progress.Printf("did not find any %s for %q within %v", kind, req.DeploymentPrefix, l.Policy.Timeout)
		return ResourceRef{}, attempts, fmt.Errorf("%w: %w", ErrNotFound, ErrDiscoveryTimeout)
	default:
		return ResourceRef{}, attempts, err
	}
}

func matchPrefix(resources map[string]Resource, prefix string) (string, bool) {
	for name := range resources {
		if strings.HasPrefix(name, prefix) {
			return name, true
		}
	}
	return "", false
}
