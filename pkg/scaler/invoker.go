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
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/fluxcd/replica-scaler/pkg/retry"
)

// Invoker runs the scale command, retrying on any failure until its deadline
type Invoker struct {
	Connector Connector
	Runner    CommandRunner
	Policy    retry.Policy
	Clock     retry.Clock
	Progress  ProgressLog
	Logger    *zap.SugaredLogger

	// AttemptTimeout bounds a single attempt in wall clock time, zero leaves
	// the attempt bounded by the remaining phase deadline only
	AttemptTimeout time.Duration
}

// Invoke scales ref to the requested replicas. Every attempt uses a new client
// and a new command whose output is streamed into the progress log,
// partial output of failed attempts included.
func (i *Invoker) Invoke(ctx context.Context, req ScaleRequest, ref ResourceRef) (int, error) {
	start := i.Clock.Now()

	attempts, err := i.Policy.Poll(ctx, i.Clock, func(ctx context.Context, attempt int) (bool, error) {
		i.Progress.Printf("scaling %s to %d replicas (attempt %d)", ref, req.Replicas, attempt)

		attemptCtx, cancel, phaseBound := i.attemptContext(ctx, start)
		err := i.attempt(attemptCtx, req, ref)
		expired := errors.Is(attemptCtx.Err(), context.DeadlineExceeded)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return false, ctx.Err()
			}
			if phaseBound && expired {
				i.Logger.With("resource", ref.Name, "namespace", ref.Namespace, "elapsed", i.Clock.Now().Sub(start)).
					Warnf("Scale attempt %d cut off by the command deadline: %v", attempt, err)
				return false, retry.ErrTimeout
			}
			i.Logger.With("resource", ref.Name, "namespace", ref.Namespace, "elapsed", i.Clock.Now().Sub(start)).
				Warnf("Scale attempt %d failed: %v", attempt, err)
			i.Progress.Printf("scale attempt %d for %s failed: %v, retrying in %v", attempt, ref, err, i.Policy.Interval)
			return false, nil
		}

		i.Progress.Printf("scale command for %s completed", ref)
		return true, nil
	})

	if errors.Is(err, retry.ErrTimeout) || errors.Is(err, retry.ErrAttemptsExhausted) {
		i.Progress.Printf("could not execute the scale command for %s within %v", ref, i.Policy.Timeout)
		return attempts, ErrInvocationExhausted
	}
	return attempts, err
}

// attemptContext bounds one attempt by AttemptTimeout and by what is left of the
// phase deadline, whichever comes first. phaseBound reports whether the phase
// deadline is the tighter of the two.
func (i *Invoker) attemptContext(ctx context.Context, start time.Time) (context.Context, context.CancelFunc, bool) {
	timeout := i.AttemptTimeout
	phaseBound := false
	if i.Policy.Timeout > 0 {
		remaining := start.Add(i.Policy.Timeout).Sub(i.Clock.Now())
		if timeout <= 0 || remaining <= timeout {
			timeout = max(remaining, 0)
			phaseBound = true
		}
	}

	if timeout <= 0 && !phaseBound {
		ctx, cancel := context.WithCancel(ctx)
		return ctx, cancel, false
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, cancel, phaseBound
}

func (i *Invoker) attempt(ctx context.Context, req ScaleRequest, ref ResourceRef) error {
	client, err := i.Connector.Connect(ctx, req)
	if err != nil {
		return fmt.Errorf("connecting to %s failed: %w", req.APIEndpoint, err)
	}

	cmd, err := i.Runner.Start(ctx, client, req, ref)
	if err != nil {
		return fmt.Errorf("starting scale command failed: %w", err)
	}
	defer func() {
		if err := cmd.Stop(); err != nil {
			i.Logger.With("resource", ref.Name, "namespace", ref.Namespace).
				Debugf("Stopping scale command failed: %v", err)
		}
	}()

	if _, err := io.Copy(i.Progress, cmd); err != nil {
		return fmt.Errorf("streaming scale command output failed: %w", err)
	}
	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("scale command failed: %w", err)
	}
	return nil
}
