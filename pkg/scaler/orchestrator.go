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
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fluxcd/replica-scaler/pkg/retry"
)

// Config holds the retry policy of each phase
type Config struct {
	Discovery    retry.Policy
	Invocation   retry.Policy
	Confirmation retry.Policy

	// AttemptTimeout bounds a single scale command attempt, zero leaves it
	// bounded by the remaining invocation deadline only
	AttemptTimeout time.Duration
}

// DefaultConfig returns the reference timings: discovery every 10s for 180s,
// scale command every 10s for 60s and five confirmation reads 1s apart
func DefaultConfig() Config {
	return Config{
		Discovery:    retry.Policy{Interval: 10 * time.Second, Timeout: 180 * time.Second},
		Invocation:   retry.Policy{Interval: 10 * time.Second, Timeout: 60 * time.Second},
		Confirmation: retry.Policy{Interval: time.Second, MaxAttempts: 5},
	}
}

// Validate checks every phase policy
func (c Config) Validate() error {
	if err := c.Discovery.Validate(); err != nil {
		return fmt.Errorf("discovery policy: %w", err)
	}
	if err := c.Invocation.Validate(); err != nil {
		return fmt.Errorf("invocation policy: %w", err)
	}
	if err := c.Confirmation.Validate(); err != nil {
		return fmt.Errorf("confirmation policy: %w", err)
	}
	return nil
}

// Orchestrator sequences discovery, scale command and confirmation for one request
type Orchestrator struct {
	Connector   Connector
	Runner      CommandRunner
	Credentials CredentialResolver
	Config      Config
	Clock       retry.Clock
	Progress    ProgressLog
	Logger      *zap.SugaredLogger
}

// Run executes one orchestration. It never fails, the outcome is in the result.
// The config is expected to be valid, see Config.Validate.
// Each phase owns its deadline, measured from the start of that phase.
func (o *Orchestrator) Run(ctx context.Context, req ScaleRequest) (result Result) {
	clock := o.Clock
	if clock == nil {
		clock = retry.NewClock()
	}
	start := clock.Now()
	result.RunID = uuid.NewString()

	logger := o.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	logger = logger.With("run", result.RunID, "kind", req.Kind, "namespace", req.Namespace,
		"prefix", req.DeploymentPrefix, "replicas", req.Replicas)

	defer func() {
		result.Duration = clock.Now().Sub(start)
		o.report(logger, req, result)
	}()

	if o.Credentials != nil {
		req = req.WithAuthToken(o.Credentials.DeriveAuth(req.AuthToken))
	}

	client, err := o.Connector.Connect(ctx, req)
	if err != nil {
		o.Progress.Printf("could not get a client for %s: %v", req.APIEndpoint, err)
		return failed(result, OutcomeClientUnavailable, err)
	}

	// discovering
	locator := &Locator{Policy: o.Config.Discovery, Clock: clock, Progress: o.Progress, Logger: logger}
	ref, attempts, err := locator.Locate(ctx, client, req)
	result.Attempts.Discovery = attempts
	switch {
	case err == nil:
		result.Resource = ref
	case isCanceled(err):
		return failed(result, OutcomeCanceled, err)
	case errors.Is(err, ErrNotFound) && req.Replicas == 0:
		result.Outcome = OutcomeNotFoundButZeroRequested
		return result
	default:
		return failed(result, OutcomeNotFoundAndNonZeroRequested, err)
	}

	// invoking
	invoker := &Invoker{
		Connector:      o.Connector,
		Runner:         o.Runner,
		Policy:         o.Config.Invocation,
		Clock:          clock,
		Progress:       o.Progress,
		Logger:         logger,
		AttemptTimeout: o.Config.AttemptTimeout,
	}
	attempts, err = invoker.Invoke(ctx, req, ref)
	result.Attempts.Invocation = attempts
	if err != nil {
		if isCanceled(err) {
			return failed(result, OutcomeCanceled, err)
		}
		return failed(result, OutcomeScaleCommandFailed, err)
	}

	// confirming
	confirmer := &Confirmer{Policy: o.Config.Confirmation, Clock: clock, Progress: o.Progress, Logger: logger}
	reads, err := confirmer.Confirm(ctx, client, req, ref)
	result.Attempts.Confirmation = reads
	switch {
	case err == nil:
		result.Outcome = OutcomeSuccess
		return result
	case isCanceled(err):
		return failed(result, OutcomeCanceled, err)
	case errors.Is(err, ErrResourceVanished):
		return failed(result, OutcomeResourceVanished, err)
	default:
		return failed(result, OutcomeConfirmationTimedOut, err)
	}
}

func (o *Orchestrator) report(logger *zap.SugaredLogger, req ScaleRequest, result Result) {
	target := req.DeploymentPrefix
	if result.Resource.Name != "" {
		target = result.Resource.Name
	}

	o.Progress.Printf("scaling %s in %s to %d replicas finished with %s: discovery retries %d, invocation retries %d, confirmation reads %d",
		target, req.Namespace, req.Replicas, result.Outcome,
		retries(result.Attempts.Discovery), retries(result.Attempts.Invocation), result.Attempts.Confirmation)

	logger = logger.With("outcome", result.Outcome.String(), "duration", result.Duration)
	if result.Succeeded() {
		logger.Infof("Scaling %s.%s to %d replicas succeeded", target, req.Namespace, req.Replicas)
	} else {
		logger.Errorf("Scaling %s.%s to %d replicas failed: %v", target, req.Namespace, req.Replicas, result.Err)
	}
}

func failed(result Result, outcome Outcome, err error) Result {
	result.Outcome = outcome
	result.Err = err
	return result
}

func retries(attempts int) int {
	if attempts == 0 {
		return 0
	}
	return attempts - 1
}

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
