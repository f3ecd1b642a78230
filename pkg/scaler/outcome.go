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
	"time"
)

var (
	// ErrNotFound is returned by the locator when no workload matches the prefix
	ErrNotFound = errors.New("no matching resource found")
	// ErrDiscoveryTimeout marks a not found result caused by the discovery deadline
	ErrDiscoveryTimeout = errors.New("discovery deadline exceeded")
	// ErrInvocationExhausted is returned when no scale command attempt succeeded in time
	ErrInvocationExhausted = errors.New("scale command did not succeed before the deadline")
	// ErrResourceVanished is returned when the workload disappeared during confirmation
	ErrResourceVanished = errors.New("resource disappeared during confirmation")
	// ErrConfirmationTimeout is returned when the replica count never matched the target
	ErrConfirmationTimeout = errors.New("replica count did not reach the target")
)

// Outcome is the terminal state of a run
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeNotFoundButZeroRequested
	OutcomeNotFoundAndNonZeroRequested
	OutcomeScaleCommandFailed
	OutcomeResourceVanished
	OutcomeConfirmationTimedOut
	OutcomeClientUnavailable
	OutcomeCanceled
)

var outcomeNames = map[Outcome]string{
	OutcomeSuccess:                     "Success",
	OutcomeNotFoundButZeroRequested:    "NotFoundButZeroRequested",
	OutcomeNotFoundAndNonZeroRequested: "NotFoundAndNonZeroRequested",
	OutcomeScaleCommandFailed:          "ScaleCommandFailed",
	OutcomeResourceVanished:            "ResourceVanished",
	OutcomeConfirmationTimedOut:        "ConfirmationTimedOut",
	OutcomeClientUnavailable:           "ClientUnavailable",
	OutcomeCanceled:                    "Canceled",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return "Unknown"
}

// Succeeded reports whether the outcome counts as a successful build step
func (o Outcome) Succeeded() bool {
	return o == OutcomeSuccess || o == OutcomeNotFoundButZeroRequested
}

// Attempts counts the attempts each phase made
type Attempts struct {
	Discovery    int
	Invocation   int
	Confirmation int
}

// Result is produced exactly once per run
type Result struct {
	RunID    string
	Outcome  Outcome
	Resource ResourceRef
	Attempts Attempts
	Err      error
	Duration time.Duration
}

// Succeeded reports whether the run succeeded
func (r Result) Succeeded() bool {
	return r.Outcome.Succeeded()
}
