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

// Package retry implements fixed interval polling bounded by a deadline,
// an attempt budget or both.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrTimeout is returned when the policy deadline elapsed before the condition was met
	ErrTimeout = errors.New("retry deadline exceeded")
	// ErrAttemptsExhausted is returned when every allowed attempt ran without meeting the condition
	ErrAttemptsExhausted = errors.New("retry attempts exhausted")
)

// ConditionFunc is evaluated once per attempt, attempt numbers start at 1.
// Returning an error stops the loop and the error is passed to the caller.
type ConditionFunc func(ctx context.Context, attempt int) (done bool, err error)

// Policy describes a fixed interval retry loop
type Policy struct {
	// Interval is the pause between two attempts
	Interval time.Duration
	// Timeout bounds the loop measured from its first attempt, zero means no deadline
	Timeout time.Duration
	// MaxAttempts bounds the number of attempts, zero means unlimited
	MaxAttempts int
}

// Validate checks that the loop is bounded
func (p Policy) Validate() error {
	if p.Interval < 0 {
		return fmt.Errorf("interval must be non-negative, got %v", p.Interval)
	}
	if p.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative, got %v", p.Timeout)
	}
	if p.MaxAttempts < 0 {
		return fmt.Errorf("max attempts must be non-negative, got %d", p.MaxAttempts)
	}
	if p.Timeout == 0 && p.MaxAttempts == 0 {
		return errors.New("either timeout or max attempts must be set")
	}
	return nil
}

// Poll runs condition until it reports done, returns an error, or the policy is exhausted.
// The first attempt always runs. The deadline is checked before each subsequent attempt,
// so a loop with a 60s timeout and a 10s interval makes six attempts when the condition
// returns immediately. Cancelling ctx ends the loop with the context error.
// The returned count is the number of attempts that ran.
func (p Policy) Poll(ctx context.Context, clock Clock, condition ConditionFunc) (int, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}

	deadline := clock.Now().Add(p.Timeout)
	attempts := 0
	for {
		if attempts > 0 && p.Timeout > 0 && !clock.Now().Before(deadline) {
			return attempts, ErrTimeout
		}
		if err := ctx.Err(); err != nil {
			return attempts, err
		}

		attempts++
		done, err := condition(ctx, attempts)
		if err != nil {
			return attempts, err
		}
		if done {
			return attempts, nil
		}

		if p.MaxAttempts > 0 && attempts >= p.MaxAttempts {
			return attempts, ErrAttemptsExhausted
		}
		if err := clock.Sleep(ctx, p.Interval); err != nil {
			return attempts, err
		}
	}
}

