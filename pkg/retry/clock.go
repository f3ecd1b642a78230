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

package retry

import (
	"context"
	"sync"
	"time"

	"k8s.io/utils/clock"
	testingclock "k8s.io/utils/clock/testing"
)

// Clock is the time source of a retry loop
type Clock interface {
	Now() time.Time
	// Sleep blocks for d or until ctx is done, whichever comes first.
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct {
	clock clock.Clock
}

// NewClock returns a Clock backed by the wall clock
func NewClock() Clock {
	return &realClock{clock: clock.RealClock{}}
}

func (c *realClock) Now() time.Time {
	return c.clock.Now()
}

func (c *realClock) Sleep(ctx context.Context, d time.Duration) error {
	timer := c.clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C():
		return nil
	}
}

// FakeClock is a Clock whose Sleep advances time instantly.
// It records every requested sleep so tests can assert on the retry cadence.
type FakeClock struct {
	clock *testingclock.FakeClock

	mu     sync.Mutex
	sleeps []time.Duration
}

// NewFakeClock returns a FakeClock set to t
func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{clock: testingclock.NewFakeClock(t)}
}

func (c *FakeClock) Now() time.Time {
	return c.clock.Now()
}

func (c *FakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	c.sleeps = append(c.sleeps, d)
	c.mu.Unlock()
	c.clock.Step(d)
	return nil
}

// Step moves the clock forward without recording a sleep
func (c *FakeClock) Step(d time.Duration) {
	c.clock.Step(d)
}

// Sleeps returns the durations passed to Sleep so far
func (c *FakeClock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]time.Duration, len(c.sleeps))
	copy(out, c.sleeps)
	return out
}
