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
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"testing/iotest"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/fluxcd/replica-scaler/pkg/logger"
	"github.com/fluxcd/replica-scaler/pkg/retry"
)

type listResult struct {
	resources map[string]Resource
	err       error
}

type getResult struct {
	resource *Resource
	err      error
}

// fakeClient replays scripted responses, the last response repeats
type fakeClient struct {
	mu         sync.Mutex
	lists      []listResult
	gets       []getResult
	listCalls  int
	getCalls   int
	scaleCalls []int32
}

func (c *fakeClient) ListResources(_ context.Context, _ Kind, _ string) (map[string]Resource, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.lists) == 0 {
		c.listCalls++
		return map[string]Resource{}, nil
	}
	r := c.lists[min(c.listCalls, len(c.lists)-1)]
	c.listCalls++
	return r.resources, r.err
}

func (c *fakeClient) GetResource(_ context.Context, _ Kind, _ string, _ string) (*Resource, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.gets) == 0 {
		c.getCalls++
		return nil, ErrResourceNotFound
	}
	r := c.gets[min(c.getCalls, len(c.gets)-1)]
	c.getCalls++
	return r.resource, r.err
}

func (c *fakeClient) ScaleResource(_ context.Context, _ Kind, _ string, _ string, replicas int32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scaleCalls = append(c.scaleCalls, replicas)
	return nil
}

type fakeConnector struct {
	client ClusterClient
	errs   []error
	tokens []string
}

func (c *fakeConnector) Connect(_ context.Context, req ScaleRequest) (ClusterClient, error) {
	call := len(c.tokens)
	c.tokens = append(c.tokens, req.AuthToken)
	if call < len(c.errs) && c.errs[call] != nil {
		return nil, c.errs[call]
	}
	return c.client, nil
}

type runResult struct {
	startErr error
	output   string
	readErr  error
	waitErr  error
	// hang blocks reads until the attempt context is done
	hang bool
}

// fakeRunner replays scripted command runs, the last run repeats
type fakeRunner struct {
	runs   []runResult
	starts int
	stops  int
}

func (r *fakeRunner) Start(ctx context.Context, _ ClusterClient, _ ScaleRequest, _ ResourceRef) (Command, error) {
	run := runResult{}
	if len(r.runs) > 0 {
		run = r.runs[min(r.starts, len(r.runs)-1)]
	}
	r.starts++
	if run.startErr != nil {
		return nil, run.startErr
	}

	var reader io.Reader = strings.NewReader(run.output)
	if run.hang {
		reader = io.MultiReader(reader, &hangingReader{ctx: ctx})
	}
	if run.readErr != nil {
		reader = io.MultiReader(reader, iotest.ErrReader(run.readErr))
	}
	return &fakeCommand{Reader: reader, waitErr: run.waitErr, runner: r}, nil
}

type hangingReader struct {
	ctx context.Context
}

func (r *hangingReader) Read(_ []byte) (int, error) {
	<-r.ctx.Done()
	return 0, r.ctx.Err()
}

type fakeCommand struct {
	io.Reader
	waitErr error
	runner  *fakeRunner
}

func (c *fakeCommand) Wait() error {
	return c.waitErr
}

func (c *fakeCommand) Stop() error {
	c.runner.stops++
	return nil
}

type fakeCredentials struct {
	token string
}

func (c fakeCredentials) DeriveAuth(token string) string {
	if token != "" {
		return token
	}
	return c.token
}

func rc(name string, current int32) Resource {
	return Resource{Kind: KindReplicationController, Name: name, Namespace: "test", CurrentReplicas: current}
}

func rcp(name string, current int32) *Resource {
	r := rc(name, current)
	return &r
}

func newTestRequest(t *testing.T, prefix string, replicas string) ScaleRequest {
	req, err := NewScaleRequest("https://openshift.default.svc.cluster.local", "test", prefix, replicas, "token", KindReplicationController)
	require.NoError(t, err)
	return req
}

type orchestratorFixture struct {
	orchestrator *Orchestrator
	client       *fakeClient
	connector    *fakeConnector
	runner       *fakeRunner
	clock        *retry.FakeClock
	log          *bytes.Buffer
}

func newOrchestratorFixture(t *testing.T, client *fakeClient, runner *fakeRunner) orchestratorFixture {
	connector := &fakeConnector{client: client}
	clock := retry.NewFakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	var buf bytes.Buffer

	return orchestratorFixture{
		orchestrator: &Orchestrator{
			Connector: connector,
			Runner:    runner,
			Config:    DefaultConfig(),
			Clock:     clock,
			Progress:  logger.NewProgress(&buf, ""),
			Logger:    zaptest.NewLogger(t).Sugar(),
		},
		client:    client,
		connector: connector,
		runner:    runner,
		clock:     clock,
		log:       &buf,
	}
}
