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
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/fluxcd/replica-scaler/pkg/scaler"
)

// ExecRunner scales workloads by running the oc or kubectl CLI
type ExecRunner struct {
	// Binary is the CLI to run, oc by default
	Binary string
	// InsecureSkipTLSVerify is passed to the CLI
	InsecureSkipTLSVerify bool
	Logger                *zap.SugaredLogger
}

// Args returns the CLI arguments for scaling ref to the request replica count
func (r *ExecRunner) Args(req scaler.ScaleRequest, ref scaler.ResourceRef) []string {
	args := []string{
		"scale",
		fmt.Sprintf("--replicas=%d", req.Replicas),
		ref.Resource(),
		"--namespace", ref.Namespace,
		"--server", req.APIEndpoint,
	}
	if req.AuthToken != "" {
		args = append(args, "--token", req.AuthToken)
	}
	if r.InsecureSkipTLSVerify {
		args = append(args, "--insecure-skip-tls-verify=true")
	}
	return args
}

// Start launches the CLI, combined stdout and stderr are read from the returned Command
func (r *ExecRunner) Start(ctx context.Context, _ scaler.ClusterClient, req scaler.ScaleRequest, ref scaler.ResourceRef) (scaler.Command, error) {
	binary := r.Binary
	if binary == "" {
		binary = "oc"
	}

	args := r.Args(req, ref)
	if r.Logger != nil {
		r.Logger.With("resource", ref.Name, "namespace", ref.Namespace).
			Debugf("running command %s %s", binary, strings.Join(redact(args), " "))
	}

	pr, pw := io.Pipe()
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stdout = pw
	cmd.Stderr = pw
	if err := cmd.Start(); err != nil {
		pw.Close()
		pr.Close()
		return nil, fmt.Errorf("command %s failed to start: %w", binary, err)
	}

	c := &execCommand{cmd: cmd, reader: pr, done: make(chan struct{})}
	go func() {
		c.err = cmd.Wait()
		pw.Close()
		close(c.done)
	}()
	return c, nil
}

type execCommand struct {
	cmd    *exec.Cmd
	reader *io.PipeReader
	done   chan struct{}
	err    error

	stopOnce sync.Once
}

func (c *execCommand) Read(p []byte) (int, error) {
	return c.reader.Read(p)
}

// Wait blocks until the process exited
func (c *execCommand) Wait() error {
	<-c.done
	return c.err
}

// Stop kills the process if it is still running and releases the pipe
func (c *execCommand) Stop() error {
	var err error
	c.stopOnce.Do(func() {
		select {
		case <-c.done:
		default:
			if killErr := c.cmd.Process.Kill(); killErr != nil && !errors.Is(killErr, os.ErrProcessDone) {
				err = fmt.Errorf("killing process %d failed: %w", c.cmd.Process.Pid, killErr)
			}
		}
		c.reader.Close()
	})
	return err
}

func redact(args []string) []string {
	out := make([]string, len(args))
	copy(out, args)
	for i := range out {
		if out[i] == "--token" && i+1 < len(out) {
			out[i+1] = "<redacted>"
		}
	}
	return out
}
