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

package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fluxcd/replica-scaler/pkg/metrics"
	"github.com/fluxcd/replica-scaler/pkg/notifier"
	"github.com/fluxcd/replica-scaler/pkg/scaler"
	"github.com/fluxcd/replica-scaler/pkg/version"
)

const publishTimeout = 30 * time.Second

// publish sends the run outcome to the configured chat hook and Pushgateway.
// Failures are logged and never change the exit code.
func publish(req scaler.ScaleRequest, result scaler.Result, logger *zap.SugaredLogger) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	notifierClient, err := initNotifier()
	if err != nil {
		logger.Errorf("Error creating notifier: %v", err)
	} else {
		g.Go(func() error {
			message, fields, severity := notification(req, result)
			if err := notifierClient.Post(req.DeploymentPrefix, req.Namespace, message, fields, severity); err != nil {
				return fmt.Errorf("notification failed: %w", err)
			}
			return nil
		})
	}

	if pushgatewayURL != "" {
		g.Go(func() error {
			pusher, err := metrics.NewPusher(pushgatewayURL, "")
			if err != nil {
				return err
			}
			recorder := metrics.NewRecorder("replica_scaler", prometheus.NewRegistry())
			recorder.SetInfo(version.VERSION, version.REVISION)
			recorder.RecordRun(req, result)
			return pusher.Push(ctx, recorder, req.Namespace, req.DeploymentPrefix)
		})
	}

	if err := g.Wait(); err != nil {
		logger.Errorf("Publishing the run outcome failed: %v", err)
	}
}

func initNotifier() (notifier.Interface, error) {
	if discordURL != "" {
		return notifier.NewFactory(discordURL, slackUser, slackChannel).Notifier("discord")
	}
	return notifier.NewFactory(slackURL, slackUser, slackChannel).Notifier("")
}

func notification(req scaler.ScaleRequest, result scaler.Result) (string, []notifier.Field, string) {
	severity := "info"
	message := fmt.Sprintf("Scaling %s to %d replicas finished with %s", req.DeploymentPrefix, req.Replicas, result.Outcome)
	if !result.Succeeded() {
		severity = "error"
	}

	fields := []notifier.Field{
		{Name: "Outcome", Value: result.Outcome.String()},
		{Name: "Replicas", Value: strconv.Itoa(int(req.Replicas))},
		{Name: "Duration", Value: result.Duration.Round(time.Second).String()},
		{Name: "Attempts", Value: fmt.Sprintf("discovery %d, invocation %d, confirmation %d",
			result.Attempts.Discovery, result.Attempts.Invocation, result.Attempts.Confirmation)},
	}
	if result.Resource.Name != "" {
		fields = append(fields, notifier.Field{Name: "Resource", Value: result.Resource.Resource()})
	}
	if result.Err != nil {
		fields = append(fields, notifier.Field{Name: "Error", Value: result.Err.Error()})
	}
	fields = append(fields, notifier.Field{Name: "Run", Value: result.RunID})
	return message, fields, severity
}
