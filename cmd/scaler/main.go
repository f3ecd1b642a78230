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
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"k8s.io/client-go/kubernetes"
	"k8s.io/klog/v2"

	"github.com/fluxcd/replica-scaler/pkg/auth"
	"github.com/fluxcd/replica-scaler/pkg/cluster"
	"github.com/fluxcd/replica-scaler/pkg/logger"
	"github.com/fluxcd/replica-scaler/pkg/retry"
	"github.com/fluxcd/replica-scaler/pkg/runner"
	"github.com/fluxcd/replica-scaler/pkg/scaler"
	"github.com/fluxcd/replica-scaler/pkg/signals"
	"github.com/fluxcd/replica-scaler/pkg/version"
)

var (
	apiURL                string
	namespace             string
	deployment            string
	replicas              string
	token                 string
	tokenFile             string
	kind                  string
	kubeconfig            string
	insecureSkipTLSVerify bool
	caFile                string
	scaleMode             string
	ocBinary              string
	discoveryTimeout      time.Duration
	discoveryInterval     time.Duration
	commandTimeout        time.Duration
	commandInterval       time.Duration
	commandAttemptTimeout time.Duration
	confirmAttempts       int
	confirmInterval       time.Duration
	requestTimeout        time.Duration
	logLevel              string
	zapEncoding           string
	zapReplaceGlobals     bool
	slackURL              string
	slackUser             string
	slackChannel          string
	discordURL            string
	pushgatewayURL        string
	k8sVersionConstraint  string
	ver                   bool
)

func init() {
	flag.StringVar(&apiURL, "api-url", "", "The address of the Kubernetes or OpenShift API server.")
	flag.StringVar(&namespace, "namespace", "", "Namespace of the workload to scale.")
	flag.StringVar(&deployment, "deployment", "", "Name prefix of the workload to scale.")
	flag.StringVar(&replicas, "replicas", "", "Target replica count, decimal, hexadecimal (0x, #) or octal (leading 0).")
	flag.StringVar(&token, "token", "", "Bearer token. Defaults to the content of the token file.")
	flag.StringVar(&tokenFile, "token-file", auth.ServiceAccountTokenFile, "Token file used when no token is set.")
	flag.StringVar(&kind, "kind", string(scaler.KindReplicationController), "Workload kind, can be ReplicationController or Deployment.")
	flag.StringVar(&kubeconfig, "kubeconfig", "", "Path to a kubeconfig. The API URL and token override its values.")
	flag.BoolVar(&insecureSkipTLSVerify, "insecure-skip-tls-verify", false, "Skip the API server certificate validation.")
	flag.StringVar(&caFile, "ca-file", "", "PEM bundle used to validate the API server certificate.")
	flag.StringVar(&scaleMode, "scale-mode", "api", "Scale command implementation, can be api or exec.")
	flag.StringVar(&ocBinary, "oc-binary", "oc", "CLI used by the exec scale mode, oc or kubectl.")
	flag.DurationVar(&discoveryTimeout, "discovery-timeout", 180*time.Second, "How long to look for the workload.")
	flag.DurationVar(&discoveryInterval, "discovery-interval", 10*time.Second, "Pause between two workload lookups.")
	flag.DurationVar(&commandTimeout, "command-timeout", 60*time.Second, "How long to retry the scale command.")
	flag.DurationVar(&commandInterval, "command-interval", 10*time.Second, "Pause between two scale command attempts.")
	flag.DurationVar(&commandAttemptTimeout, "command-attempt-timeout", 0, "Bound of a single scale command attempt, 0 means bounded by the command timeout only.")
	flag.IntVar(&confirmAttempts, "confirm-attempts", 5, "Replica count reads before giving up.")
	flag.DurationVar(&confirmInterval, "confirm-interval", time.Second, "Pause between two replica count reads.")
	flag.DurationVar(&requestTimeout, "request-timeout", 30*time.Second, "Timeout of a single Kubernetes API call.")
	flag.StringVar(&logLevel, "log-level", "info", "Log level can be: debug, info, warning, error.")
	flag.StringVar(&zapEncoding, "zap-encoding", "json", "Zap logger encoding.")
	flag.BoolVar(&zapReplaceGlobals, "zap-replace-globals", false, "Whether to change the logging level of the global zap logger.")
	flag.StringVar(&slackURL, "slack-url", "", "Slack hook URL.")
	flag.StringVar(&slackUser, "slack-user", "replica-scaler", "Slack user name.")
	flag.StringVar(&slackChannel, "slack-channel", "", "Slack channel.")
	flag.StringVar(&discordURL, "discord-url", "", "Discord hook URL.")
	flag.StringVar(&pushgatewayURL, "pushgateway-url", "", "Prometheus Pushgateway URL.")
	flag.StringVar(&k8sVersionConstraint, "k8s-version-constraint", "", "Semver constraint the API server version must satisfy, e.g. >=1.16.0.")
	flag.BoolVar(&ver, "version", false, "Print version")
}

func main() {
	flag.Parse()

	if ver {
		fmt.Println("replica-scaler version", version.VERSION, "revision ", version.REVISION)
		os.Exit(0)
	}

	progress := logger.NewProgress(os.Stdout, "")

	logger, err := logger.NewLoggerWithEncoding(logLevel, zapEncoding)
	if err != nil {
		log.Fatalf("Error creating logger: %v", err)
	}
	if zapReplaceGlobals {
		zap.ReplaceGlobals(logger.Desugar())
	}
	klog.SetLogger(zapr.NewLogger(logger.Desugar()))

	os.Exit(run(logger, progress))
}

func run(logger *zap.SugaredLogger, progress *logger.Progress) int {
	defer logger.Sync()

	stopCh := signals.SetupSignalHandler()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-stopCh:
			logger.Info("Shutting down, scale run canceled")
			cancel()
		case <-ctx.Done():
		}
	}()

	req, err := scaler.NewScaleRequest(apiURL, namespace, deployment, replicas, token, scaler.Kind(kind))
	if err != nil {
		logger.Errorf("Error parsing the scale request: %v", err)
		return 1
	}

	cfg := scaler.Config{
		Discovery:      retry.Policy{Interval: discoveryInterval, Timeout: discoveryTimeout},
		Invocation:     retry.Policy{Interval: commandInterval, Timeout: commandTimeout},
		Confirmation:   retry.Policy{Interval: confirmInterval, MaxAttempts: confirmAttempts},
		AttemptTimeout: commandAttemptTimeout,
	}
	if err := cfg.Validate(); err != nil {
		logger.Errorf("Error validating the retry configuration: %v", err)
		return 1
	}

	credentials := auth.NewResolver(tokenFile, logger)
	connector := &cluster.Connector{
		Kubeconfig:            kubeconfig,
		InsecureSkipTLSVerify: insecureSkipTLSVerify,
		CAFile:                caFile,
		Timeout:               requestTimeout,
		UserAgent:             fmt.Sprintf("replica-scaler/%s", version.VERSION),
	}

	if k8sVersionConstraint != "" {
		if err := checkServerVersion(connector, req.WithAuthToken(credentials.DeriveAuth(req.AuthToken)), logger); err != nil {
			logger.Errorf("%v", err)
			return 1
		}
	}

	var commandRunner scaler.CommandRunner
	switch scaleMode {
	case "api":
		commandRunner = &runner.APIRunner{}
	case "exec":
		commandRunner = &runner.ExecRunner{Binary: ocBinary, InsecureSkipTLSVerify: insecureSkipTLSVerify, Logger: logger}
	default:
		logger.Errorf("Scale mode %s not supported, can be api or exec", scaleMode)
		return 1
	}

	logger.Infof("Starting replica-scaler version %s revision %s", version.VERSION, version.REVISION)

	orchestrator := &scaler.Orchestrator{
		Connector:   connector,
		Runner:      commandRunner,
		Credentials: credentials,
		Config:      cfg,
		Progress:    progress,
		Logger:      logger,
	}
	result := orchestrator.Run(ctx, req)
	if err := progress.Err(); err != nil {
		logger.Warnf("Progress log is incomplete: %v", err)
	}

	publish(req, result, logger)

	if !result.Succeeded() {
		return 1
	}
	return 0
}

func checkServerVersion(connector *cluster.Connector, req scaler.ScaleRequest, logger *zap.SugaredLogger) error {
	restConfig, err := connector.RestConfig(req)
	if err != nil {
		return err
	}
	kubeClient, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return fmt.Errorf("error building kubernetes clientset: %w", err)
	}

	serverVersion, err := cluster.CheckServerVersion(kubeClient.Discovery(), k8sVersionConstraint)
	if err != nil {
		return fmt.Errorf("unsupported version of kubernetes detected: %w", err)
	}
	logger.Infof("Connected to Kubernetes API %s", serverVersion)
	return nil
}
