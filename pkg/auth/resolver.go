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

package auth

import (
	"os"
	"strings"

	"go.uber.org/zap"
)

// ServiceAccountTokenFile is where the kubelet mounts the pod service account token
const ServiceAccountTokenFile = "/var/run/secrets/kubernetes.io/serviceaccount/token"

// Resolver picks the bearer token of a run.
// A configured token wins, otherwise the token file is read.
type Resolver struct {
	TokenFile string
	Logger    *zap.SugaredLogger
}

// NewResolver returns a Resolver falling back to tokenFile,
// the service account token is used when tokenFile is empty
func NewResolver(tokenFile string, logger *zap.SugaredLogger) *Resolver {
	if tokenFile == "" {
		tokenFile = ServiceAccountTokenFile
	}
	return &Resolver{TokenFile: tokenFile, Logger: logger}
}

// DeriveAuth returns token when set and the token file content otherwise.
// An unreadable token file yields an empty token and the request goes out anonymous.
func (r *Resolver) DeriveAuth(token string) string {
	if token = strings.TrimSpace(token); token != "" {
		return token
	}

	b, err := os.ReadFile(r.TokenFile)
	if err != nil {
		if r.Logger != nil {
			r.Logger.Warnf("No token configured and reading %s failed: %v", r.TokenFile, err)
		}
		return ""
	}

	if r.Logger != nil {
		r.Logger.Debugf("Using token from %s", r.TokenFile)
	}
	return strings.TrimSpace(string(b))
}
