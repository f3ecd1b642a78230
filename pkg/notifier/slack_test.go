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

package notifier

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlack_Post(t *testing.T) {
	fields := []Field{
		{Name: "Outcome", Value: "ConfirmationTimedOut"},
		{Name: "Replicas", Value: "3"},
	}

	var payload SlackPayload
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(b, &payload))
	}))
	defer ts.Close()

	slack, err := NewSlack(ts.URL, "replica-scaler", "deployments")
	require.NoError(t, err)

	err = slack.Post("frontend", "shop", "scaling failed", fields, "error")
	require.NoError(t, err)

	assert.Equal(t, "deployments", payload.Channel)
	assert.Equal(t, "replica-scaler", payload.Username)
	require.Len(t, payload.Attachments, 1)
	assert.Equal(t, "frontend.shop", payload.Attachments[0].AuthorName)
	assert.Equal(t, "danger", payload.Attachments[0].Color)
	assert.Len(t, payload.Attachments[0].Fields, len(fields))
}

func TestNewSlack_Validation(t *testing.T) {
	_, err := NewSlack("hooks.slack.com", "replica-scaler", "")
	assert.Error(t, err)

	_, err = NewSlack("https://hooks.slack.com/services/T/B/X", "", "")
	assert.Error(t, err)
}
