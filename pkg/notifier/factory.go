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
	"fmt"
	"strings"
)

type Factory struct {
	URL      string
	Username string
	Channel  string
}

func NewFactory(URL string, username string, channel string) *Factory {
	return &Factory{
		URL:      URL,
		Channel:  channel,
		Username: username,
	}
}

// Notifier returns the notifier for the hook URL, provider can be slack or discord.
// An empty provider is detected from the URL host.
func (f Factory) Notifier(provider string) (Interface, error) {
	if f.URL == "" {
		return &NopNotifier{}, nil
	}

	if provider == "" {
		switch {
		case strings.Contains(f.URL, "slack.com"):
			provider = "slack"
		case strings.Contains(f.URL, "discord.com"):
			provider = "discord"
		default:
			provider = "slack"
		}
	}

	switch provider {
	case "slack":
		return NewSlack(f.URL, f.Username, f.Channel)
	case "discord":
		return NewDiscord(f.URL, f.Username, f.Channel)
	}
	return nil, fmt.Errorf("provider %s not supported", provider)
}
