/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package alerts

import "time"

const SlackColorDanger = "danger"

// SlackTemplate renders a WebhookAlert as a Slack incoming-webhook message
// with one attachment per line.
const SlackTemplate = `{
  "text": {{json .alert.Title}},
  "attachments": [
    {{- range $i, $line := .alert.Lines}}{{if $i}},{{end}}
    {
      "color": {{json $.alert.Color}},
      "text": {{json $line}}
    }
    {{- end}}
  ]
}`

// NewSlackWebhook returns an alerter for a Slack incoming webhook. It is
// disabled when webhookURL is empty.
func NewSlackWebhook(webhookURL string, timeout time.Duration, headers []Header) (*WebhookAlerter, error) {
	return NewWebhookAlerter(WebhookConfig{
		Enabled:  webhookURL != "",
		URL:      webhookURL,
		Headers:  headers,
		Template: SlackTemplate,
		Timeout:  timeout,
	})
}
