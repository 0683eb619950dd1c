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

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"text/template"
	"time"
)

const defaultWebhookTimeout = 10 * time.Second

type WebhookConfig struct {
	Enabled  bool          `json:"enabled"`
	URL      string        `json:"url"`
	Headers  []Header      `json:"headers,omitempty"`  // Custom headers
	Template string        `json:"template,omitempty"` // Optional JSON template
	Cooldown time.Duration `json:"cooldown,omitempty"`
	Timeout  time.Duration `json:"timeout,omitempty"`
}

type Header struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// WebhookAlert is one notification. Lines become one attachment each in
// the Slack rendering.
type WebhookAlert struct {
	Title     string   `json:"title"`
	Color     string   `json:"color"`
	Lines     []string `json:"lines"`
	Timestamp string   `json:"timestamp"`
}

type WebhookAlerter struct {
	config         WebhookConfig
	client         *http.Client
	lastAlertTimes map[string]time.Time
	mu             sync.Mutex
	bufferPool     *sync.Pool
	tmpl           *template.Template
}

var _ AlertService = (*WebhookAlerter)(nil)

// NewWebhookAlerter parses the payload template up front so a broken
// template is reported at startup rather than on the first alert.
func NewWebhookAlerter(config WebhookConfig) (*WebhookAlerter, error) {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = defaultWebhookTimeout
	}

	w := &WebhookAlerter{
		config: config,
		client: &http.Client{
			Timeout: timeout,
		},
		lastAlertTimes: make(map[string]time.Time),
		bufferPool: &sync.Pool{
			New: func() interface{} {
				return new(bytes.Buffer)
			},
		},
	}

	if config.Template != "" {
		tmpl, err := template.New("webhook").
			Funcs(w.getTemplateFuncs()).
			Parse(config.Template)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrTemplateParse, err)
		}

		w.tmpl = tmpl
	}

	return w, nil
}

func (w *WebhookAlerter) IsEnabled() bool {
	return w.config.Enabled && w.config.URL != ""
}

func (w *WebhookAlerter) getTemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"json": func(v interface{}) (string, error) {
			buf := w.bufferPool.Get().(*bytes.Buffer)
			buf.Reset()
			defer w.bufferPool.Put(buf)

			enc := json.NewEncoder(buf)
			if err := enc.Encode(v); err != nil {
				return "", fmt.Errorf("JSON marshaling failed: %w", err)
			}

			return strings.TrimSpace(buf.String()), nil
		},
	}
}

func (w *WebhookAlerter) Alert(ctx context.Context, alert *WebhookAlert) error {
	if !w.IsEnabled() {
		log.Printf("alerts: webhook disabled, skipping alert: %s", alert.Title)
		return ErrWebhookDisabled
	}

	if err := w.checkCooldown(alert.Title); err != nil {
		return err
	}

	if alert.Timestamp == "" {
		alert.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	payload, err := w.preparePayload(alert)
	if err != nil {
		return fmt.Errorf("failed to prepare payload: %w", err)
	}

	return w.sendRequest(ctx, payload)
}

func (w *WebhookAlerter) checkCooldown(alertTitle string) error {
	if w.config.Cooldown <= 0 {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	lastAlertTime, exists := w.lastAlertTimes[alertTitle]
	if exists && time.Since(lastAlertTime) < w.config.Cooldown {
		log.Printf("alerts: '%s' is within cooldown period, skipping", alertTitle)
		return ErrWebhookCooldown
	}

	w.lastAlertTimes[alertTitle] = time.Now()

	return nil
}

func (w *WebhookAlerter) preparePayload(alert *WebhookAlert) ([]byte, error) {
	if w.tmpl == nil {
		buf := w.bufferPool.Get().(*bytes.Buffer)
		buf.Reset()
		defer w.bufferPool.Put(buf)

		enc := json.NewEncoder(buf)
		if err := enc.Encode(alert); err != nil {
			return nil, fmt.Errorf("failed to marshal alert: %w", err)
		}

		return append([]byte(nil), buf.Bytes()...), nil
	}

	return w.executeTemplate(alert)
}

func (w *WebhookAlerter) executeTemplate(alert *WebhookAlert) ([]byte, error) {
	buf := w.bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer w.bufferPool.Put(buf)

	if err := w.tmpl.Execute(buf, map[string]interface{}{
		"alert": alert,
	}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTemplateExecution, err)
	}

	if !json.Valid(buf.Bytes()) {
		return nil, ErrInvalidJSON
	}

	return append([]byte(nil), buf.Bytes()...), nil
}

func (w *WebhookAlerter) sendRequest(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.config.URL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	w.setHeaders(req)

	resp, err := w.client.Do(req) //nolint:bodyclose // Response body is closed later
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			log.Printf("alerts: failed to close response body: %v", err)
		}
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errBuf := w.bufferPool.Get().(*bytes.Buffer)
		errBuf.Reset()
		defer w.bufferPool.Put(errBuf)

		_, _ = io.Copy(errBuf, io.LimitReader(resp.Body, 4<<10))

		return fmt.Errorf("%w: status=%d body=%s", ErrWebhookStatus, resp.StatusCode, errBuf.String())
	}

	return nil
}

func (w *WebhookAlerter) setHeaders(req *http.Request) {
	hasContentType := false

	for _, header := range w.config.Headers {
		if strings.EqualFold(header.Key, "content-type") {
			hasContentType = true
		}

		req.Header.Set(header.Key, header.Value)
	}

	if !hasContentType {
		req.Header.Set("Content-Type", "application/json")
	}
}
