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

package balena

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/mfreeman451/fleetwatch/pkg/models"
)

const (
	DefaultAPIURL  = "https://api.balena-cloud.com"
	defaultTimeout = 30 * time.Second
	maxErrorBody   = 4 << 10
)

// Config holds the credentials and tuning for a Client.
type Config struct {
	APIURL      string
	AppID       string
	BearerToken string
	Timeout     time.Duration
	// RateLimit caps outbound requests per second. Zero disables the limit.
	RateLimit float64
	Burst     int
	// HTTPClient overrides the default client. Timeout still bounds each call.
	HTTPClient *http.Client
}

// Client reads device connectivity from the Balena cloud API.
type Client struct {
	baseURL string
	appID   string
	token   string
	client  *http.Client
	limiter *rate.Limiter
	timeout time.Duration
	now     func() time.Time
}

type applicationResponse struct {
	D []struct {
		OwnsDevice []deviceRecord `json:"owns__device"`
	} `json:"d"`
}

type deviceRecord struct {
	DeviceName string `json:"device_name"`
	IsOnline   bool   `json:"is_online"`
}

var _ FleetClient = (*Client)(nil)

func NewClient(cfg Config) (*Client, error) {
	if cfg.AppID == "" {
		return nil, ErrMissingAppID
	}

	if cfg.BearerToken == "" {
		return nil, ErrMissingToken
	}

	baseURL := strings.TrimRight(cfg.APIURL, "/")
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	return &Client{
		baseURL: baseURL,
		appID:   cfg.AppID,
		token:   cfg.BearerToken,
		client:  httpClient,
		limiter: rate.NewLimiter(limit, burst),
		timeout: timeout,
		now:     time.Now,
	}, nil
}

func (c *Client) devicesURL() string {
	return fmt.Sprintf("%s/v6/application(%s)?$expand=owns__device", c.baseURL, url.PathEscape(c.appID))
}

// ListDevices performs a single request for the application's devices. It
// does not retry. The client timeout covers both the rate limiter wait and
// the request, so a call that cannot get a token in time fails at once.
func (c *Client) ListDevices(ctx context.Context) ([]models.DeviceObservation, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("balena rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.devicesURL(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	observedAt := c.now().UTC()

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch devices: %w", err)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			log.Printf("balena: failed to close response body: %v", err)
		}
	}(resp.Body)

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var payload applicationResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	if len(payload.D) == 0 {
		return nil, fmt.Errorf("%w: application %s not found", ErrMalformedResponse, c.appID)
	}

	devices := payload.D[0].OwnsDevice
	observations := make([]models.DeviceObservation, 0, len(devices))

	for _, d := range devices {
		if d.DeviceName == "" {
			log.Printf("balena: skipping device with empty name in application %s", c.appID)
			continue
		}

		observations = append(observations, models.DeviceObservation{
			DeviceID:   d.DeviceName,
			IsOnline:   d.IsOnline,
			ObservedAt: observedAt,
		})
	}

	return observations, nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: status=%d", ErrUnauthorized, resp.StatusCode)
	}

	return fmt.Errorf("%w: status=%d body=%s", ErrUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(body)))
}
