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
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfreeman451/fleetwatch/pkg/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, timeout time.Duration) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{
		APIURL:      srv.URL,
		AppID:       "1234",
		BearerToken: "secret",
		Timeout:     timeout,
	})
	require.NoError(t, err)

	return c
}

func TestNewClientValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{name: "missing app id", cfg: Config{BearerToken: "x"}, wantErr: ErrMissingAppID},
		{name: "missing token", cfg: Config{AppID: "1"}, wantErr: ErrMissingToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.cfg)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	c, err := NewClient(Config{AppID: "42", BearerToken: "x"})
	require.NoError(t, err)
	assert.Equal(t, DefaultAPIURL+"/v6/application(42)?$expand=owns__device", c.devicesURL())
}

func TestListDevices(t *testing.T) {
	observedAt := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v6/application(1234)", r.URL.Path)
		assert.Equal(t, "owns__device", r.URL.Query().Get("$expand"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"d":[{"id":1234,"owns__device":[
			{"device_name":"bold-river","is_online":true},
			{"device_name":"quiet-field","is_online":false},
			{"device_name":"","is_online":false}
		]}]}`))
	}, time.Second)
	c.now = func() time.Time { return observedAt }

	devices, err := c.ListDevices(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []models.DeviceObservation{
		{DeviceID: "bold-river", IsOnline: true, ObservedAt: observedAt},
		{DeviceID: "quiet-field", IsOnline: false, ObservedAt: observedAt},
	}, devices)
}

func TestListDevicesFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{}`, wantErr: ErrUnauthorized},
		{name: "forbidden", status: http.StatusForbidden, body: `{}`, wantErr: ErrUnauthorized},
		{name: "server error", status: http.StatusBadGateway, body: `upstream down`, wantErr: ErrUnexpectedStatus},
		{name: "invalid json", status: http.StatusOK, body: `{"d":`, wantErr: ErrMalformedResponse},
		{name: "unknown application", status: http.StatusOK, body: `{"d":[]}`, wantErr: ErrMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}, time.Second)

			devices, err := c.ListDevices(context.Background())
			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, devices)
		})
	}
}

func TestListDevicesTimeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	c := newTestClient(t, func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, 50*time.Millisecond)

	_, err := c.ListDevices(context.Background())
	require.Error(t, err)
}

func TestListDevicesRateLimited(t *testing.T) {
	var calls int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		_, _ = w.Write([]byte(`{"d":[{"owns__device":[]}]}`))
	}))
	defer srv.Close()

	c, err := NewClient(Config{
		APIURL:      srv.URL,
		AppID:       "1",
		BearerToken: "x",
		RateLimit:   0.001,
		Burst:       1,
	})
	require.NoError(t, err)

	devices, err := c.ListDevices(context.Background())
	require.NoError(t, err)
	assert.Empty(t, devices)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = c.ListDevices(ctx)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestListDevicesConcurrentCallersBounded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"d":[{"owns__device":[{"device_name":"a","is_online":true}]}]}`))
	}))
	defer srv.Close()

	timeout := 200 * time.Millisecond

	c, err := NewClient(Config{
		APIURL:      srv.URL,
		AppID:       "1",
		BearerToken: "x",
		Timeout:     timeout,
		RateLimit:   1,
		Burst:       2,
	})
	require.NoError(t, err)

	const callers = 6

	type outcome struct {
		took time.Duration
		err  error
	}

	results := make(chan outcome, callers)

	for i := 0; i < callers; i++ {
		go func() {
			start := time.Now()
			_, err := c.ListDevices(context.Background())
			results <- outcome{took: time.Since(start), err: err}
		}()
	}

	var ok int

	for i := 0; i < callers; i++ {
		res := <-results

		assert.Less(t, res.took, timeout+500*time.Millisecond)

		if res.err == nil {
			ok++
		}
	}

	assert.Equal(t, 2, ok)
}
