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

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/mfreeman451/fleetwatch/pkg/alerts"
	"github.com/mfreeman451/fleetwatch/pkg/balena"
	"github.com/mfreeman451/fleetwatch/pkg/config"
	"github.com/mfreeman451/fleetwatch/pkg/db"
	"github.com/mfreeman451/fleetwatch/pkg/health"
	"github.com/mfreeman451/fleetwatch/pkg/heartbeat"
	"github.com/mfreeman451/fleetwatch/pkg/models"
	"github.com/mfreeman451/fleetwatch/pkg/snapshot"
)

// getWithTimeout issues a GET that gives up after timeout, like an uptime
// pinger with a short client deadline.
func getWithTimeout(t *testing.T, url string, timeout time.Duration) error {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	if err == nil {
		_ = resp.Body.Close()
	}

	return err
}

func TestHealthCheckRunOutlivesCaller(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := NewMockHealthRunner(ctrl)

	started := make(chan struct{})
	release := make(chan struct{})
	runErr := make(chan error, 1)

	runner.EXPECT().
		Run(gomock.Any()).
		DoAndReturn(func(ctx context.Context) (*health.Result, error) {
			close(started)
			<-release

			_, hasDeadline := ctx.Deadline()
			assert.True(t, hasDeadline)

			runErr <- ctx.Err()

			return &health.Result{}, nil
		})

	s := NewAPIServer(Options{Runner: runner, RunTimeout: time.Minute})
	srv := httptest.NewServer(s.Handler())

	ctx, cancel := context.WithCancel(context.Background())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/health-check", http.NoBody)
	require.NoError(t, err)

	clientDone := make(chan error, 1)

	go func() {
		resp, err := http.DefaultClient.Do(req)
		if err == nil {
			_ = resp.Body.Close()
		}

		clientDone <- err
	}()

	<-started
	cancel()
	require.Error(t, <-clientDone)

	close(release)
	srv.Close()

	assert.NoError(t, <-runErr)
}

func TestHealthCheckRunTimeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := NewMockHealthRunner(ctrl)

	runner.EXPECT().
		Run(gomock.Any()).
		DoAndReturn(func(ctx context.Context) (*health.Result, error) {
			<-ctx.Done()

			return nil, ctx.Err()
		})

	s := NewAPIServer(Options{Runner: runner, RunTimeout: 50 * time.Millisecond})

	rec := serve(s, "/health-check")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHealthCheckAlertSentAfterCallerHangsUp(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	database, err := db.New(ctx, config.DatabaseConfig{
		Driver: config.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "fleetwatch.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	// Two earlier offline snapshots of A, the last one 10h ago.
	for _, age := range []time.Duration{20 * time.Hour, 10 * time.Hour} {
		at := now.Add(-age)

		written, err := database.InsertSnapshotBatch(ctx, &models.SnapshotBatch{
			Rows: []models.StatusSnapshot{
				{DeviceID: "A", HealthStatus: models.StatusOffline, CreatedAt: at},
			},
			ClaimedAt:   at,
			StaleBefore: at.Add(-6 * time.Hour),
		})
		require.NoError(t, err)
		require.True(t, written)
	}

	fleet := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"d":[{"owns__device":[{"device_name":"A","is_online":false}]}]}`))
	}))
	t.Cleanup(fleet.Close)

	delivered := make(chan struct{}, 1)

	slack := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.WriteHeader(http.StatusOK)

		delivered <- struct{}{}
	}))
	t.Cleanup(slack.Close)

	client, err := balena.NewClient(balena.Config{APIURL: fleet.URL, AppID: "1", BearerToken: "token"})
	require.NoError(t, err)

	webhook, err := alerts.NewSlackWebhook(slack.URL, 5*time.Second, nil)
	require.NoError(t, err)

	gate := heartbeat.NewGate(database, 6*time.Hour)
	checker := health.NewChecker(
		client,
		gate,
		snapshot.NewStore(database, gate),
		snapshot.NewAggregator(database, 36*time.Hour),
		alerts.NewDispatcher(alerts.DispatcherConfig{Threshold: 3}, webhook),
	)

	results := make(chan *health.Result, 1)
	checker.OnResult(func(res *health.Result, _ error) { results <- res })

	srv := httptest.NewServer(NewAPIServer(Options{Runner: checker, DB: database}).Handler())
	t.Cleanup(srv.Close)

	require.Error(t, getWithTimeout(t, srv.URL+"/health-check", 150*time.Millisecond))

	select {
	case <-delivered:
	case <-time.After(5 * time.Second):
		t.Fatal("alert was not delivered after the caller disconnected")
	}

	res := <-results
	require.NotNil(t, res)
	assert.True(t, res.Persist.Written)
	assert.True(t, res.Dispatch.Sent)
	require.NoError(t, res.Dispatch.Err)
	require.Len(t, res.Dispatch.Alerted, 1)
	assert.Equal(t, int64(3), res.Dispatch.Alerted[0].OfflineCount)
}
