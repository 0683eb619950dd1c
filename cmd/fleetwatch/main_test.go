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

package main

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfreeman451/fleetwatch/pkg/alerts"
	"github.com/mfreeman451/fleetwatch/pkg/models"
)

const fleetBody = `{"d":[{"owns__device":[
	{"device_name":"alpha","is_online":true},
	{"device_name":"bravo","is_online":false}
]}]}`

func clearEnv(t *testing.T) {
	t.Helper()

	for _, k := range []string{
		"BALENA_APP_ID", "BALENA_API_BEARER", "SLACK_WEBHOOK_URL",
		"DATABASE_URL", "FLEETWATCH_LISTEN_ADDR", "FLEETWATCH_CONFIG",
	} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, apiURL string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "fleetwatch.yaml")

	content := fmt.Sprintf(`
database:
  driver: sqlite3
  dsn: %s
balena:
  api_url: %s
  app_id: "1"
  bearer_token: token
  rate_limit: 100
`, filepath.Join(dir, "fleetwatch.db"), apiURL)

	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func fleetServer(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(fleetBody))
	}))
	t.Cleanup(srv.Close)

	return srv
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer

	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}

func TestCheckCommand(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, fleetServer(t).URL)

	out, err := execute(t, "check", "--config", path)
	require.NoError(t, err)

	assert.Contains(t, out, "2 device(s), 1 offline")
	assert.Contains(t, out, "written (2 rows)")
	assert.Contains(t, out, "bravo")

	// The heartbeat written by the first run suppresses the second batch.
	out, err = execute(t, "check", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "skipped, heartbeat is recent")
}

func TestCheckCommandUpstreamFailure(t *testing.T) {
	clearEnv(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	_, err := execute(t, "check", "--config", writeConfig(t, srv.URL))
	require.Error(t, err)
}

func TestPruneCommand(t *testing.T) {
	clearEnv(t)

	out, err := execute(t, "prune", "--config", writeConfig(t, fleetServer(t).URL))
	require.NoError(t, err)

	assert.Contains(t, out, "deleted")
	assert.NotContains(t, out, "archived")
}

func TestInvalidConfig(t *testing.T) {
	clearEnv(t)

	_, err := execute(t, "check")
	assert.ErrorContains(t, err, "app_id is required")
}

func TestDispatchState(t *testing.T) {
	alerted := []models.OfflineFrequency{{DeviceID: "A", OfflineCount: 4}}

	tests := []struct {
		name   string
		result alerts.DispatchResult
		want   string
	}{
		{name: "nothing_to_send", result: alerts.DispatchResult{}, want: ""},
		{
			name:   "sent",
			result: alerts.DispatchResult{Alerted: alerted, Sent: true},
			want:   "alerted on 1 device(s)",
		},
		{
			name:   "gate_closed",
			result: alerts.DispatchResult{Alerted: alerted, Suppressed: true},
			want:   "suppressed until the next snapshot",
		},
		{
			name:   "cooldown",
			result: alerts.DispatchResult{Alerted: alerted, Suppressed: true, Cooldown: true},
			want:   "suppressed by webhook cooldown",
		},
		{
			name:   "failed",
			result: alerts.DispatchResult{Alerted: alerted, Err: errors.New("connection refused")},
			want:   "connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := dispatchState(tt.result)

			if tt.want == "" {
				assert.Empty(t, got)

				return
			}

			assert.Contains(t, got, tt.want)
		})
	}
}
