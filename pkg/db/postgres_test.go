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

package db

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfreeman451/fleetwatch/pkg/models"
)

// getTestPostgres connects to FLEETWATCH_TEST_DATABASE_URL and skips the
// test when no server is reachable.
func getTestPostgres(t *testing.T) *PostgresDB {
	t.Helper()

	url := os.Getenv("FLEETWATCH_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("FLEETWATCH_TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := NewPostgres(ctx, url)
	if err != nil {
		t.Skipf("postgres not available: %v", err)
	}

	_, err = db.Pool.Exec(ctx, `TRUNCATE status_snapshots, heartbeat, events, outage_events`)
	require.NoError(t, err)

	t.Cleanup(func() { _ = db.Close() })

	return db
}

func TestPostgresSnapshotBatch(t *testing.T) {
	db := getTestPostgres(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	interval := 6 * time.Hour

	written, err := db.InsertSnapshotBatch(ctx, batchAt(now, interval, map[string]models.HealthStatus{
		"dev-a": models.StatusOffline,
		"dev-b": models.StatusOnline,
	}))
	require.NoError(t, err)
	assert.True(t, written)

	written, err = db.InsertSnapshotBatch(ctx, batchAt(now.Add(time.Hour), interval, map[string]models.HealthStatus{
		"dev-a": models.StatusOffline,
	}))
	require.NoError(t, err)
	assert.False(t, written)

	report, err := db.CountOfflineSince(ctx, now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []models.OfflineFrequency{{DeviceID: "dev-a", OfflineCount: 1}}, report)

	hb, err := db.GetHeartbeat(ctx)
	require.NoError(t, err)
	assert.True(t, now.Equal(hb.UpdatedAt))

	deleted, err := db.CleanOldData(ctx, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
}

func TestPostgresEvents(t *testing.T) {
	db := getTestPostgres(t)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)

	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, db.InsertEvent(ctx, &models.Event{
			ID:        id,
			EventType: models.EventTypePowerOutageProbe,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	page, err := db.ListEvents(ctx, models.EventTypePowerOutageProbe, base.Add(2*time.Second), 10)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "b", page[0].ID)
	assert.JSONEq(t, `{}`, string(page[0].Payload))
}
