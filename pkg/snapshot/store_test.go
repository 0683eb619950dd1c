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

package snapshot

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/mfreeman451/fleetwatch/pkg/db"
	"github.com/mfreeman451/fleetwatch/pkg/heartbeat"
	"github.com/mfreeman451/fleetwatch/pkg/models"
)

func TestStorePersist(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	mockDB := db.NewMockService(ctrl)

	observations := []models.DeviceObservation{
		{DeviceID: "dev-a", IsOnline: false, ObservedAt: now.Add(-time.Second)},
		{DeviceID: "dev-b", IsOnline: true, ObservedAt: now.Add(-time.Second)},
	}

	mockDB.EXPECT().
		InsertSnapshotBatch(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, batch *models.SnapshotBatch) (bool, error) {
			assert.Equal(t, now, batch.ClaimedAt)
			assert.Equal(t, now.Add(-6*time.Hour), batch.StaleBefore)
			assert.Equal(t, []models.StatusSnapshot{
				{DeviceID: "dev-a", HealthStatus: models.StatusOffline, CreatedAt: now},
				{DeviceID: "dev-b", HealthStatus: models.StatusOnline, CreatedAt: now},
			}, batch.Rows)

			return true, nil
		})

	store := NewStore(mockDB, heartbeat.NewGate(mockDB, 6*time.Hour))
	store.now = func() time.Time { return now }

	result := store.Persist(context.Background(), observations)
	require.NoError(t, result.Err)
	assert.True(t, result.Written)
	assert.Equal(t, 2, result.Rows)
}

func TestStorePersistNotClaimed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDB := db.NewMockService(ctrl)
	mockDB.EXPECT().InsertSnapshotBatch(gomock.Any(), gomock.Any()).Return(false, nil)

	store := NewStore(mockDB, heartbeat.NewGate(mockDB, 0))

	result := store.Persist(context.Background(), []models.DeviceObservation{{DeviceID: "dev-a"}})
	require.NoError(t, result.Err)
	assert.False(t, result.Written)
	assert.Zero(t, result.Rows)
}

func TestStorePersistFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDB := db.NewMockService(ctrl)
	mockDB.EXPECT().
		InsertSnapshotBatch(gomock.Any(), gomock.Any()).
		Return(false, db.ErrFailedToInsert)

	store := NewStore(mockDB, heartbeat.NewGate(mockDB, 0))

	result := store.Persist(context.Background(), []models.DeviceObservation{{DeviceID: "dev-a"}})
	require.ErrorIs(t, result.Err, ErrPersistence)
	require.ErrorIs(t, result.Err, db.ErrFailedToInsert)
	assert.False(t, result.Written)
}

func TestAggregatorOfflineCounts(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		report     []models.OfflineFrequency
		err        error
		wantReport []models.OfflineFrequency
		wantErr    bool
	}{
		{
			name:       "counts returned",
			report:     []models.OfflineFrequency{{DeviceID: "dev-a", OfflineCount: 4}},
			wantReport: []models.OfflineFrequency{{DeviceID: "dev-a", OfflineCount: 4}},
		},
		{
			name:       "nil report becomes empty",
			wantReport: []models.OfflineFrequency{},
		},
		{
			name:       "query failure degrades to empty report",
			err:        errors.New("no such table"),
			wantReport: []models.OfflineFrequency{},
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockDB := db.NewMockService(ctrl)
			mockDB.EXPECT().
				CountOfflineSince(gomock.Any(), now.Add(-DefaultWindow), now).
				Return(tt.report, tt.err)

			agg := NewAggregator(mockDB, 0)
			agg.now = func() time.Time { return now }

			result := agg.OfflineCounts(context.Background())
			assert.Equal(t, tt.wantReport, result.Report)

			if tt.wantErr {
				require.ErrorIs(t, result.Err, ErrAggregation)
			} else {
				require.NoError(t, result.Err)
			}
		})
	}
}

func TestPersistThenAggregate(t *testing.T) {
	database, err := db.NewSQLite(filepath.Join(t.TempDir(), "fleetwatch.db"))
	require.NoError(t, err)

	defer func() { _ = database.Close() }()

	ctx := context.Background()
	gate := heartbeat.NewGate(database, 0)

	persisted := NewStore(database, gate).Persist(ctx, []models.DeviceObservation{
		{DeviceID: "dev-a", IsOnline: false},
		{DeviceID: "dev-b", IsOnline: true},
	})
	require.NoError(t, persisted.Err)
	require.True(t, persisted.Written)

	result := NewAggregator(database, 0).OfflineCounts(ctx)
	require.NoError(t, result.Err)
	assert.Equal(t, []models.OfflineFrequency{{DeviceID: "dev-a", OfflineCount: 1}}, result.Report)

	assert.True(t, gate.IsRecent(ctx))

	// A second run inside the interval writes nothing.
	again := NewStore(database, gate).Persist(ctx, []models.DeviceObservation{
		{DeviceID: "dev-a", IsOnline: false},
	})
	require.NoError(t, again.Err)
	assert.False(t, again.Written)

	result = NewAggregator(database, 0).OfflineCounts(ctx)
	assert.Equal(t, []models.OfflineFrequency{{DeviceID: "dev-a", OfflineCount: 1}}, result.Report)
}
