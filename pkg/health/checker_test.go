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

package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/mfreeman451/fleetwatch/pkg/alerts"
	"github.com/mfreeman451/fleetwatch/pkg/balena"
	"github.com/mfreeman451/fleetwatch/pkg/db"
	"github.com/mfreeman451/fleetwatch/pkg/heartbeat"
	"github.com/mfreeman451/fleetwatch/pkg/models"
	"github.com/mfreeman451/fleetwatch/pkg/snapshot"
)

type testPipeline struct {
	fleet   *balena.MockFleetClient
	db      *db.MockService
	alerter *alerts.MockAlertService
	checker *Checker
}

func newTestPipeline(t *testing.T) *testPipeline {
	t.Helper()

	ctrl := gomock.NewController(t)

	p := &testPipeline{
		fleet:   balena.NewMockFleetClient(ctrl),
		db:      db.NewMockService(ctrl),
		alerter: alerts.NewMockAlertService(ctrl),
	}

	gate := heartbeat.NewGate(p.db, 6*time.Hour)

	p.checker = NewChecker(
		p.fleet,
		gate,
		snapshot.NewStore(p.db, gate),
		snapshot.NewAggregator(p.db, 36*time.Hour),
		alerts.NewDispatcher(alerts.DispatcherConfig{
			IgnoreList: []string{"nameless-zombie"},
			Threshold:  3,
			Window:     36 * time.Hour,
		}, p.alerter),
	)

	return p
}

var testDevices = []models.DeviceObservation{
	{DeviceID: "A", IsOnline: false},
	{DeviceID: "B", IsOnline: true},
	{DeviceID: "nameless-zombie", IsOnline: false},
}

var testReport = []models.OfflineFrequency{
	{DeviceID: "A", OfflineCount: 4},
	{DeviceID: "B", OfflineCount: 2},
	{DeviceID: "nameless-zombie", OfflineCount: 12},
}

func TestRunWritesSnapshotAndAlerts(t *testing.T) {
	p := newTestPipeline(t)

	p.fleet.EXPECT().ListDevices(gomock.Any()).Return(testDevices, nil)
	p.db.EXPECT().GetHeartbeat(gomock.Any()).Return(nil, db.ErrHeartbeatNotFound)
	p.db.EXPECT().
		InsertSnapshotBatch(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, batch *models.SnapshotBatch) (bool, error) {
			assert.Len(t, batch.Rows, len(testDevices))
			return true, nil
		})
	p.db.EXPECT().CountOfflineSince(gomock.Any(), gomock.Any(), gomock.Any()).Return(testReport, nil)
	p.alerter.EXPECT().IsEnabled().Return(true)
	p.alerter.EXPECT().
		Alert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, alert *alerts.WebhookAlert) error {
			require.Len(t, alert.Lines, 1)
			assert.Contains(t, alert.Lines[0], "A has been offline 4 times")

			return nil
		})

	var notified *Result

	p.checker.OnResult(func(res *Result, err error) {
		assert.NoError(t, err)
		notified = res
	})

	res, err := p.checker.Run(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, testDevices, res.Devices)
	assert.Equal(t, testReport, res.Report)
	assert.True(t, res.Persist.Written)
	assert.Equal(t, 3, res.Persist.Rows)
	assert.True(t, res.Dispatch.Sent)
	assert.Equal(t, []models.OfflineFrequency{{DeviceID: "A", OfflineCount: 4}}, res.Dispatch.Alerted)
	assert.Same(t, res, notified)
}

func TestRunHeartbeatRecent(t *testing.T) {
	p := newTestPipeline(t)

	p.fleet.EXPECT().ListDevices(gomock.Any()).Return(testDevices, nil)
	p.db.EXPECT().GetHeartbeat(gomock.Any()).
		Return(&models.Heartbeat{ID: models.HeartbeatID, UpdatedAt: time.Now().Add(-2 * time.Hour)}, nil)
	p.db.EXPECT().InsertSnapshotBatch(gomock.Any(), gomock.Any()).Times(0)
	p.db.EXPECT().UpsertHeartbeat(gomock.Any(), gomock.Any()).Times(0)
	p.db.EXPECT().CountOfflineSince(gomock.Any(), gomock.Any(), gomock.Any()).Return(testReport, nil)
	p.alerter.EXPECT().Alert(gomock.Any(), gomock.Any()).Times(0)

	res, err := p.checker.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, res.Gate.Recent)
	assert.False(t, res.Persist.Written)
	assert.True(t, res.Dispatch.Suppressed)
	assert.False(t, res.Dispatch.Sent)
	assert.Equal(t, testReport, res.Report)
}

func TestRunFleetTimeout(t *testing.T) {
	p := newTestPipeline(t)

	p.fleet.EXPECT().ListDevices(gomock.Any()).Return(nil, context.DeadlineExceeded)

	var (
		calls     int
		listenErr error
	)

	p.checker.OnResult(func(res *Result, err error) {
		calls++
		listenErr = err

		assert.Nil(t, res)
	})

	res, err := p.checker.Run(context.Background())
	require.ErrorIs(t, err, ErrUpstreamFetch)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Nil(t, res)
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, listenErr, ErrUpstreamFetch)
}

func TestRunDegradedSteps(t *testing.T) {
	p := newTestPipeline(t)

	p.fleet.EXPECT().ListDevices(gomock.Any()).Return(testDevices, nil)
	p.db.EXPECT().GetHeartbeat(gomock.Any()).Return(nil, errors.New("database is locked"))
	p.db.EXPECT().InsertSnapshotBatch(gomock.Any(), gomock.Any()).Return(false, db.ErrFailedToCommit)
	p.db.EXPECT().CountOfflineSince(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, db.ErrFailedToQuery)

	res, err := p.checker.Run(context.Background())
	require.NoError(t, err)

	require.Error(t, res.Gate.Err)
	require.ErrorIs(t, res.Persist.Err, snapshot.ErrPersistence)
	require.ErrorIs(t, res.Aggregate.Err, snapshot.ErrAggregation)
	assert.NotNil(t, res.Report)
	assert.Empty(t, res.Report)
	assert.False(t, res.Dispatch.Sent)
}

func TestRunRecoversPanic(t *testing.T) {
	p := newTestPipeline(t)

	p.fleet.EXPECT().ListDevices(gomock.Any()).Return(testDevices, nil)
	p.db.EXPECT().GetHeartbeat(gomock.Any()).Return(nil, db.ErrHeartbeatNotFound)
	p.db.EXPECT().InsertSnapshotBatch(gomock.Any(), gomock.Any()).Return(true, nil)
	p.db.EXPECT().
		CountOfflineSince(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, time.Time, time.Time) ([]models.OfflineFrequency, error) {
			panic("driver bug")
		})

	res, err := p.checker.Run(context.Background())
	require.ErrorIs(t, err, ErrPipelinePanic)
	require.NotNil(t, res)
	assert.True(t, res.Persist.Written, "partial progress is kept")
}

func TestRunUsesContextRunID(t *testing.T) {
	p := newTestPipeline(t)

	p.fleet.EXPECT().ListDevices(gomock.Any()).Return([]models.DeviceObservation{}, nil)
	p.db.EXPECT().GetHeartbeat(gomock.Any()).
		Return(&models.Heartbeat{ID: models.HeartbeatID, UpdatedAt: time.Now()}, nil)
	p.db.EXPECT().CountOfflineSince(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)

	res, err := p.checker.Run(WithRunID(context.Background(), "run-123"))
	require.NoError(t, err)
	assert.Equal(t, "run-123", res.RunID)
	assert.NotEmpty(t, RunIDFromContext(context.Background()))
}
