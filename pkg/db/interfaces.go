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

// Package db pkg/db/interfaces.go
package db

import (
	"context"
	"time"

	"github.com/mfreeman451/fleetwatch/pkg/models"
)

//go:generate mockgen -destination=mock_db.go -package=db github.com/mfreeman451/fleetwatch/pkg/db Service

// Service represents all database operations.
type Service interface {
	Ping(ctx context.Context) error
	Close() error

	// Heartbeat operations.

	GetHeartbeat(ctx context.Context) (*models.Heartbeat, error)
	// UpsertHeartbeat sets the heartbeat unconditionally. Pipeline writes go
	// through InsertSnapshotBatch, which claims it atomically instead.
	UpsertHeartbeat(ctx context.Context, at time.Time) error

	// Snapshot operations.

	// InsertSnapshotBatch writes the rows and claims the heartbeat in one
	// transaction. It reports false, with no rows written, when the heartbeat
	// is newer than batch.StaleBefore.
	InsertSnapshotBatch(ctx context.Context, batch *models.SnapshotBatch) (bool, error)
	CountOfflineSince(ctx context.Context, since, until time.Time) ([]models.OfflineFrequency, error)

	// Event log operations. Rows are written by the field probes, which
	// share the database; fleetwatch only serves them.

	ListEvents(ctx context.Context, eventType string, before time.Time, limit int) ([]models.Event, error)
	InsertEvent(ctx context.Context, event *models.Event) error
	ListOutageEvents(ctx context.Context, before time.Time, limit int) ([]models.OutageEvent, error)
	InsertOutageEvent(ctx context.Context, event *models.OutageEvent) error

	// Maintenance operations.

	ListSnapshotsBefore(ctx context.Context, cutoff time.Time) ([]models.StatusSnapshot, error)
	CleanOldData(ctx context.Context, cutoff time.Time) (int64, error)
}
