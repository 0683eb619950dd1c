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
	"database/sql"
	"fmt"
	"time"

	"github.com/mfreeman451/fleetwatch/pkg/models"
)

const (
	claimHeartbeatSQL = `
		INSERT INTO heartbeat (id, updated_at) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET updated_at = excluded.updated_at
		WHERE heartbeat.updated_at <= ?
	`

	insertSnapshotSQL = `
		INSERT INTO status_snapshots (device_id, health_status, created_at)
		VALUES (?, ?, ?)
	`

	countOfflineSQL = `
		SELECT device_id, COUNT(*) AS offline_count
		FROM status_snapshots
		WHERE health_status = ?
		AND created_at >= ?
		AND created_at <= ?
		GROUP BY device_id
		ORDER BY device_id
	`
)

// InsertSnapshotBatch claims the heartbeat and appends the batch rows in a
// single transaction.
func (db *DB) InsertSnapshotBatch(ctx context.Context, batch *models.SnapshotBatch) (written bool, err error) {
	ctx, cancel := operationContext(ctx)
	defer cancel()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrFailedToBeginTx, err)
	}

	defer func() { rollbackOnError(tx, err) }()

	claimed, err := claimHeartbeat(ctx, tx, batch)
	if err != nil {
		return false, err
	}

	if !claimed {
		// Another run already wrote a batch inside the window.
		err = tx.Rollback()

		return false, err
	}

	if err = insertSnapshots(ctx, tx, batch.Rows); err != nil {
		return false, err
	}

	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("%w: %w", ErrFailedToCommit, err)
	}

	return true, nil
}

func claimHeartbeat(ctx context.Context, tx *sql.Tx, batch *models.SnapshotBatch) (bool, error) {
	result, err := tx.ExecContext(ctx, claimHeartbeatSQL,
		models.HeartbeatID, batch.ClaimedAt.UTC(), batch.StaleBefore.UTC())
	if err != nil {
		return false, fmt.Errorf("%w heartbeat: %w", ErrFailedToUpsert, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

func insertSnapshots(ctx context.Context, tx *sql.Tx, rows []models.StatusSnapshot) error {
	stmt, err := tx.PrepareContext(ctx, insertSnapshotSQL)
	if err != nil {
		return fmt.Errorf("%w status snapshot: %w", ErrFailedToInsert, err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range rows {
		row := &rows[i]

		if _, err := stmt.ExecContext(ctx, row.DeviceID, string(row.HealthStatus), row.CreatedAt.UTC()); err != nil {
			return fmt.Errorf("%w status snapshot for %s: %w", ErrFailedToInsert, row.DeviceID, err)
		}
	}

	return nil
}

// CountOfflineSince counts OFFLINE rows per device created in [since, until].
func (db *DB) CountOfflineSince(ctx context.Context, since, until time.Time) ([]models.OfflineFrequency, error) {
	ctx, cancel := operationContext(ctx)
	defer cancel()

	rows, err := db.QueryContext(ctx, countOfflineSQL,
		string(models.StatusOffline), since.UTC(), until.UTC())
	if err != nil {
		return nil, fmt.Errorf("%w offline counts: %w", ErrFailedToQuery, err)
	}
	defer closeRows(rows)

	report := make([]models.OfflineFrequency, 0)

	for rows.Next() {
		var (
			deviceID string
			raw      any
		)

		if err := rows.Scan(&deviceID, &raw); err != nil {
			return nil, fmt.Errorf("%w offline count row: %w", ErrFailedToScan, err)
		}

		count, err := ToCount(raw)
		if err != nil {
			return nil, fmt.Errorf("offline count for %s: %w", deviceID, err)
		}

		report = append(report, models.OfflineFrequency{DeviceID: deviceID, OfflineCount: count})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return report, nil
}
