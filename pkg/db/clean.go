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
	"fmt"
	"time"

	"github.com/mfreeman451/fleetwatch/pkg/models"
)

// ListSnapshotsBefore returns every snapshot row created before cutoff,
// oldest first.
func (db *DB) ListSnapshotsBefore(ctx context.Context, cutoff time.Time) ([]models.StatusSnapshot, error) {
	ctx, cancel := maintenanceContext(ctx)
	defer cancel()

	rows, err := db.QueryContext(ctx, `
		SELECT id, device_id, health_status, created_at
		FROM status_snapshots
		WHERE created_at < ?
		ORDER BY created_at ASC, id ASC
	`, cutoff.UTC())
	if err != nil {
		return nil, fmt.Errorf("%w snapshots: %w", ErrFailedToQuery, err)
	}
	defer closeRows(rows)

	var snapshots []models.StatusSnapshot

	for rows.Next() {
		var (
			s      models.StatusSnapshot
			status string
		)

		if err := rows.Scan(&s.ID, &s.DeviceID, &status, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w snapshot row: %w", ErrFailedToScan, err)
		}

		s.HealthStatus = models.HealthStatus(status)
		snapshots = append(snapshots, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return snapshots, nil
}

// CleanOldData removes snapshot rows created before cutoff and returns how
// many were deleted.
func (db *DB) CleanOldData(ctx context.Context, cutoff time.Time) (deleted int64, err error) {
	ctx, cancel := maintenanceContext(ctx)
	defer cancel()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrFailedToBeginTx, err)
	}

	defer func() { rollbackOnError(tx, err) }()

	result, err := tx.ExecContext(ctx,
		"DELETE FROM status_snapshots WHERE created_at < ?",
		cutoff.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("%w status snapshots: %w", ErrFailedToClean, err)
	}

	deleted, err = result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w status snapshots: %w", ErrFailedToClean, err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrFailedToCommit, err)
	}

	return deleted, nil
}
