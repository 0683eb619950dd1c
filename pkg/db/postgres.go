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
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mfreeman451/fleetwatch/pkg/models"
)

const createTablesPostgresSQL = `
	CREATE TABLE IF NOT EXISTS status_snapshots (
		id            BIGSERIAL PRIMARY KEY,
		device_id     TEXT NOT NULL,
		health_status TEXT NOT NULL CHECK (health_status IN ('ONLINE', 'OFFLINE')),
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS idx_status_snapshots_status_time
		ON status_snapshots(health_status, created_at);
	CREATE INDEX IF NOT EXISTS idx_status_snapshots_time
		ON status_snapshots(created_at);

	CREATE TABLE IF NOT EXISTS heartbeat (
		id         INTEGER PRIMARY KEY,
		updated_at TIMESTAMPTZ NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id         TEXT PRIMARY KEY,
		event_type TEXT NOT NULL,
		payload    JSONB NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS idx_events_type_time ON events(event_type, created_at DESC);

	CREATE TABLE IF NOT EXISTS outage_events (
		id         TEXT PRIMARY KEY,
		device_id  TEXT NOT NULL,
		start_time TIMESTAMPTZ NOT NULL,
		end_time   TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS idx_outage_events_time ON outage_events(created_at DESC);
`

// PostgresDB implements Service on a pgx connection pool.
type PostgresDB struct {
	Pool *pgxpool.Pool
}

// NewPostgres connects to databaseURL and migrates the schema.
func NewPostgres(ctx context.Context, databaseURL string) (*PostgresDB, error) {
	ctx, cancel := context.WithTimeout(ctx, dbOperationTimeout)
	defer cancel()

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedOpenDB, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: %w", ErrFailedOpenDB, err)
	}

	if _, err := pool.Exec(ctx, createTablesPostgresSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: %w", ErrFailedToInit, err)
	}

	return &PostgresDB{Pool: pool}, nil
}

func (db *PostgresDB) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

func (db *PostgresDB) Close() error {
	db.Pool.Close()
	return nil
}

func (db *PostgresDB) GetHeartbeat(ctx context.Context) (*models.Heartbeat, error) {
	ctx, cancel := operationContext(ctx)
	defer cancel()

	var hb models.Heartbeat

	err := db.Pool.QueryRow(ctx,
		`SELECT id, updated_at FROM heartbeat WHERE id = $1`, models.HeartbeatID,
	).Scan(&hb.ID, &hb.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrHeartbeatNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("%w heartbeat: %w", ErrFailedToQuery, err)
	}

	return &hb, nil
}

func (db *PostgresDB) UpsertHeartbeat(ctx context.Context, at time.Time) error {
	ctx, cancel := operationContext(ctx)
	defer cancel()

	_, err := db.Pool.Exec(ctx, `
		INSERT INTO heartbeat (id, updated_at) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET updated_at = EXCLUDED.updated_at
	`, models.HeartbeatID, at.UTC())
	if err != nil {
		return fmt.Errorf("%w heartbeat: %w", ErrFailedToUpsert, err)
	}

	return nil
}

func (db *PostgresDB) InsertSnapshotBatch(ctx context.Context, batch *models.SnapshotBatch) (bool, error) {
	ctx, cancel := operationContext(ctx)
	defer cancel()

	tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrFailedToBeginTx, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		INSERT INTO heartbeat (id, updated_at) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET updated_at = EXCLUDED.updated_at
		WHERE heartbeat.updated_at <= $3
	`, models.HeartbeatID, batch.ClaimedAt.UTC(), batch.StaleBefore.UTC())
	if err != nil {
		return false, fmt.Errorf("%w heartbeat: %w", ErrFailedToUpsert, err)
	}

	if tag.RowsAffected() == 0 {
		return false, nil
	}

	rows := make([][]any, 0, len(batch.Rows))
	for _, r := range batch.Rows {
		rows = append(rows, []any{r.DeviceID, string(r.HealthStatus), r.CreatedAt.UTC()})
	}

	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"status_snapshots"},
		[]string{"device_id", "health_status", "created_at"},
		pgx.CopyFromRows(rows),
	); err != nil {
		return false, fmt.Errorf("%w status snapshots: %w", ErrFailedToInsert, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("%w: %w", ErrFailedToCommit, err)
	}

	return true, nil
}

func (db *PostgresDB) CountOfflineSince(ctx context.Context, since, until time.Time) ([]models.OfflineFrequency, error) {
	ctx, cancel := operationContext(ctx)
	defer cancel()

	rows, err := db.Pool.Query(ctx, `
		SELECT device_id, COUNT(*) AS offline_count
		FROM status_snapshots
		WHERE health_status = $1
		AND created_at >= $2
		AND created_at <= $3
		GROUP BY device_id
		ORDER BY device_id
	`, string(models.StatusOffline), since.UTC(), until.UTC())
	if err != nil {
		return nil, fmt.Errorf("%w offline counts: %w", ErrFailedToQuery, err)
	}
	defer rows.Close()

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

func (db *PostgresDB) ListEvents(ctx context.Context, eventType string, before time.Time, limit int) ([]models.Event, error) {
	ctx, cancel := operationContext(ctx)
	defer cancel()

	query := `SELECT id, event_type, payload, created_at FROM events WHERE event_type = $1`
	args := []interface{}{eventType}

	if !before.IsZero() {
		args = append(args, before.UTC())
		query += " AND created_at < $" + strconv.Itoa(len(args))
	}

	args = append(args, limit)
	query += " ORDER BY created_at DESC LIMIT $" + strconv.Itoa(len(args))

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w events: %w", ErrFailedToQuery, err)
	}
	defer rows.Close()

	events := make([]models.Event, 0, limit)

	for rows.Next() {
		var (
			e       models.Event
			payload []byte
		)

		if err := rows.Scan(&e.ID, &e.EventType, &payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w event row: %w", ErrFailedToScan, err)
		}

		e.Payload = payload
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return events, nil
}

func (db *PostgresDB) InsertEvent(ctx context.Context, event *models.Event) error {
	ctx, cancel := operationContext(ctx)
	defer cancel()

	payload := string(event.Payload)
	if payload == "" {
		payload = "{}"
	}

	_, err := db.Pool.Exec(ctx,
		`INSERT INTO events (id, event_type, payload, created_at) VALUES ($1, $2, $3::jsonb, $4)`,
		event.ID, event.EventType, payload, event.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("%w event: %w", ErrFailedToInsert, err)
	}

	return nil
}

func (db *PostgresDB) ListOutageEvents(ctx context.Context, before time.Time, limit int) ([]models.OutageEvent, error) {
	ctx, cancel := operationContext(ctx)
	defer cancel()

	query := `SELECT id, device_id, start_time, end_time, created_at FROM outage_events`
	args := []interface{}{}

	if !before.IsZero() {
		args = append(args, before.UTC())
		query += " WHERE created_at < $1"
	}

	args = append(args, limit)
	query += " ORDER BY created_at DESC LIMIT $" + strconv.Itoa(len(args))

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w outage events: %w", ErrFailedToQuery, err)
	}
	defer rows.Close()

	events := make([]models.OutageEvent, 0, limit)

	for rows.Next() {
		var o models.OutageEvent

		if err := rows.Scan(&o.ID, &o.DeviceID, &o.StartTime, &o.EndTime, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w outage event row: %w", ErrFailedToScan, err)
		}

		events = append(events, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return events, nil
}

func (db *PostgresDB) InsertOutageEvent(ctx context.Context, event *models.OutageEvent) error {
	ctx, cancel := operationContext(ctx)
	defer cancel()

	_, err := db.Pool.Exec(ctx,
		`INSERT INTO outage_events (id, device_id, start_time, end_time, created_at) VALUES ($1, $2, $3, $4, $5)`,
		event.ID, event.DeviceID, event.StartTime.UTC(), event.EndTime.UTC(), event.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("%w outage event: %w", ErrFailedToInsert, err)
	}

	return nil
}

func (db *PostgresDB) ListSnapshotsBefore(ctx context.Context, cutoff time.Time) ([]models.StatusSnapshot, error) {
	ctx, cancel := maintenanceContext(ctx)
	defer cancel()

	rows, err := db.Pool.Query(ctx, `
		SELECT id, device_id, health_status, created_at
		FROM status_snapshots
		WHERE created_at < $1
		ORDER BY created_at ASC, id ASC
	`, cutoff.UTC())
	if err != nil {
		return nil, fmt.Errorf("%w snapshots: %w", ErrFailedToQuery, err)
	}
	defer rows.Close()

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

func (db *PostgresDB) CleanOldData(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx, cancel := maintenanceContext(ctx)
	defer cancel()

	tag, err := db.Pool.Exec(ctx, `DELETE FROM status_snapshots WHERE created_at < $1`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("%w status snapshots: %w", ErrFailedToClean, err)
	}

	return tag.RowsAffected(), nil
}
