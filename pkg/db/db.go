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

// Package db pkg/db/db.go provides the relational store behind the health
// pipeline. SQLite is the default backend, Postgres is available for
// deployments that run more than one instance.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/mfreeman451/fleetwatch/pkg/config"
	"github.com/mfreeman451/fleetwatch/pkg/models"
)

const (
	dbOperationTimeout = 5 * time.Second
	// Retention scans and deletes may touch many rows.
	dbMaintenanceTimeout = time.Minute

	// SQL statements for database initialization.
	createTablesSQL = `
	-- Append-only device health log
	CREATE TABLE IF NOT EXISTS status_snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		device_id TEXT NOT NULL,
		health_status TEXT NOT NULL CHECK (health_status IN ('ONLINE', 'OFFLINE')),
		created_at TIMESTAMP NOT NULL
	);

	-- Singleton marker of the last persisted snapshot batch
	CREATE TABLE IF NOT EXISTS heartbeat (
		id INTEGER PRIMARY KEY,
		updated_at TIMESTAMP NOT NULL
	);

	-- Probe events written by the field monitors
	CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		event_type TEXT NOT NULL,
		payload TEXT NOT NULL DEFAULT '{}',
		created_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS outage_events (
		id TEXT PRIMARY KEY,
		device_id TEXT NOT NULL,
		start_time TIMESTAMP NOT NULL,
		end_time TIMESTAMP NOT NULL,
		created_at TIMESTAMP NOT NULL
	);

	-- Indexes for better query performance
	CREATE INDEX IF NOT EXISTS idx_status_snapshots_status_time
		ON status_snapshots(health_status, created_at);
	CREATE INDEX IF NOT EXISTS idx_status_snapshots_time
		ON status_snapshots(created_at);
	CREATE INDEX IF NOT EXISTS idx_events_type_time
		ON events(event_type, created_at);
	CREATE INDEX IF NOT EXISTS idx_outage_events_time
		ON outage_events(created_at);
	`

	// sqliteDSNParams makes every transaction take the write lock up front and
	// wait for it, so concurrent health checks serialise instead of failing.
	sqliteDSNParams = "_txlock=immediate&_busy_timeout=5000&_foreign_keys=on"
)

// DB represents the SQLite database connection and operations.
type DB struct {
	*sql.DB
}

// New opens the backend named by cfg.Driver and initializes its schema.
func New(ctx context.Context, cfg config.DatabaseConfig) (Service, error) {
	switch cfg.Driver {
	case config.DriverSQLite, "":
		return NewSQLite(cfg.DSN)
	case config.DriverPostgres:
		return NewPostgres(ctx, cfg.DSN)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

// NewSQLite creates a new SQLite connection and initializes the schema.
func NewSQLite(dbPath string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite3", sqliteDSN(dbPath))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedOpenDB, err)
	}

	// Enable WAL mode for better concurrent access
	if _, err := sqlDB.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("%w: %w", ErrFailedToEnableWAL, err)
	}

	db := &DB{sqlDB}
	if err := db.initSchema(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("%w: %w", ErrFailedToInit, err)
	}

	return db, nil
}

func sqliteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path + "&" + sqliteDSNParams
	}

	return path + "?" + sqliteDSNParams
}

// initSchema creates the database tables if they don't exist.
func (db *DB) initSchema() error {
	_, err := db.Exec(createTablesSQL)

	return err
}

// operationContext bounds a single query or transaction.
func operationContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, dbOperationTimeout)
}

// maintenanceContext bounds a retention scan or delete.
func maintenanceContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, dbMaintenanceTimeout)
}

// Ping checks the database connection.
func (db *DB) Ping(ctx context.Context) error {
	return db.PingContext(ctx)
}

// GetHeartbeat returns the singleton heartbeat row.
func (db *DB) GetHeartbeat(ctx context.Context) (*models.Heartbeat, error) {
	ctx, cancel := operationContext(ctx)
	defer cancel()

	var hb models.Heartbeat

	err := db.QueryRowContext(ctx,
		`SELECT id, updated_at FROM heartbeat WHERE id = ?`, models.HeartbeatID,
	).Scan(&hb.ID, &hb.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrHeartbeatNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("%w heartbeat: %w", ErrFailedToQuery, err)
	}

	return &hb, nil
}

// UpsertHeartbeat creates the heartbeat row or moves it to at.
func (db *DB) UpsertHeartbeat(ctx context.Context, at time.Time) error {
	ctx, cancel := operationContext(ctx)
	defer cancel()

	_, err := db.ExecContext(ctx, `
		INSERT INTO heartbeat (id, updated_at) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET updated_at = excluded.updated_at
	`, models.HeartbeatID, at.UTC())
	if err != nil {
		return fmt.Errorf("%w heartbeat: %w", ErrFailedToUpsert, err)
	}

	return nil
}

func rollbackOnError(tx *sql.Tx, err error) {
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Printf("Error rolling back transaction: %v", rbErr)
		}
	}
}

func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		log.Printf("failed to close rows: %v", err)
	}
}
