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
	"encoding/json"
	"fmt"
	"time"

	"github.com/mfreeman451/fleetwatch/pkg/models"
)

// ListEvents returns up to limit events of eventType, newest first. A
// non-zero before restricts the page to events created strictly earlier.
func (db *DB) ListEvents(ctx context.Context, eventType string, before time.Time, limit int) ([]models.Event, error) {
	ctx, cancel := operationContext(ctx)
	defer cancel()

	query := `
		SELECT id, event_type, payload, created_at
		FROM events
		WHERE event_type = ?`
	args := []interface{}{eventType}

	if !before.IsZero() {
		query += " AND created_at < ?"
		args = append(args, before.UTC())
	}

	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w events: %w", ErrFailedToQuery, err)
	}
	defer closeRows(rows)

	events := make([]models.Event, 0, limit)

	for rows.Next() {
		var (
			e       models.Event
			payload string
		)

		if err := rows.Scan(&e.ID, &e.EventType, &payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w event row: %w", ErrFailedToScan, err)
		}

		e.Payload = json.RawMessage(payload)
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return events, nil
}

// InsertEvent appends a probe event.
func (db *DB) InsertEvent(ctx context.Context, event *models.Event) error {
	ctx, cancel := operationContext(ctx)
	defer cancel()

	payload := string(event.Payload)
	if payload == "" {
		payload = "{}"
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO events (id, event_type, payload, created_at)
		VALUES (?, ?, ?, ?)
	`, event.ID, event.EventType, payload, event.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("%w event: %w", ErrFailedToInsert, err)
	}

	return nil
}

// ListOutageEvents returns up to limit outage events, newest first.
func (db *DB) ListOutageEvents(ctx context.Context, before time.Time, limit int) ([]models.OutageEvent, error) {
	ctx, cancel := operationContext(ctx)
	defer cancel()

	query := `
		SELECT id, device_id, start_time, end_time, created_at
		FROM outage_events`
	args := []interface{}{}

	if !before.IsZero() {
		query += " WHERE created_at < ?"
		args = append(args, before.UTC())
	}

	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w outage events: %w", ErrFailedToQuery, err)
	}
	defer closeRows(rows)

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

// InsertOutageEvent records an outage.
func (db *DB) InsertOutageEvent(ctx context.Context, event *models.OutageEvent) error {
	ctx, cancel := operationContext(ctx)
	defer cancel()

	_, err := db.ExecContext(ctx, `
		INSERT INTO outage_events (id, device_id, start_time, end_time, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, event.ID, event.DeviceID, event.StartTime.UTC(), event.EndTime.UTC(), event.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("%w outage event: %w", ErrFailedToInsert, err)
	}

	return nil
}
