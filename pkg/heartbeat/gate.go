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

// Package heartbeat pkg/heartbeat/gate.go decides whether a health-check run
// may write a new snapshot batch.
package heartbeat

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/mfreeman451/fleetwatch/pkg/db"
)

const DefaultInterval = 6 * time.Hour

// Status is the outcome of reading the heartbeat.
type Status struct {
	Recent    bool
	UpdatedAt time.Time
	// Err is set when the heartbeat could not be read. Recent is false in
	// that case.
	Err error
}

// Gate reads and refreshes the singleton heartbeat row.
type Gate struct {
	db       db.Service
	interval time.Duration
	now      func() time.Time
}

func NewGate(database db.Service, interval time.Duration) *Gate {
	if interval <= 0 {
		interval = DefaultInterval
	}

	return &Gate{
		db:       database,
		interval: interval,
		now:      time.Now,
	}
}

// Interval returns the cool-down between snapshot batches.
func (g *Gate) Interval() time.Duration {
	return g.interval
}

// Check reads the heartbeat. A missing row is not an error.
func (g *Gate) Check(ctx context.Context) Status {
	hb, err := g.db.GetHeartbeat(ctx)
	if errors.Is(err, db.ErrHeartbeatNotFound) {
		return Status{}
	}

	if err != nil {
		log.Printf("heartbeat: failed to read heartbeat, treating as stale: %v", err)

		return Status{Err: err}
	}

	return Status{
		Recent:    g.now().Sub(hb.UpdatedAt) < g.interval,
		UpdatedAt: hb.UpdatedAt,
	}
}

// IsRecent reports whether a snapshot batch was written within the interval.
// Read failures fail open.
func (g *Gate) IsRecent(ctx context.Context) bool {
	return g.Check(ctx).Recent
}

// MarkFresh moves the heartbeat to now unconditionally. The health pipeline
// never calls it: snapshot batches claim the heartbeat inside their own
// transaction (db.Service.InsertSnapshotBatch). It is kept for tests and
// manual resets.
func (g *Gate) MarkFresh(ctx context.Context) error {
	return g.db.UpsertHeartbeat(ctx, g.now().UTC())
}

// StaleBefore returns the cut-off a heartbeat must be at or before for a new
// batch to claim it.
func (g *Gate) StaleBefore(now time.Time) time.Time {
	return now.Add(-g.interval)
}
