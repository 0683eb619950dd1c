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

// Package snapshot pkg/snapshot/store.go maintains the append-only device
// status log and the offline counts derived from it.
package snapshot

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mfreeman451/fleetwatch/pkg/db"
	"github.com/mfreeman451/fleetwatch/pkg/heartbeat"
	"github.com/mfreeman451/fleetwatch/pkg/models"
)

// PersistResult reports what a Persist call wrote.
type PersistResult struct {
	// Written is true when the rows and the heartbeat claim committed.
	Written bool
	Rows    int
	Err     error
}

// Store appends snapshot batches.
type Store struct {
	db   db.Service
	gate *heartbeat.Gate
	now  func() time.Time
}

// NewStore returns a Store whose batches only commit when gate considers
// the heartbeat stale.
func NewStore(database db.Service, gate *heartbeat.Gate) *Store {
	return &Store{
		db:   database,
		gate: gate,
		now:  time.Now,
	}
}

// Persist writes one row per observation, all stamped with the same time,
// and moves the heartbeat in the same transaction. When another run has
// claimed the heartbeat inside the interval nothing is written.
func (s *Store) Persist(ctx context.Context, observations []models.DeviceObservation) PersistResult {
	now := s.now().UTC()

	batch := &models.SnapshotBatch{
		Rows:        make([]models.StatusSnapshot, 0, len(observations)),
		ClaimedAt:   now,
		StaleBefore: s.gate.StaleBefore(now),
	}

	for _, o := range observations {
		batch.Rows = append(batch.Rows, models.StatusSnapshot{
			DeviceID:     o.DeviceID,
			HealthStatus: models.StatusFromOnline(o.IsOnline),
			CreatedAt:    now,
		})
	}

	written, err := s.db.InsertSnapshotBatch(ctx, batch)
	if err != nil {
		log.Printf("snapshot: failed to persist %d rows: %v", len(batch.Rows), err)

		return PersistResult{Err: fmt.Errorf("%w: %w", ErrPersistence, err)}
	}

	if !written {
		log.Printf("snapshot: heartbeat claimed by a concurrent run, skipping batch")

		return PersistResult{}
	}

	return PersistResult{Written: true, Rows: len(batch.Rows)}
}
