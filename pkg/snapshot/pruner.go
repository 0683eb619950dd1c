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
	"fmt"
	"log"
	"time"

	"github.com/mfreeman451/fleetwatch/pkg/db"
)

// PruneResult summarises one retention pass.
type PruneResult struct {
	Cutoff     time.Time
	Archived   int
	ArchiveKey string
	Deleted    int64
}

// Pruner removes snapshot rows older than the retention period, archiving
// them first when an Archiver is configured.
type Pruner struct {
	db       db.Service
	period   time.Duration
	archiver Archiver
	now      func() time.Time
}

// NewPruner returns a Pruner. archiver may be nil.
func NewPruner(database db.Service, period time.Duration, archiver Archiver) *Pruner {
	return &Pruner{
		db:       database,
		period:   period,
		archiver: archiver,
		now:      time.Now,
	}
}

// Prune deletes expired snapshots. If archiving fails nothing is deleted.
func (p *Pruner) Prune(ctx context.Context) (PruneResult, error) {
	if p.period <= 0 {
		return PruneResult{}, ErrInvalidRange
	}

	result := PruneResult{Cutoff: p.now().UTC().Add(-p.period)}

	if p.archiver != nil {
		rows, err := p.db.ListSnapshotsBefore(ctx, result.Cutoff)
		if err != nil {
			return result, fmt.Errorf("%w: %w", ErrPrune, err)
		}

		if len(rows) == 0 {
			return result, nil
		}

		key, err := p.archiver.Archive(ctx, rows)
		if err != nil {
			return result, fmt.Errorf("%w: %w", ErrArchive, err)
		}

		result.Archived = len(rows)
		result.ArchiveKey = key
	}

	deleted, err := p.db.CleanOldData(ctx, result.Cutoff)
	if err != nil {
		return result, fmt.Errorf("%w: %w", ErrPrune, err)
	}

	result.Deleted = deleted

	log.Printf("snapshot: pruned %d rows older than %s (archived %d)",
		deleted, result.Cutoff.Format(time.RFC3339), result.Archived)

	return result, nil
}
