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
	"github.com/mfreeman451/fleetwatch/pkg/models"
)

const DefaultWindow = 36 * time.Hour

// AggregateResult carries the offline report of one run. Report is never nil.
type AggregateResult struct {
	Report []models.OfflineFrequency
	Err    error
}

// Aggregator counts OFFLINE snapshots per device over a trailing window.
type Aggregator struct {
	db     db.Service
	window time.Duration
	now    func() time.Time
}

func NewAggregator(database db.Service, window time.Duration) *Aggregator {
	if window <= 0 {
		window = DefaultWindow
	}

	return &Aggregator{
		db:     database,
		window: window,
		now:    time.Now,
	}
}

// Window returns the trailing window the counts cover.
func (a *Aggregator) Window() time.Duration {
	return a.window
}

// OfflineCounts returns the devices with at least one OFFLINE row created
// within the window ending now. A query failure degrades to an empty report.
func (a *Aggregator) OfflineCounts(ctx context.Context) AggregateResult {
	now := a.now().UTC()

	report, err := a.db.CountOfflineSince(ctx, now.Add(-a.window), now)
	if err != nil {
		log.Printf("snapshot: failed to aggregate offline counts: %v", err)

		return AggregateResult{
			Report: []models.OfflineFrequency{},
			Err:    fmt.Errorf("%w: %w", ErrAggregation, err),
		}
	}

	if report == nil {
		report = []models.OfflineFrequency{}
	}

	return AggregateResult{Report: report}
}
