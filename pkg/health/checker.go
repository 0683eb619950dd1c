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

// Package health pkg/health/checker.go sequences one health-check run.
package health

import (
	"context"
	"fmt"
	"log"
	"runtime/debug"
	"sync"
	"time"

	"github.com/mfreeman451/fleetwatch/pkg/alerts"
	"github.com/mfreeman451/fleetwatch/pkg/balena"
	"github.com/mfreeman451/fleetwatch/pkg/heartbeat"
	"github.com/mfreeman451/fleetwatch/pkg/models"
	"github.com/mfreeman451/fleetwatch/pkg/snapshot"
)

// Result is everything one run observed and did.
type Result struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Devices    []models.DeviceObservation
	Report     []models.OfflineFrequency
	Gate       heartbeat.Status
	Persist    snapshot.PersistResult
	Aggregate  snapshot.AggregateResult
	Dispatch   alerts.DispatchResult
}

// Listener is called after every run, successful or not. res is nil when
// the fleet fetch failed.
type Listener func(res *Result, err error)

// Checker runs the health-check pipeline.
type Checker struct {
	fleet      balena.FleetClient
	gate       *heartbeat.Gate
	store      *snapshot.Store
	aggregator *snapshot.Aggregator
	dispatcher *alerts.Dispatcher

	mu        sync.RWMutex
	listeners []Listener
	now       func() time.Time
}

func NewChecker(
	fleet balena.FleetClient,
	gate *heartbeat.Gate,
	store *snapshot.Store,
	aggregator *snapshot.Aggregator,
	dispatcher *alerts.Dispatcher,
) *Checker {
	return &Checker{
		fleet:      fleet,
		gate:       gate,
		store:      store,
		aggregator: aggregator,
		dispatcher: dispatcher,
		now:        time.Now,
	}
}

// OnResult registers l to be notified after each run.
func (c *Checker) OnResult(l Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.listeners = append(c.listeners, l)
}

// Run executes one health check. Only a failed fleet fetch or a panic is
// returned as an error; every later step degrades into its part of Result.
func (c *Checker) Run(ctx context.Context) (res *Result, err error) {
	runID := RunIDFromContext(ctx)

	defer func() {
		c.notify(res, err)
	}()

	devices, err := c.fleet.ListDevices(ctx)
	if err != nil {
		log.Printf("health[%s]: fleet fetch failed: %v", runID, err)

		return nil, fmt.Errorf("%w: %w", ErrUpstreamFetch, err)
	}

	res = &Result{
		RunID:     runID,
		StartedAt: c.now().UTC(),
		Devices:   devices,
	}

	if err := c.runPipeline(ctx, res); err != nil {
		return res, err
	}

	res.FinishedAt = c.now().UTC()

	log.Printf("health[%s]: %d devices, snapshot written=%t, %d offline, %d alerted (sent=%t)",
		runID, len(devices), res.Persist.Written, len(res.Report), len(res.Dispatch.Alerted), res.Dispatch.Sent)

	return res, nil
}

func (c *Checker) runPipeline(ctx context.Context, res *Result) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("health[%s]: recovered from panic: %v\n%s", res.RunID, r, debug.Stack())

			err = fmt.Errorf("%w: %v", ErrPipelinePanic, r)
		}
	}()

	res.Gate = c.gate.Check(ctx)

	if !res.Gate.Recent {
		res.Persist = c.store.Persist(ctx, res.Devices)
	}

	res.Aggregate = c.aggregator.OfflineCounts(ctx)
	res.Report = res.Aggregate.Report

	res.Dispatch = c.dispatcher.Dispatch(ctx, res.Report, res.Persist.Written)

	return nil
}

func (c *Checker) notify(res *Result, err error) {
	c.mu.RLock()
	listeners := make([]Listener, len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.RUnlock()

	for _, l := range listeners {
		l(res, err)
	}
}
