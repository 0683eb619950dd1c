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

// Package scheduler pkg/scheduler/scheduler.go runs the health check and the
// retention pass on cron schedules.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

var errEmptySchedule = errors.New("empty schedule")

// Job is one scheduled unit of work.
type Job func(ctx context.Context) error

type Scheduler struct {
	cron    *cron.Cron
	timeout time.Duration
	entries map[string]cron.EntryID
}

// New returns a Scheduler whose jobs each get at most timeout to run.
func New(timeout time.Duration) *Scheduler {
	logger := cron.PrintfLogger(log.Default())

	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(logger),
			cron.SkipIfStillRunning(logger),
		)),
		timeout: timeout,
		entries: make(map[string]cron.EntryID),
	}
}

// Add registers job under name. Runs of the same job never overlap.
func (s *Scheduler) Add(name, schedule string, job Job) error {
	if schedule == "" {
		return fmt.Errorf("%s: %w", name, errEmptySchedule)
	}

	id, err := s.cron.AddFunc(schedule, func() {
		s.execute(name, job)
	})
	if err != nil {
		return fmt.Errorf("schedule %s with %q: %w", name, schedule, err)
	}

	s.entries[name] = id

	log.Printf("cron: scheduled %s with '%s'", name, schedule)

	return nil
}

func (s *Scheduler) execute(name string, job Job) {
	ctx := context.Background()

	if s.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()

	if err := job(ctx); err != nil {
		log.Printf("cron: %s failed after %s: %v", name, time.Since(start).Round(time.Millisecond), err)
		return
	}

	log.Printf("cron: %s finished in %s", name, time.Since(start).Round(time.Millisecond))
}

// Next returns the next activation of the named job.
func (s *Scheduler) Next(name string) (time.Time, bool) {
	id, ok := s.entries[name]
	if !ok {
		return time.Time{}, false
	}

	return s.cron.Entry(id).Next, true
}

// Len returns the number of registered jobs.
func (s *Scheduler) Len() int {
	return len(s.entries)
}

// Start launches the scheduler and returns immediately.
func (s *Scheduler) Start(context.Context) error {
	s.cron.Start()
	log.Println("cron: scheduler started")

	return nil
}

// Stop halts the scheduler and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	stopped := s.cron.Stop()

	select {
	case <-stopped.Done():
		log.Println("cron: scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("cron: waiting for running jobs: %w", ctx.Err())
	}
}
