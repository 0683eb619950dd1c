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

package api

import (
	"time"

	"github.com/mfreeman451/fleetwatch/pkg/models"
)

const (
	errHealthCheck = "An error occurred while retrieving devices."
	errGeneric     = "Something went wrong."

	runIDHeader = "X-Run-ID"
)

// HealthResponse is the body of a successful health check. The report key
// keeps the name dashboard clients already read.
type HealthResponse struct {
	Devices       []models.DeviceObservation `json:"devices"`
	Last24hReport []models.OfflineFrequency  `json:"last24hReport"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// EventsPage is one page of the probe event log.
type EventsPage struct {
	Events     []models.Event `json:"events"`
	NextCursor *string        `json:"nextCursor"`
}

// OutageEventView adds the computed duration to an outage event.
type OutageEventView struct {
	models.OutageEvent
	DurationSeconds int64 `json:"durationSeconds"`
}

// OutageEventsPage is one page of outage events.
type OutageEventsPage struct {
	Events     []OutageEventView `json:"events"`
	NextCursor *string           `json:"nextCursor"`
}

func cursorOf(t time.Time) *string {
	s := t.UTC().Format(time.RFC3339Nano)

	return &s
}
