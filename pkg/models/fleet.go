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

// Package models pkg/models/fleet.go
package models

import "time"

// HealthStatus is the persisted connectivity state of a device.
type HealthStatus string

const (
	StatusOnline  HealthStatus = "ONLINE"
	StatusOffline HealthStatus = "OFFLINE"
)

// HeartbeatID is the primary key of the singleton heartbeat row.
const HeartbeatID = 1

// StatusFromOnline maps the fleet API's is_online flag to a HealthStatus.
func StatusFromOnline(isOnline bool) HealthStatus {
	if isOnline {
		return StatusOnline
	}

	return StatusOffline
}

// DeviceObservation is a point-in-time read of one device's connectivity.
type DeviceObservation struct {
	DeviceID   string    `json:"deviceId"`
	IsOnline   bool      `json:"isOnline"`
	ObservedAt time.Time `json:"observedAt"`
}

// StatusSnapshot is one persisted row of the append-only status log.
type StatusSnapshot struct {
	ID           int64        `json:"id"`
	DeviceID     string       `json:"deviceId"`
	HealthStatus HealthStatus `json:"healthStatus"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// SnapshotBatch groups the rows of a single health-check run together with
// the heartbeat claim that must commit alongside them.
type SnapshotBatch struct {
	Rows []StatusSnapshot
	// ClaimedAt is written to the heartbeat row when the batch commits.
	ClaimedAt time.Time
	// StaleBefore is the cut-off: the heartbeat is only claimed if its
	// current updated_at is older than this.
	StaleBefore time.Time
}

// Heartbeat marks the last time a snapshot batch was persisted.
type Heartbeat struct {
	ID        int       `json:"id"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// OfflineFrequency is the number of OFFLINE observations of a device
// within the aggregation window.
type OfflineFrequency struct {
	DeviceID     string `json:"deviceId"`
	OfflineCount int64  `json:"offlineCount"`
}
