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

package models

import (
	"encoding/json"
	"time"
)

// EventTypePowerOutageProbe is the event type written by the field probes.
const EventTypePowerOutageProbe = "power_outage_probe"

// Event is an entry in the device probe event log.
type Event struct {
	ID        string          `json:"id"`
	EventType string          `json:"eventType"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"createdAt"`
}

// OutageEvent records a power outage observed by a monitor.
type OutageEvent struct {
	ID        string    `json:"id"`
	DeviceID  string    `json:"deviceId"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	CreatedAt time.Time `json:"createdAt"`
}

// DurationSeconds returns the whole number of seconds the outage lasted.
func (o *OutageEvent) DurationSeconds() int64 {
	d := o.EndTime.Sub(o.StartTime)
	if d < 0 {
		return 0
	}

	return int64(d / time.Second)
}
