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
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/mfreeman451/fleetwatch/pkg/health"
	"github.com/mfreeman451/fleetwatch/pkg/hub"
	"github.com/mfreeman451/fleetwatch/pkg/models"
)

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Printf("api: error marshaling JSON response: %v", err)
		w.WriteHeader(http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if _, err := w.Write(response); err != nil {
		log.Printf("api: error writing response: %v", err)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, code int, message string) {
	respondJSON(w, code, ErrorResponse{Error: message})
}

func (s *APIServer) healthCheck(w http.ResponseWriter, r *http.Request) {
	runID := uuid.NewString()
	w.Header().Set(runIDHeader, runID)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), s.runTimeout)
	defer cancel()

	res, err := s.runner.Run(health.WithRunID(ctx, runID))
	if err != nil {
		log.Printf("api: health check %s failed: %v", runID, err)
		respondError(w, http.StatusInternalServerError, errHealthCheck)

		return
	}

	respondJSON(w, http.StatusOK, newHealthResponse(res))
}

func newHealthResponse(res *health.Result) HealthResponse {
	out := HealthResponse{
		Devices:       res.Devices,
		Last24hReport: res.Report,
	}

	if out.Devices == nil {
		out.Devices = []models.DeviceObservation{}
	}

	if out.Last24hReport == nil {
		out.Last24hReport = []models.OfflineFrequency{}
	}

	return out
}

func (s *APIServer) deviceStatuses(w http.ResponseWriter, r *http.Request) {
	p := parsePage(r)

	events, err := s.db.ListEvents(r.Context(), models.EventTypePowerOutageProbe, p.before, p.take)
	if err != nil {
		log.Printf("api: failed to list device statuses: %v", err)
		respondError(w, http.StatusInternalServerError, errGeneric)

		return
	}

	out := EventsPage{Events: events}
	if out.Events == nil {
		out.Events = []models.Event{}
	}

	if len(events) == p.take {
		out.NextCursor = cursorOf(events[len(events)-1].CreatedAt)
	}

	respondJSON(w, http.StatusOK, out)
}

func (s *APIServer) outageEvents(w http.ResponseWriter, r *http.Request) {
	p := parsePage(r)

	events, err := s.db.ListOutageEvents(r.Context(), p.before, p.take)
	if err != nil {
		log.Printf("api: failed to list outage events: %v", err)
		respondError(w, http.StatusInternalServerError, errGeneric)

		return
	}

	out := OutageEventsPage{Events: make([]OutageEventView, 0, len(events))}

	for i := range events {
		out.Events = append(out.Events, OutageEventView{
			OutageEvent:     events[i],
			DurationSeconds: events[i].DurationSeconds(),
		})
	}

	if len(events) == p.take {
		out.NextCursor = cursorOf(events[len(events)-1].CreatedAt)
	}

	respondJSON(w, http.StatusOK, out)
}

// PublishReports returns a health listener that pushes every successful run
// to the websocket feed.
func PublishReports(h *hub.Hub) health.Listener {
	return func(res *health.Result, err error) {
		if err != nil || res == nil {
			return
		}

		h.Broadcast(hub.Event{
			Type:    hub.EventHealthReport,
			Payload: newHealthResponse(res),
		})
	}
}
