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

// Package api pkg/api/server.go serves the health check and the event log
// endpoints.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/gorilla/mux"

	"github.com/mfreeman451/fleetwatch/pkg/db"
	httpx "github.com/mfreeman451/fleetwatch/pkg/http"
	"github.com/mfreeman451/fleetwatch/pkg/hub"
)

// DefaultRunTimeout bounds a health run started by a request.
const DefaultRunTimeout = 2 * time.Minute

// Options wires the server's collaborators. Hub may be nil.
type Options struct {
	Runner         HealthRunner
	DB             db.Service
	Hub            *hub.Hub
	AllowedOrigins []string

	// RunTimeout bounds each health run. A run is not canceled when the
	// caller disconnects.
	RunTimeout time.Duration
}

type APIServer struct {
	router  *mux.Router
	handler http.Handler
	runner  HealthRunner
	db      db.Service
	hub     *hub.Hub

	runTimeout time.Duration
}

func NewAPIServer(opts Options) *APIServer {
	s := &APIServer{
		router:     mux.NewRouter(),
		runner:     opts.Runner,
		db:         opts.DB,
		hub:        opts.Hub,
		runTimeout: opts.RunTimeout,
	}

	if s.runTimeout <= 0 {
		s.runTimeout = DefaultRunTimeout
	}

	s.setupRoutes(opts.AllowedOrigins)

	return s
}

func (s *APIServer) setupRoutes(allowedOrigins []string) {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	s.router.Use(httpx.RequestLogger)

	s.router.HandleFunc("/health-check", s.healthCheck).Methods(http.MethodGet)
	s.router.HandleFunc("/api/health", s.healthCheck).Methods(http.MethodGet)
	s.router.HandleFunc("/api/device-statuses", s.deviceStatuses).Methods(http.MethodGet)
	s.router.HandleFunc("/api/outage-events", s.outageEvents).Methods(http.MethodGet)

	if s.hub != nil {
		s.router.HandleFunc("/ws", s.hub.HandleConnect).Methods(http.MethodGet)
	}

	// Preflight requests must be answered before mux method matching.
	s.handler = cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{runIDHeader},
		MaxAge:         300,
	})(s.router)
}

// Handler returns the routed HTTP handler.
func (s *APIServer) Handler() http.Handler {
	return s.handler
}
