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

package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mfreeman451/fleetwatch/pkg/alerts"
	"github.com/mfreeman451/fleetwatch/pkg/archive"
	"github.com/mfreeman451/fleetwatch/pkg/balena"
	"github.com/mfreeman451/fleetwatch/pkg/config"
	"github.com/mfreeman451/fleetwatch/pkg/db"
	"github.com/mfreeman451/fleetwatch/pkg/health"
	"github.com/mfreeman451/fleetwatch/pkg/heartbeat"
	"github.com/mfreeman451/fleetwatch/pkg/snapshot"
)

// app holds the components shared by every subcommand.
type app struct {
	cfg     *config.Config
	db      db.Service
	checker *health.Checker
	pruner  *snapshot.Pruner
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	database, err := db.New(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	fleet, err := balena.NewClient(balena.Config{
		APIURL:      cfg.Balena.APIURL,
		AppID:       cfg.Balena.AppID,
		BearerToken: cfg.Balena.BearerToken,
		Timeout:     time.Duration(cfg.Balena.Timeout),
		RateLimit:   cfg.Balena.RateLimit,
		Burst:       cfg.Balena.Burst,
	})
	if err != nil {
		_ = database.Close()

		return nil, err
	}

	checker, err := newChecker(cfg, database, fleet)
	if err != nil {
		_ = database.Close()

		return nil, err
	}

	pruner, err := newPruner(ctx, cfg, database)
	if err != nil {
		_ = database.Close()

		return nil, err
	}

	return &app{cfg: cfg, db: database, checker: checker, pruner: pruner}, nil
}

func newChecker(cfg *config.Config, database db.Service, fleet balena.FleetClient) (*health.Checker, error) {
	headers := make([]alerts.Header, 0, len(cfg.Slack.Headers))
	for _, h := range cfg.Slack.Headers {
		headers = append(headers, alerts.Header{Key: h.Key, Value: h.Value})
	}

	slack, err := alerts.NewSlackWebhook(cfg.Slack.WebhookURL, time.Duration(cfg.Slack.Timeout), headers)
	if err != nil {
		return nil, err
	}

	if !slack.IsEnabled() {
		log.Printf("alerts: no Slack webhook configured, notifications disabled")
	}

	gate := heartbeat.NewGate(database, time.Duration(cfg.Heartbeat.Interval))
	window := time.Duration(cfg.Alerting.Window)

	dispatcher := alerts.NewDispatcher(alerts.DispatcherConfig{
		IgnoreList: cfg.Alerting.IgnoreList,
		Threshold:  cfg.Alerting.Threshold,
		Window:     window,
	}, slack)

	return health.NewChecker(
		fleet,
		gate,
		snapshot.NewStore(database, gate),
		snapshot.NewAggregator(database, window),
		dispatcher,
	), nil
}

func newPruner(ctx context.Context, cfg *config.Config, database db.Service) (*snapshot.Pruner, error) {
	var archiver snapshot.Archiver

	if a := cfg.Retention.Archive; a != nil {
		s3, err := archive.NewS3Archiver(archive.Config{
			Endpoint:  a.Endpoint,
			AccessKey: a.AccessKey,
			SecretKey: a.SecretKey,
			Region:    a.Region,
			UseSSL:    a.UseSSL,
			Bucket:    a.Bucket,
		})
		if err != nil {
			return nil, err
		}

		if err := s3.EnsureBucket(ctx); err != nil {
			return nil, err
		}

		archiver = s3
	}

	return snapshot.NewPruner(database, time.Duration(cfg.Retention.Period), archiver), nil
}

func (a *app) Close() error {
	return a.db.Close()
}
