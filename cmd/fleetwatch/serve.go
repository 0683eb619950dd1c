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
	"time"

	"github.com/spf13/cobra"

	"github.com/mfreeman451/fleetwatch/pkg/api"
	"github.com/mfreeman451/fleetwatch/pkg/grpc"
	"github.com/mfreeman451/fleetwatch/pkg/hub"
	"github.com/mfreeman451/fleetwatch/pkg/lifecycle"
	"github.com/mfreeman451/fleetwatch/pkg/scheduler"
)

const (
	serviceName = "fleetwatch"
	jobTimeout  = 5 * time.Minute
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, websocket feed and scheduled jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}

			ctx := commandContext(cmd)

			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeApp(a)

			return a.serve(ctx)
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	h := hub.New(a.cfg.AllowedOrigins)
	a.checker.OnResult(api.PublishReports(h))

	sched := scheduler.New(jobTimeout)

	if expr := a.cfg.Schedule.Check; expr != "" {
		if err := sched.Add("health-check", expr, func(ctx context.Context) error {
			_, err := a.checker.Run(ctx)

			return err
		}); err != nil {
			return err
		}
	}

	if expr := a.cfg.Schedule.Prune; expr != "" {
		if err := sched.Add("prune", expr, func(ctx context.Context) error {
			_, err := a.pruner.Prune(ctx)

			return err
		}); err != nil {
			return err
		}
	}

	var grpcServer *grpc.Server

	if a.cfg.GrpcAddr != "" {
		grpcServer = grpc.NewServer(a.cfg.GrpcAddr, serviceName)
		grpcServer.SetServing(true)
		a.checker.OnResult(grpcServer.TrackRuns())
	}

	server := api.NewAPIServer(api.Options{
		Runner:         a.checker,
		DB:             a.db,
		Hub:            h,
		AllowedOrigins: a.cfg.AllowedOrigins,
		RunTimeout:     jobTimeout,
	})

	return lifecycle.RunServer(ctx, &lifecycle.ServerOptions{
		ServiceName:    serviceName,
		ListenAddr:     a.cfg.ListenAddr,
		MaxConnections: a.cfg.MaxConnections,
		Handler:        server.Handler(),
		GRPCServer:     grpcServer,
		Services:       []lifecycle.Service{h, sched},
	})
}
