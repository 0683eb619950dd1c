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

// Package lifecycle pkg/lifecycle/server.go runs the HTTP server, the
// optional gRPC health server and background services until shutdown.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/net/netutil"

	"github.com/mfreeman451/fleetwatch/pkg/grpc"
)

const (
	ShutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
)

// Service defines the interface that all background services must implement.
// Start may block until ctx is done.
type Service interface {
	Start(context.Context) error
	Stop(context.Context) error
}

// ServerOptions holds configuration for running the server.
type ServerOptions struct {
	ServiceName string
	ListenAddr  string
	// Listener overrides ListenAddr when set.
	Listener net.Listener
	// MaxConnections caps concurrent HTTP connections. Zero means no cap.
	MaxConnections int
	Handler        http.Handler
	// GRPCServer is optional.
	GRPCServer *grpc.Server
	Services   []Service
}

// RunServer starts everything in opts and blocks until a signal arrives,
// ctx is canceled, or a component fails.
func RunServer(ctx context.Context, opts *ServerOptions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log.Printf("*** Starting service %s", opts.ServiceName)

	lis, err := listen(opts)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Handler:           opts.Handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Create error channel for component errors
	errChan := make(chan error, 2+len(opts.Services))

	for _, svc := range opts.Services {
		go func(svc Service) {
			if err := svc.Start(ctx); err != nil {
				errChan <- fmt.Errorf("service error: %w", err)
			}
		}(svc)
	}

	go func() {
		log.Printf("Starting HTTP server on %s", lis.Addr())

		if err := httpServer.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	if opts.GRPCServer != nil {
		go func() {
			log.Printf("Starting gRPC server on %s", opts.GRPCServer.Addr())

			if err := opts.GRPCServer.Start(); err != nil {
				errChan <- fmt.Errorf("grpc server error: %w", err)
			}
		}()
	}

	return handleShutdown(ctx, cancel, httpServer, opts, errChan)
}

func listen(opts *ServerOptions) (net.Listener, error) {
	lis := opts.Listener
	if lis == nil {
		var err error

		lis, err = net.Listen("tcp", opts.ListenAddr)
		if err != nil {
			return nil, fmt.Errorf("failed to listen on %s: %w", opts.ListenAddr, err)
		}
	}

	if opts.MaxConnections > 0 {
		lis = netutil.LimitListener(lis, opts.MaxConnections)
	}

	return lis, nil
}

func handleShutdown(
	ctx context.Context,
	cancel context.CancelFunc,
	httpServer *http.Server,
	opts *ServerOptions,
	errChan chan error) error {
	// Setup signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	defer signal.Stop(sigChan)

	var runErr error

	// Wait for shutdown signal or error
	select {
	case sig := <-sigChan:
		log.Printf("Received signal %v, initiating shutdown", sig)
	case runErr = <-errChan:
		log.Printf("Received error: %v, initiating shutdown", runErr)
	case <-ctx.Done():
		log.Printf("Context canceled, initiating shutdown")
	}

	// Create timeout context for shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during HTTP shutdown: %v", err)
	}

	if opts.GRPCServer != nil {
		opts.GRPCServer.Stop(shutdownCtx)
	}

	// Cancel main context
	cancel()

	for _, svc := range opts.Services {
		if err := svc.Stop(shutdownCtx); err != nil {
			log.Printf("Error during service shutdown: %v", err)

			if runErr == nil {
				runErr = fmt.Errorf("shutdown error: %w", err)
			}
		}
	}

	return runErr
}
