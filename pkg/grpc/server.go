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

// Package grpc pkg/grpc/server.go exposes the standard gRPC health service
// so load balancers and orchestrators can probe fleetwatch.
package grpc

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"runtime/debug"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/mfreeman451/fleetwatch/pkg/health"
)

const (
	stopTimeout     = 5 * time.Second
	probeIdle       = 5 * time.Minute
	probeMinPingGap = 30 * time.Second
)

// ServerOption customises a Server before the underlying grpc.Server is built.
type ServerOption func(*Server)

// Server carries the grpc.health.v1 service for a single named service.
// Readiness follows the outcome of the most recent health-check run.
type Server struct {
	srv     *grpc.Server
	probes  *grpchealth.Server
	addr    string
	service string
	opts    []grpc.ServerOption
}

// NewServer builds a health server for service. It starts NOT_SERVING until
// SetServing or a tracked run says otherwise.
func NewServer(addr, service string, opts ...ServerOption) *Server {
	s := &Server{
		addr:    addr,
		service: service,
		opts: []grpc.ServerOption{
			grpc.ChainUnaryInterceptor(unaryRecover, unaryLogger),
			grpc.KeepaliveParams(keepalive.ServerParameters{MaxConnectionIdle: probeIdle}),
			grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
				MinTime:             probeMinPingGap,
				PermitWithoutStream: true,
			}),
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	s.srv = grpc.NewServer(s.opts...)
	s.probes = grpchealth.NewServer()
	s.probes.SetServingStatus(service, healthpb.HealthCheckResponse_NOT_SERVING)

	healthpb.RegisterHealthServer(s.srv, s.probes)
	reflection.Register(s.srv)

	return s
}

// WithMaxRecvSize sets the maximum receive message size.
func WithMaxRecvSize(size int) ServerOption {
	return func(s *Server) {
		s.opts = append(s.opts, grpc.MaxRecvMsgSize(size))
	}
}

func (s *Server) Addr() string {
	return s.addr
}

// SetServing sets the status reported for the service.
func (s *Server) SetServing(serving bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}

	s.probes.SetServingStatus(s.service, st)
}

// TrackRuns returns a listener that marks the service NOT_SERVING while the
// fleet API is unreachable. Degraded persistence or alerting keeps it SERVING.
func (s *Server) TrackRuns() health.Listener {
	return func(_ *health.Result, err error) {
		s.SetServing(!errors.Is(err, health.ErrUpstreamFetch))
	}
}

// Start listens on the configured address and serves until Stop.
func (s *Server) Start() error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("grpc: failed to listen on %s: %w", s.addr, err)
	}

	return s.Serve(lis)
}

// Serve serves on lis until Stop.
func (s *Server) Serve(lis net.Listener) error {
	log.Printf("grpc: health service %q listening on %s", s.service, lis.Addr())

	if err := s.srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("grpc: serve: %w", err)
	}

	return nil
}

// Stop reports NOT_SERVING to in-flight probes and drains the server,
// forcing it closed after stopTimeout or when ctx ends.
func (s *Server) Stop(ctx context.Context) {
	s.probes.Shutdown()

	ctx, cancel := context.WithTimeout(ctx, stopTimeout)
	defer cancel()

	drained := make(chan struct{})

	go func() {
		s.srv.GracefulStop()
		close(drained)
	}()

	select {
	case <-drained:
	case <-ctx.Done():
		log.Printf("grpc: drain timed out, closing connections")
		s.srv.Stop()
	}
}

// unaryLogger logs failed RPCs. Successful probes are too frequent to log.
func unaryLogger(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()

	resp, err := handler(ctx, req)
	if err != nil {
		log.Printf("grpc: %s failed after %s: %v", info.FullMethod, time.Since(start), err)
	}

	return resp, err
}

func unaryRecover(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("grpc: panic in %s: %v\n%s", info.FullMethod, r, debug.Stack())

			err = status.Error(codes.Internal, "internal error")
		}
	}()

	return handler(ctx, req)
}
