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

package lifecycle

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	started  atomic.Bool
	stopped  atomic.Bool
	startErr error
	stopErr  error
}

func (f *fakeService) Start(ctx context.Context) error {
	f.started.Store(true)

	if f.startErr != nil {
		return f.startErr
	}

	<-ctx.Done()

	return nil
}

func (f *fakeService) Stop(context.Context) error {
	f.stopped.Store(true)

	return f.stopErr
}

func TestRunServerServesUntilCanceled(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	svc := &fakeService{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- RunServer(ctx, &ServerOptions{
			ServiceName:    "fleetwatch",
			Listener:       lis,
			MaxConnections: 4,
			Handler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, "ok")
			}),
			Services: []Service{svc},
		})
	}()

	var body []byte

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + lis.Addr().String() + "/")
		if err != nil {
			return false
		}
		defer func() { _ = resp.Body.Close() }()

		body, _ = io.ReadAll(resp.Body)

		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	assert.Equal(t, "ok", string(body))
	assert.True(t, svc.started.Load())

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("RunServer did not return after cancel")
	}

	assert.True(t, svc.stopped.Load())
}

func TestRunServerServiceFailure(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	errBoom := errors.New("boom")
	svc := &fakeService{startErr: errBoom}

	err = RunServer(context.Background(), &ServerOptions{
		ServiceName: "fleetwatch",
		Listener:    lis,
		Handler:     http.NotFoundHandler(),
		Services:    []Service{svc},
	})

	require.ErrorIs(t, err, errBoom)
	assert.True(t, svc.stopped.Load())
}

func TestRunServerListenFailure(t *testing.T) {
	err := RunServer(context.Background(), &ServerOptions{
		ServiceName: "fleetwatch",
		ListenAddr:  "256.0.0.1:bad",
		Handler:     http.NotFoundHandler(),
	})

	require.Error(t, err)
}
