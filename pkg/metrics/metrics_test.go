// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-vss.
//
// go-vss is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-vss/pkg/health"
)

func TestEnableDisable(t *testing.T) {
	assert.True(t, IsEnabled())
	Disable()
	assert.False(t, IsEnabled())

	OperationsTotal.Reset()
	RecordOperation(RoleSender, OpDistribute, nil, time.Millisecond)
	assert.Equal(t, 0, testutil.CollectAndCount(OperationsTotal))

	Enable()
	assert.True(t, IsEnabled())
}

func TestRecordOperation(t *testing.T) {
	Enable()
	OperationsTotal.Reset()
	OperationDuration.Reset()

	RecordOperation(RoleSender, OpDistribute, nil, 10*time.Millisecond)
	RecordOperation(RoleSender, OpDistribute, errors.New("x"), time.Millisecond)
	RecordOperation(RoleReceiver, OpReconstruct, nil, time.Millisecond)

	assert.Equal(t, 3, testutil.CollectAndCount(OperationsTotal))
	assert.Equal(t, 2, testutil.CollectAndCount(OperationDuration))
	assert.Equal(t, 1.0, testutil.ToFloat64(
		OperationsTotal.WithLabelValues(RoleSender, OpDistribute, StatusError)))
}

func TestShareCounters(t *testing.T) {
	Enable()
	SharesTotal.Reset()
	TamperedTotal.Reset()
	BytesTotal.Reset()

	RecordShare("aux", ResultAccepted)
	RecordShare("aux", ResultAccepted)
	RecordShare("aux", ResultRejected)
	RecordTamper("aux")
	AddBytes(RoleNode, DirectionIn, 40)
	AddBytes(RoleNode, DirectionIn, 2)
	AddBytes(RoleNode, DirectionOut, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(SharesTotal.WithLabelValues("aux", ResultAccepted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(TamperedTotal.WithLabelValues("aux")))
	assert.Equal(t, 42.0, testutil.ToFloat64(BytesTotal.WithLabelValues(RoleNode, DirectionIn)))
	assert.Equal(t, 1, testutil.CollectAndCount(BytesTotal))
}

func TestTrackConnection(t *testing.T) {
	Enable()
	ActiveConnections.Reset()

	done := TrackConnection(RoleNode)
	assert.Equal(t, 1.0, testutil.ToFloat64(ActiveConnections.WithLabelValues(RoleNode)))
	done()
	assert.Equal(t, 0.0, testutil.ToFloat64(ActiveConnections.WithLabelValues(RoleNode)))
}

func TestResourceCollector(t *testing.T) {
	Enable()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rc := StartResourceCollector(ctx, 10*time.Millisecond)
	rc.AddSampler(func() { NodeState.WithLabelValues("20010").Set(2) })
	require.Eventually(t, func() bool {
		return testutil.ToFloat64(Goroutines) > 0 &&
			testutil.ToFloat64(NodeState.WithLabelValues("20010")) == 2
	}, time.Second, 5*time.Millisecond)
	rc.Stop()
}

func TestServer(t *testing.T) {
	Enable()
	RecordShare("mac", ResultAccepted)

	checker := health.NewChecker()
	checker.MarkStarted()
	srv, err := Listen("127.0.0.1:0", checker)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	resp, err := http.Get("http://" + srv.Addr() + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), "vss_shares_total")

	resp, err = http.Get("http://" + srv.Addr() + "/readyz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	require.NoError(t, <-done)
}
