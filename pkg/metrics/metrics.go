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

// Package metrics exposes Prometheus instrumentation for sharing sessions:
// per-role operation counts and latencies, share traffic, verification
// outcomes and process resource gauges.
package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// Namespace prefixes every metric name.
	Namespace = "vss"

	LabelRole      = "role"
	LabelOperation = "operation"
	LabelStatus    = "status"
	LabelMode      = "mode"
	LabelResult    = "result"
	LabelDirection = "direction"
	LabelPort      = "port"

	StatusSuccess = "success"
	StatusError   = "error"

	RoleSender   = "sender"
	RoleNode     = "node"
	RoleReceiver = "receiver"

	OpDistribute  = "distribute"
	OpRelay       = "relay"
	OpReconstruct = "reconstruct"
	OpVerify      = "verify"
	OpDial        = "dial"

	ResultAccepted = "accepted"
	ResultRejected = "rejected"
	ResultMissing  = "missing"

	DirectionIn  = "in"
	DirectionOut = "out"
)

var (
	// OperationsTotal counts role operations by outcome.
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "operations_total",
			Help:      "Total number of protocol operations by role, operation and status",
		},
		[]string{LabelRole, LabelOperation, LabelStatus},
	)

	// OperationDuration observes role operation latency in seconds.
	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of protocol operations in seconds",
			Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 5, 30},
		},
		[]string{LabelRole, LabelOperation},
	)

	// SharesTotal counts share verification outcomes at the receiver.
	SharesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "shares_total",
			Help:      "Shares seen by the receiver by verification mode and result",
		},
		[]string{LabelMode, LabelResult},
	)

	// TamperedTotal counts shares altered by dishonest nodes.
	TamperedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "tampered_shares_total",
			Help:      "Shares altered by dishonest nodes by verification mode",
		},
		[]string{LabelMode},
	)

	// BytesTotal counts framed payload bytes moved by each role.
	BytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "bytes_total",
			Help:      "Payload bytes sent or received by role and direction",
		},
		[]string{LabelRole, LabelDirection},
	)

	// ActiveConnections tracks open share connections by role.
	ActiveConnections = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "active_connections",
			Help:      "Number of open share connections by role",
		},
		[]string{LabelRole},
	)

	// NodeState exposes a node's lifecycle state as its numeric value.
	NodeState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "node_state",
			Help:      "Lifecycle state of a node: 0 idle, 1 awaiting peers, 2 share held, 3 forwarding, 4 done",
		},
		[]string{LabelPort},
	)

	Goroutines = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "goroutines",
		Help:      "Current number of goroutines",
	})

	MemoryAllocBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "memory_alloc_bytes",
		Help:      "Current bytes of allocated heap objects",
	})

	Uptime = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "uptime_seconds",
		Help:      "Seconds since the process started collecting metrics",
	})

	enabled atomic.Bool
)

func init() {
	enabled.Store(true)
}

// RecordOperation counts one operation and observes its duration.
func RecordOperation(role, operation string, err error, duration time.Duration) {
	if !enabled.Load() {
		return
	}
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	OperationsTotal.WithLabelValues(role, operation, status).Inc()
	OperationDuration.WithLabelValues(role, operation).Observe(duration.Seconds())
}

// RecordShare counts one receiver-side verification outcome.
func RecordShare(mode, result string) {
	if !enabled.Load() {
		return
	}
	SharesTotal.WithLabelValues(mode, result).Inc()
}

// RecordTamper counts one share altered by a dishonest node.
func RecordTamper(mode string) {
	if !enabled.Load() {
		return
	}
	TamperedTotal.WithLabelValues(mode).Inc()
}

// AddBytes adds n payload bytes for role in direction.
func AddBytes(role, direction string, n int) {
	if !enabled.Load() || n <= 0 {
		return
	}
	BytesTotal.WithLabelValues(role, direction).Add(float64(n))
}

// TrackConnection increments the open-connection gauge for role and returns
// a func that decrements it.
func TrackConnection(role string) func() {
	if !enabled.Load() {
		return func() {}
	}
	g := ActiveConnections.WithLabelValues(role)
	g.Inc()
	return g.Dec
}

func Enable() { enabled.Store(true) }

func Disable() { enabled.Store(false) }

func IsEnabled() bool { return enabled.Load() }
