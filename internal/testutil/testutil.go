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

// Package testutil holds helpers shared by network tests.
package testutil

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-vss/pkg/adapters/logger"
)

// ReservePorts returns n distinct loopback ports that were free a moment
// ago. Each port is found by binding 127.0.0.1:0 and closing the listener
// once all n are known.
func ReservePorts(t testing.TB, n int) []int {
	t.Helper()
	ports := make([]int, 0, n)
	listeners := make([]net.Listener, 0, n)
	for i := 0; i < n; i++ {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		listeners = append(listeners, ln)
		ports = append(ports, ln.Addr().(*net.TCPAddr).Port)
	}
	for _, ln := range listeners {
		_ = ln.Close()
	}
	return ports
}

// Logger returns a logger that writes debug output through t.Log.
func Logger(t testing.TB) logger.Logger {
	return logger.NewSlogAdapter(&logger.SlogConfig{
		Level:  logger.LevelDebug,
		Writer: testWriter{t},
	})
}

type testWriter struct{ t testing.TB }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}
