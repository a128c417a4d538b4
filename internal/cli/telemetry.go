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


package cli

import (
	"context"
	"time"

	"github.com/jeremyhahn/go-vss/pkg/adapters/logger"
	"github.com/jeremyhahn/go-vss/pkg/health"
	"github.com/jeremyhahn/go-vss/pkg/metrics"
)

const resourceInterval = 5 * time.Second

// startTelemetry serves /metrics and the health probes on --metrics-addr
// until ctx is done, refreshing the samplers on every collection tick.
// Without an address only the checker is returned.
func startTelemetry(ctx context.Context, lg logger.Logger, samplers ...metrics.Sampler) (*health.Checker, error) {
	checker := health.NewChecker()
	addr := getConfig().MetricsAddr
	if addr == "" {
		return checker, nil
	}
	srv, err := metrics.Listen(addr, checker)
	if err != nil {
		return nil, err
	}
	rc := metrics.StartResourceCollector(ctx, resourceInterval, samplers...)
	go func() {
		defer rc.Stop()
		if err := srv.Serve(ctx); err != nil {
			lg.Error("metrics server stopped", logger.Error(err))
		}
	}()
	lg.Info("serving metrics", logger.String("addr", srv.Addr()))
	return checker, nil
}
