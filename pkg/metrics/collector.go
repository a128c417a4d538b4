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
	"runtime"
	"sync"
	"time"
)

// Sampler refreshes gauges that are read rather than pushed, such as a
// node's state.
type Sampler func()

// ResourceCollector refreshes the runtime gauges and any registered
// samplers on every tick.
type ResourceCollector struct {
	interval time.Duration
	started  time.Time
	cancel   context.CancelFunc
	done     chan struct{}

	mu       sync.Mutex
	samplers []Sampler
}

// StartResourceCollector samples once immediately and then every interval
// until ctx is done or Stop is called.
func StartResourceCollector(ctx context.Context, interval time.Duration, samplers ...Sampler) *ResourceCollector {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	ctx, cancel := context.WithCancel(ctx)
	rc := &ResourceCollector{
		interval: interval,
		started:  time.Now(),
		cancel:   cancel,
		done:     make(chan struct{}),
		samplers: samplers,
	}
	go rc.loop(ctx)
	return rc
}

// AddSampler registers s for the following ticks.
func (rc *ResourceCollector) AddSampler(s Sampler) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.samplers = append(rc.samplers, s)
}

// Stop ends sampling and waits for the last tick to finish.
func (rc *ResourceCollector) Stop() {
	rc.cancel()
	<-rc.done
}

func (rc *ResourceCollector) loop(ctx context.Context) {
	defer close(rc.done)
	ticker := time.NewTicker(rc.interval)
	defer ticker.Stop()
	for {
		rc.sample()
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (rc *ResourceCollector) sample() {
	if !IsEnabled() {
		return
	}
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	Goroutines.Set(float64(runtime.NumGoroutine()))
	MemoryAllocBytes.Set(float64(mem.Alloc))
	Uptime.Set(time.Since(rc.started).Seconds())

	rc.mu.Lock()
	samplers := rc.samplers
	rc.mu.Unlock()
	for _, s := range samplers {
		s()
	}
}
