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


package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartup(t *testing.T) {
	c := NewChecker()
	assert.Equal(t, StatusUnhealthy, c.Startup(context.Background()).Status)
	assert.False(t, c.IsStarted())

	c.MarkStarted()
	assert.Equal(t, StatusHealthy, c.Startup(context.Background()).Status)
	assert.True(t, c.IsStarted())
}

func TestReadyRunsChecksInOrder(t *testing.T) {
	c := NewChecker()
	c.MarkStarted()
	c.RegisterCheck("b", func(ctx context.Context) CheckResult {
		return CheckResult{Status: StatusDegraded, Message: "awaiting peers"}
	})
	c.RegisterCheck("a", func(ctx context.Context) CheckResult {
		return CheckResult{Name: "custom", Status: StatusHealthy}
	})
	c.RegisterCheck("nil", nil)

	results := c.Ready(context.Background())
	require.Len(t, results, 3)
	assert.Equal(t, "startup", results[0].Name)
	assert.Equal(t, "custom", results[1].Name)
	assert.Equal(t, "b", results[2].Name)
	assert.Equal(t, StatusDegraded, AggregateStatus(results))
}

func TestAggregateStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{"empty", nil, StatusHealthy},
		{"all healthy", []Status{StatusHealthy, StatusHealthy}, StatusHealthy},
		{"one degraded", []Status{StatusHealthy, StatusDegraded}, StatusDegraded},
		{"unhealthy wins", []Status{StatusDegraded, StatusUnhealthy, StatusHealthy}, StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := make([]CheckResult, len(tt.statuses))
			for i, s := range tt.statuses {
				results[i].Status = s
			}
			assert.Equal(t, tt.want, AggregateStatus(results))
		})
	}
}

func TestHandlers(t *testing.T) {
	c := NewChecker()
	mux := http.NewServeMux()
	c.Register(mux)

	get := func(path string) (int, response) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		var body response
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		return rec.Code, body
	}

	code, body := get("/livez")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, StatusHealthy, body.Status)

	code, _ = get("/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	code, _ = get("/startupz")
	assert.Equal(t, http.StatusServiceUnavailable, code)

	c.MarkStarted()
	code, body = get("/readyz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, StatusHealthy, body.Status)
}
