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

package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-vss/pkg/correlation"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"", LevelInfo},
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warning", LevelWarn},
		{"Error", LevelError},
		{"fatal", LevelFatal},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
	_, err := ParseLevel("loud")
	assert.Error(t, err)

	assert.Equal(t, "WARN", LevelWarn.String())
	assert.Equal(t, "UNKNOWN", Level(42).String())
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var rec map[string]any
		require.NoError(t, json.Unmarshal(line, &rec))
		out = append(out, rec)
	}
	return out
}

func TestJSONAdapter(t *testing.T) {
	var buf bytes.Buffer
	lg, err := New("debug", "json", &buf)
	require.NoError(t, err)

	child := lg.With(Role("node"), Port(23000))
	child.Info("share received", Int("bytes", 128), Duration("elapsed", time.Millisecond))
	child.WithError(errors.New("boom")).Warn("relay failed")
	lg.Debug("debug line", Bool("dishonest", true), Ints("ports", []int{1, 2}))

	recs := decodeLines(t, &buf)
	require.Len(t, recs, 3)

	assert.Equal(t, "share received", recs[0]["msg"])
	assert.Equal(t, "node", recs[0]["role"])
	assert.EqualValues(t, 23000, recs[0]["port"])
	assert.EqualValues(t, 128, recs[0]["bytes"])

	assert.Equal(t, "WARN", recs[1]["level"])
	assert.Equal(t, "boom", recs[1]["error"])

	assert.Equal(t, true, recs[2]["dishonest"])
}

func TestLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	lg, err := New("warn", "text", &buf)
	require.NoError(t, err)

	lg.Info("hidden")
	lg.Debug("hidden")
	lg.Error("shown", String("k", "v"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "k=v")
}

func TestContextSession(t *testing.T) {
	var buf bytes.Buffer
	lg, err := New("info", "json", &buf)
	require.NoError(t, err)

	ctx := correlation.WithCorrelationID(context.Background(), "sess-1")
	lg.InfoContext(ctx, "with session")
	lg.InfoContext(context.Background(), "without session")
	FromContext(ctx, lg).Info("derived")

	recs := decodeLines(t, &buf)
	require.Len(t, recs, 3)
	assert.Equal(t, "sess-1", recs[0]["session_id"])
	assert.NotContains(t, recs[1], "session_id")
	assert.Equal(t, "sess-1", recs[2]["session_id"])
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	_, err := New("info", "xml", nil)
	assert.Error(t, err)
	_, err = New("chatty", "json", nil)
	assert.Error(t, err)
}

func TestNop(t *testing.T) {
	lg := Nop()
	lg.Info("dropped")
	lg.With(String("a", "b")).Error("dropped")
}
