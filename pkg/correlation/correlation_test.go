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

package correlation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundTrip(t *testing.T) {
	ctx := WithCorrelationID(context.Background(), "abc")
	assert.Equal(t, "abc", GetCorrelationID(ctx))
	assert.Equal(t, "abc", GetOrGenerate(ctx))
	assert.Empty(t, GetCorrelationID(context.Background()))

	//nolint:staticcheck // nil context is tolerated
	assert.Empty(t, GetCorrelationID(nil))
	//nolint:staticcheck
	assert.Equal(t, "x", GetCorrelationID(WithCorrelationID(nil, "x")))
}

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	assert.NotEqual(t, a, b)
	assert.True(t, Valid(a))
	assert.False(t, Valid("not-a-uuid"))

	generated := GetOrGenerate(context.Background())
	assert.True(t, Valid(generated))
}

func TestEnsure(t *testing.T) {
	ctx, id := Ensure(context.Background())
	assert.True(t, Valid(id))
	assert.Equal(t, id, GetCorrelationID(ctx))

	same, again := Ensure(ctx)
	assert.Equal(t, id, again)
	assert.Equal(t, ctx, same)
}
