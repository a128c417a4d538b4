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

package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-vss/internal/config"
	"github.com/jeremyhahn/go-vss/internal/testutil"
	"github.com/jeremyhahn/go-vss/pkg/verification"
)

func newSession(t *testing.T, msg string, n, k, tol int, mode verification.Mode) *config.Session {
	t.Helper()
	network := config.DefaultNetwork()
	network.ShareTimeout = 10 * time.Second
	network.IOTimeout = 10 * time.Second
	network.BufferSize = 64

	s, err := config.NewSession(&config.SessionOptions{
		Message: msg,
		N:       n,
		K:       k,
		T:       tol,
		Mode:    mode,
		Network: &network,
	})
	require.NoError(t, err)

	ports := testutil.ReservePorts(t, 3*n)
	s.SenderPorts = ports[:n]
	s.ReceiverPorts = ports[n : 2*n]
	s.NodePorts = ports[2*n:]
	require.NoError(t, s.Validate())
	return s
}

func run(t *testing.T, s *config.Session, opts *Options) *Outcome {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = testutil.Logger(t)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	out, err := Run(ctx, s, opts)
	require.NoError(t, err)
	require.NotNil(t, out.Result)
	require.NotNil(t, out.Report)
	return out
}

func TestAuxDetectsOneDishonestNode(t *testing.T) {
	s := newSession(t, "hello", 5, 3, 1, verification.ModeAux)
	out := run(t, s, &Options{Dishonest: []int{2}})

	assert.Equal(t, "hello", string(out.Result.Secret))
	assert.Equal(t, []int{s.NodePorts[2]}, out.Result.Faulty)
	assert.Equal(t, []int{s.NodePorts[2]}, out.DishonestPorts)
	assert.Empty(t, out.Result.Missing)
	assert.NoError(t, out.NodeErrors)
	assert.Empty(t, out.Report.Failed)
}

func TestNoVerificationAllHonest(t *testing.T) {
	s := newSession(t, "hi", 4, 4, 0, verification.ModeNone)
	listening := false
	out := run(t, s, &Options{OnListening: func() { listening = true }})

	assert.True(t, listening)
	assert.Equal(t, "hi", string(out.Result.Secret))
	assert.Empty(t, out.Result.Faulty)
	assert.Empty(t, out.DishonestPorts)
}

func TestMACDetectsRandomDishonestNode(t *testing.T) {
	s := newSession(t, "attack at dawn", 6, 3, 2, verification.ModeMAC)
	require.Equal(t, 2, s.T)
	out := run(t, s, &Options{DishonestCount: 2})

	assert.Equal(t, "attack at dawn", string(out.Result.Secret))
	assert.Len(t, out.DishonestPorts, 2)
	assert.Equal(t, out.DishonestPorts, out.Result.Faulty)
}

func TestAuxWithZeroTolerance(t *testing.T) {
	s := newSession(t, "zero", 4, 4, 3, verification.ModeAux)
	require.Equal(t, 0, s.T)
	out := run(t, s, &Options{})

	assert.Equal(t, "zero", string(out.Result.Secret))
	assert.Empty(t, out.Result.Faulty)
}

func TestPickDishonest(t *testing.T) {
	s := newSession(t, "x", 7, 3, 2, verification.ModeNone)

	got, err := PickDishonest(s, &Options{Dishonest: []int{4, 1, 4}})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 4}, got)

	got, err = PickDishonest(s, &Options{DishonestCount: 2})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.NotEqual(t, got[0], got[1])

	_, err = PickDishonest(s, &Options{Dishonest: []int{0, 1, 2}})
	assert.ErrorIs(t, err, ErrTooManyDishonest)

	_, err = PickDishonest(s, &Options{DishonestCount: 3})
	assert.ErrorIs(t, err, ErrTooManyDishonest)

	_, err = PickDishonest(s, &Options{Dishonest: []int{7}})
	assert.ErrorIs(t, err, config.ErrNodeIndex)

	_, err = Run(context.Background(), s, &Options{DishonestCount: 5})
	assert.ErrorIs(t, err, ErrTooManyDishonest)
}
