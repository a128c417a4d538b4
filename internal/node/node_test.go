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

package node

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-vss/internal/testutil"
	"github.com/jeremyhahn/go-vss/pkg/bundle"
	"github.com/jeremyhahn/go-vss/pkg/sharing"
	"github.com/jeremyhahn/go-vss/pkg/transport"
	"github.com/jeremyhahn/go-vss/pkg/verification"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

type harness struct {
	node         *Node
	senderPort   int
	receiverPort int
	strangerPort int
	addr         string
	dialer       *transport.Dialer
	done         chan error
}

func startNode(t *testing.T, mode verification.Mode, dishonest bool, mutate func(*Config)) *harness {
	t.Helper()
	ports := testutil.ReservePorts(t, 4)
	cfg := &Config{
		Host:          "127.0.0.1",
		Port:          ports[0],
		Mode:          mode,
		BufferSize:    16,
		SenderPorts:   []int{ports[1]},
		ReceiverPorts: []int{ports[2]},
		Dishonest:     dishonest,
		ShareTimeout:  5 * time.Second,
		IOTimeout:     5 * time.Second,
		Logger:        testutil.Logger(t),
	}
	if mutate != nil {
		mutate(cfg)
	}
	n, err := New(cfg)
	require.NoError(t, err)
	assert.Equal(t, StateIdle, n.State())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, n.Listen(ctx))

	h := &harness{
		node:         n,
		senderPort:   ports[1],
		receiverPort: ports[2],
		strangerPort: ports[3],
		addr:         transport.JoinHostPort("127.0.0.1", ports[0]),
		dialer: transport.NewDialer("127.0.0.1", &transport.DialOptions{
			Retries: 3,
			Backoff: 5 * time.Millisecond,
			Conn:    transport.Options{Timeout: 5 * time.Second},
		}),
		done: make(chan error, 1),
	}
	go func() { h.done <- n.Serve(ctx) }()
	return h
}

func (h *harness) send(t *testing.T, payload []byte) {
	t.Helper()
	c, err := h.dialer.DialContext(context.Background(), h.senderPort, h.addr)
	require.NoError(t, err)
	defer c.Close()
	require.NoError(t, c.Send(payload))
}

func (h *harness) receive(t *testing.T) []byte {
	t.Helper()
	c, err := h.dialer.DialContext(context.Background(), h.receiverPort, h.addr)
	require.NoError(t, err)
	defer c.Close()
	payload, err := c.Recv(transport.DefaultBufferSize)
	require.NoError(t, err)
	return payload
}

func (h *harness) wait(t *testing.T) error {
	t.Helper()
	select {
	case err := <-h.done:
		return err
	case <-time.After(10 * time.Second):
		t.Fatal("node did not finish")
		return nil
	}
}

func plainPayload(t *testing.T) []byte {
	t.Helper()
	p, err := bundle.NewPlain(sharing.Share{X: 2, Y: big.NewInt(123456789)}).Encode()
	require.NoError(t, err)
	return p
}

func TestRelaySenderFirst(t *testing.T) {
	h := startNode(t, verification.ModeNone, false, nil)
	payload := plainPayload(t)

	h.send(t, payload)
	assert.Equal(t, payload, h.receive(t))
	require.NoError(t, h.wait(t))
	assert.Equal(t, StateDone, h.node.State())
}

func TestRelayReceiverFirst(t *testing.T) {
	h := startNode(t, verification.ModeNone, false, nil)
	payload := plainPayload(t)

	got := make(chan []byte, 1)
	go func() {
		c, err := h.dialer.DialContext(context.Background(), h.receiverPort, h.addr)
		if err != nil {
			got <- nil
			return
		}
		defer c.Close()
		p, _ := c.Recv(transport.DefaultBufferSize)
		got <- p
	}()

	require.Eventually(t, func() bool {
		return h.node.State() == StateAwaitingPeers
	}, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	h.send(t, payload)

	select {
	case p := <-got:
		assert.Equal(t, payload, p)
	case <-time.After(5 * time.Second):
		t.Fatal("receiver got nothing")
	}
	require.NoError(t, h.wait(t))
}

func TestDishonestTampers(t *testing.T) {
	shares, err := sharing.GenerateSharesFromInt(big.NewInt(4242), 3, 2, big.NewInt(8191))
	require.NoError(t, err)
	prime := big.NewInt(8191)
	infos, err := verification.GenerateAuxInfo(shares, prime)
	require.NoError(t, err)

	tests := []struct {
		mode verification.Mode
		opts *bundle.Options
	}{
		{verification.ModeNone, nil},
		{verification.ModeMAC, &bundle.Options{Key: testKey}},
		{verification.ModeAux, &bundle.Options{Aux: &infos[0]}},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			b, err := bundle.Build(tt.mode, shares[0], tt.opts)
			require.NoError(t, err)
			payload, err := b.Encode()
			require.NoError(t, err)

			h := startNode(t, tt.mode, true, nil)
			h.send(t, payload)
			out := h.receive(t)
			require.NoError(t, h.wait(t))

			assert.NotEqual(t, payload, out)
			got, err := bundle.Decode(tt.mode, out)
			require.NoError(t, err, "tampered bundle keeps its wire shape")
			assert.Equal(t, shares[0].X, got.Point().X)
			assert.NotZero(t, shares[0].Y.Cmp(got.Point().Y))

			if tt.mode == verification.ModeMAC {
				c := got.Candidate()
				assert.False(t, verification.VerifyMAC(c.Payload, testKey, c.Tag))
			}
		})
	}
}

func TestUnknownPortDropped(t *testing.T) {
	h := startNode(t, verification.ModeNone, false, nil)

	c, err := h.dialer.DialContext(context.Background(), h.strangerPort, h.addr)
	require.NoError(t, err)
	_, err = c.Recv(16)
	assert.ErrorIs(t, err, transport.ErrConnectionClosed)
	c.Close()

	payload := plainPayload(t)
	h.send(t, payload)
	assert.Equal(t, payload, h.receive(t))
	require.NoError(t, h.wait(t))
}

func TestShareTimeout(t *testing.T) {
	h := startNode(t, verification.ModeNone, false, func(c *Config) {
		c.ShareTimeout = 100 * time.Millisecond
	})

	c, err := h.dialer.DialContext(context.Background(), h.receiverPort, h.addr)
	require.NoError(t, err)
	defer c.Close()

	assert.ErrorIs(t, h.wait(t), ErrShareTimeout)
}

func TestServeLifecycle(t *testing.T) {
	ports := testutil.ReservePorts(t, 3)
	n, err := New(&Config{
		Host:          "127.0.0.1",
		Mode:          verification.ModeNone,
		SenderPorts:   ports[:1],
		ReceiverPorts: ports[1:2],
	})
	require.NoError(t, err)
	assert.Nil(t, n.Addr())
	assert.ErrorIs(t, n.Serve(context.Background()), ErrNotListening)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, n.Listen(ctx))
	assert.NotNil(t, n.Addr())

	done := make(chan error, 1)
	go func() { done <- n.Serve(ctx) }()
	require.Eventually(t, func() bool {
		return n.State() == StateAwaitingPeers
	}, time.Second, 5*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.ErrorIs(t, n.Serve(context.Background()), ErrAlreadyServed)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"bad mode", Config{SenderPorts: []int{1}, ReceiverPorts: []int{2}}},
		{"no sender ports", Config{Mode: verification.ModeNone, ReceiverPorts: []int{2}}},
		{"overlap", Config{Mode: verification.ModeNone, SenderPorts: []int{1, 2}, ReceiverPorts: []int{2}}},
		{"bad port", Config{Port: 70000, Mode: verification.ModeNone, SenderPorts: []int{1}, ReceiverPorts: []int{2}}},
		{"negative buffer", Config{Mode: verification.ModeNone, BufferSize: -1, SenderPorts: []int{1}, ReceiverPorts: []int{2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(&tt.cfg)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}

	cfg := &Config{Mode: verification.ModeAux, SenderPorts: []int{1}, ReceiverPorts: []int{2}}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, transport.DefaultBufferSize, cfg.BufferSize)
	assert.Equal(t, DefaultShareTimeout, cfg.ShareTimeout)
	assert.Equal(t, DefaultIOTimeout, cfg.IOTimeout)

	assert.Equal(t, "forwarding", StateForwarding.String())
	assert.Equal(t, "unknown", State(99).String())
}
