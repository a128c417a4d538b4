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

// Package node implements an intermediate node: it accepts one share from
// the sender, optionally tampers with it, and forwards it to the receiver.
//
// The two peers are told apart only by their TCP source port, which must
// belong to the pre-shared sender or receiver port set. Either peer may
// connect first; the receiver handler blocks on a single-slot channel until
// the sender handler has stored the share.
package node

import (
	"context"
	"errors"
	"fmt"
	"net"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeremyhahn/go-vss/pkg/adapters/logger"
	"github.com/jeremyhahn/go-vss/pkg/bundle"
	"github.com/jeremyhahn/go-vss/pkg/metrics"
	"github.com/jeremyhahn/go-vss/pkg/transport"
	"github.com/jeremyhahn/go-vss/pkg/verification"
)

const (
	DefaultShareTimeout = 60 * time.Second
	DefaultIOTimeout    = 30 * time.Second

	// dropLogBurst warnings about unexpected peers are logged at once,
	// then at most one per second.
	dropLogBurst = 5
)

// Config describes one node.
type Config struct {
	Host string
	Port int
	Mode verification.Mode

	BufferSize int
	Separator  byte

	SenderPorts   []int
	ReceiverPorts []int

	// Dishonest nodes replace the share value before forwarding.
	Dishonest bool

	// ShareTimeout bounds how long a connected receiver waits for the share.
	ShareTimeout time.Duration

	// IOTimeout bounds each framed read and write.
	IOTimeout time.Duration

	Logger logger.Logger
}

// Validate fills defaults and checks the configuration.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d", ErrInvalidConfig, c.Port)
	}
	if err := c.Mode.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if len(c.SenderPorts) == 0 || len(c.ReceiverPorts) == 0 {
		return fmt.Errorf("%w: sender and receiver port sets are required", ErrInvalidConfig)
	}
	for _, p := range c.SenderPorts {
		if slices.Contains(c.ReceiverPorts, p) {
			return fmt.Errorf("%w: port %d is in both peer sets", ErrInvalidConfig, p)
		}
	}
	if c.BufferSize == 0 {
		c.BufferSize = transport.DefaultBufferSize
	}
	if c.BufferSize < 0 {
		return fmt.Errorf("%w: buffer size %d", ErrInvalidConfig, c.BufferSize)
	}
	if c.ShareTimeout == 0 {
		c.ShareTimeout = DefaultShareTimeout
	}
	if c.IOTimeout == 0 {
		c.IOTimeout = DefaultIOTimeout
	}
	return nil
}

// Node relays one share from the sender to the receiver.
type Node struct {
	cfg   *Config
	log   logger.Logger
	state atomic.Int32

	// drops throttles the warning for connections from unknown ports.
	drops *rate.Limiter

	mu       sync.Mutex
	listener net.Listener
	served   bool
}

// New validates cfg and returns an idle node.
func New(cfg *Config) (*Node, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil config", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	lg := cfg.Logger
	if lg == nil {
		lg = logger.Nop()
	}
	return &Node{
		cfg:   cfg,
		log:   lg.With(logger.Role(metrics.RoleNode), logger.Port(cfg.Port)),
		drops: rate.NewLimiter(rate.Every(time.Second), dropLogBurst),
	}, nil
}

// State returns the current lifecycle state.
func (n *Node) State() State {
	return State(n.state.Load())
}

func (n *Node) setState(s State) {
	n.state.Store(int32(s))
	n.log.Debug("state changed", logger.String("state", s.String()))
}

// Listen binds the node's port. A zero port binds an ephemeral one.
func (n *Node) Listen(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.listener != nil {
		return nil
	}
	ln, err := transport.Listen(ctx, n.cfg.Host, n.cfg.Port)
	if err != nil {
		return fmt.Errorf("node: listen on %d: %w", n.cfg.Port, err)
	}
	n.listener = ln
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (n *Node) Addr() net.Addr {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.listener == nil {
		return nil
	}
	return n.listener.Addr()
}

// Close releases the listener. It is safe to call after Serve returned.
func (n *Node) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.listener == nil {
		return nil
	}
	err := n.listener.Close()
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

// Run is Listen followed by Serve.
func (n *Node) Run(ctx context.Context) error {
	if err := n.Listen(ctx); err != nil {
		return err
	}
	return n.Serve(ctx)
}

// Serve accepts the sender and receiver connections and relays the share.
// It returns once the share was forwarded, on the first unrecoverable
// error, or when ctx is done. The listener is closed on return.
func (n *Node) Serve(ctx context.Context) error {
	n.mu.Lock()
	ln := n.listener
	if ln == nil {
		n.mu.Unlock()
		return ErrNotListening
	}
	if n.served {
		n.mu.Unlock()
		return ErrAlreadyServed
	}
	n.served = true
	n.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer ln.Close()

	lg := logger.FromContext(ctx, n.log)
	n.setState(StateAwaitingPeers)
	lg.Info("waiting for peers", logger.Bool("dishonest", n.cfg.Dishonest))

	var (
		held      = make(chan []byte, 1)
		senderErr = make(chan error, 1)
		forwarded = make(chan error, 1)
		conns     = make(chan net.Conn)
		acceptErr = make(chan error, 1)
	)
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				acceptErr <- err
				return
			}
			select {
			case conns <- c:
			case <-ctx.Done():
				c.Close()
				return
			}
		}
	}()

	var haveSender, haveReceiver bool
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-acceptErr:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("node: accept: %w", err)
		case err := <-senderErr:
			return err
		case err := <-forwarded:
			return err
		case raw := <-conns:
			c, err := transport.NewConn(raw, &transport.Options{
				Separator: n.cfg.Separator,
				Timeout:   n.cfg.IOTimeout,
			})
			if err != nil {
				raw.Close()
				return err
			}
			peer := c.RemotePort()
			switch {
			case slices.Contains(n.cfg.SenderPorts, peer) && !haveSender:
				haveSender = true
				lg.Debug("sender connected", logger.Int("peer_port", peer))
				go func() {
					payload, err := n.receiveShare(ctx, c)
					if err != nil {
						senderErr <- err
						return
					}
					held <- payload
				}()
			case slices.Contains(n.cfg.ReceiverPorts, peer) && !haveReceiver:
				haveReceiver = true
				lg.Debug("receiver connected", logger.Int("peer_port", peer))
				go func() {
					forwarded <- n.forwardShare(ctx, c, held)
				}()
			default:
				if n.drops.Allow() {
					lg.Warn("dropping connection from unexpected port", logger.Int("peer_port", peer))
				}
				c.Close()
			}
		}
	}
}

// receiveShare reads the share from the sender connection, closes it and
// applies the fault injection of a dishonest node.
func (n *Node) receiveShare(ctx context.Context, c *transport.Conn) ([]byte, error) {
	start := time.Now()
	stop := context.AfterFunc(ctx, func() { c.Close() })
	defer stop()
	defer metrics.TrackConnection(metrics.RoleNode)()

	payload, err := c.Recv(n.cfg.BufferSize)
	c.Close()
	if err != nil {
		return nil, fmt.Errorf("node: receive share: %w", err)
	}
	metrics.AddBytes(metrics.RoleNode, metrics.DirectionIn, len(payload))

	if n.cfg.Dishonest {
		if payload, err = n.tamper(payload); err != nil {
			return nil, err
		}
	}
	n.setState(StateShareHeld)
	n.log.Info("share held", logger.Int("bytes", len(payload)), logger.Duration("elapsed", time.Since(start)))
	return payload, nil
}

// tamper decodes the bundle, replaces its share value and re-encodes it in
// the same wire shape.
func (n *Node) tamper(payload []byte) ([]byte, error) {
	b, err := bundle.Decode(n.cfg.Mode, payload)
	if err != nil {
		return nil, fmt.Errorf("node: decode share for tampering: %w", err)
	}
	before := b.Point()
	if err := b.Corrupt(); err != nil {
		return nil, err
	}
	out, err := b.Encode()
	if err != nil {
		return nil, err
	}
	metrics.RecordTamper(n.cfg.Mode.String())
	n.log.Debug("share tampered",
		logger.Int("x", before.X),
		logger.String("from", before.Y.String()),
		logger.String("to", b.Point().Y.String()))
	return out, nil
}

// forwardShare waits for the held share and writes it to the receiver.
func (n *Node) forwardShare(ctx context.Context, c *transport.Conn, held <-chan []byte) error {
	start := time.Now()
	defer c.Close()
	defer metrics.TrackConnection(metrics.RoleNode)()

	timer := time.NewTimer(n.cfg.ShareTimeout)
	defer timer.Stop()

	var payload []byte
	select {
	case payload = <-held:
	case <-timer.C:
		err := fmt.Errorf("%w after %s", ErrShareTimeout, n.cfg.ShareTimeout)
		metrics.RecordOperation(metrics.RoleNode, metrics.OpRelay, err, time.Since(start))
		return err
	case <-ctx.Done():
		return ctx.Err()
	}

	n.setState(StateForwarding)
	err := c.Send(payload)
	metrics.RecordOperation(metrics.RoleNode, metrics.OpRelay, err, time.Since(start))
	if err != nil {
		return fmt.Errorf("node: forward share: %w", err)
	}
	metrics.AddBytes(metrics.RoleNode, metrics.DirectionOut, len(payload))
	n.setState(StateDone)
	n.log.Info("share forwarded", logger.Int("bytes", len(payload)))
	return nil
}
