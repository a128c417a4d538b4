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

// Package receiver pulls a bundle from every node, verifies the bundles
// for the session mode, reconstructs the secret from the first k accepted
// shares and names the nodes whose shares were rejected.
package receiver

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/jeremyhahn/go-vss/pkg/adapters/logger"
	"github.com/jeremyhahn/go-vss/pkg/bundle"
	"github.com/jeremyhahn/go-vss/pkg/codec"
	"github.com/jeremyhahn/go-vss/pkg/metrics"
	"github.com/jeremyhahn/go-vss/pkg/sharing"
	"github.com/jeremyhahn/go-vss/pkg/transport"
	"github.com/jeremyhahn/go-vss/pkg/verification"
)

const (
	DefaultIOTimeout   = 30 * time.Second
	DefaultConcurrency = 8
)

var (
	// ErrInvalidConfig indicates a configuration that fails Validate.
	ErrInvalidConfig = errors.New("receiver: invalid configuration")

	// ErrInsufficientShares indicates fewer than k shares were accepted.
	ErrInsufficientShares = errors.New("receiver: insufficient accepted shares")

	// ErrIndexMismatch indicates a node returned a share for another index.
	ErrIndexMismatch = errors.New("receiver: share index does not match node")
)

// Config holds everything the receiver needs for one session.
type Config struct {
	K     int
	T     int
	Prime *big.Int
	Mode  verification.Mode

	// Key is the raw MAC key. Required in ModeMAC.
	Key []byte

	Host string

	// ReceiverPorts[i] is the local port used to reach NodePorts[i].
	ReceiverPorts []int
	NodePorts     []int

	BufferSize int

	// IOTimeout bounds each framed read.
	IOTimeout time.Duration

	// Concurrency bounds the number of nodes pulled at once.
	Concurrency int

	Dial   transport.DialOptions
	Logger logger.Logger
}

// Validate fills defaults and checks the configuration.
func (c *Config) Validate() error {
	n := len(c.NodePorts)
	if c.K < 2 || n < c.K {
		return fmt.Errorf("%w: need n >= k >= 2, got n=%d k=%d", ErrInvalidConfig, n, c.K)
	}
	if len(c.ReceiverPorts) != n {
		return fmt.Errorf("%w: %d receiver ports for %d nodes", ErrInvalidConfig, len(c.ReceiverPorts), n)
	}
	if c.T < 0 {
		return fmt.Errorf("%w: negative t", ErrInvalidConfig)
	}
	if c.Prime == nil || c.Prime.Sign() <= 0 {
		return fmt.Errorf("%w: missing prime", ErrInvalidConfig)
	}
	if err := c.Mode.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Mode == verification.ModeMAC && len(c.Key) == 0 {
		return fmt.Errorf("%w: mac mode requires a key", ErrInvalidConfig)
	}
	if c.BufferSize == 0 {
		c.BufferSize = transport.DefaultBufferSize
	}
	if c.BufferSize < 0 {
		return fmt.Errorf("%w: buffer size %d", ErrInvalidConfig, c.BufferSize)
	}
	if c.IOTimeout == 0 {
		c.IOTimeout = DefaultIOTimeout
	}
	if c.Concurrency <= 0 {
		c.Concurrency = DefaultConcurrency
	}
	return nil
}

// Result is the outcome of a reconstruction.
type Result struct {
	// Secret is the reconstructed message. Nil when reconstruction failed.
	Secret []byte

	// Accepted[i] reports whether node i's share passed verification.
	Accepted []bool

	// Faulty lists the ports of nodes that delivered a share which failed
	// verification. Always empty in ModeNone.
	Faulty []int

	// Missing lists the ports of nodes that delivered nothing usable.
	Missing []int

	// Errors aggregates the per-node collection errors, if any.
	Errors error

	CollectDuration     time.Duration
	ReconstructDuration time.Duration
}

// Receiver runs the receiving side of a session.
type Receiver struct {
	cfg      *Config
	dialer   *transport.Dialer
	verifier verification.Verifier
	log      logger.Logger
}

// New validates cfg and returns a Receiver.
func New(cfg *Config) (*Receiver, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil config", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	v, err := verification.NewVerifier(cfg.Mode, &verification.VerifyOpts{
		Key:   cfg.Key,
		Prime: cfg.Prime,
		T:     cfg.T,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	dial := cfg.Dial
	dial.Conn.Timeout = cfg.IOTimeout
	lg := cfg.Logger
	if lg == nil {
		lg = logger.Nop()
	}
	return &Receiver{
		cfg:      cfg,
		dialer:   transport.NewDialer(cfg.Host, &dial),
		verifier: v,
		log:      lg.With(logger.Role(metrics.RoleReceiver)),
	}, nil
}

// Collect pulls one bundle from every node. The result is parallel to
// NodePorts; an entry is nil when the node was unreachable or its payload
// did not decode for the session mode. The returned error aggregates those
// per-node failures.
func (r *Receiver) Collect(ctx context.Context) ([]bundle.Bundle, error) {
	start := time.Now()
	bundles := make([]bundle.Bundle, len(r.cfg.NodePorts))

	var (
		mu   sync.Mutex
		merr *multierror.Error
		g    errgroup.Group
	)
	g.SetLimit(r.cfg.Concurrency)
	for i := range r.cfg.NodePorts {
		g.Go(func() error {
			b, err := r.pull(ctx, i)
			if err != nil {
				mu.Lock()
				merr = multierror.Append(merr, err)
				mu.Unlock()
				return nil
			}
			bundles[i] = b
			return nil
		})
	}
	_ = g.Wait()

	err := merr.ErrorOrNil()
	metrics.RecordOperation(metrics.RoleReceiver, metrics.OpDial, err, time.Since(start))
	return bundles, err
}

func (r *Receiver) pull(ctx context.Context, i int) (bundle.Bundle, error) {
	port := r.cfg.NodePorts[i]
	addr := transport.JoinHostPort(r.cfg.Host, port)
	conn, err := r.dialer.DialContext(ctx, r.cfg.ReceiverPorts[i], addr)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	defer metrics.TrackConnection(metrics.RoleReceiver)()

	payload, err := conn.Recv(r.cfg.BufferSize)
	if err != nil {
		return nil, fmt.Errorf("receiver: node %d: %w", port, err)
	}
	metrics.AddBytes(metrics.RoleReceiver, metrics.DirectionIn, len(payload))

	b, err := bundle.Decode(r.cfg.Mode, payload)
	if err != nil {
		return nil, fmt.Errorf("receiver: node %d: %w", port, err)
	}
	if x := b.Point().X; x != i+1 {
		return nil, fmt.Errorf("%w: node %d sent index %d, want %d", ErrIndexMismatch, port, x, i+1)
	}
	return b, nil
}

// Reconstruct verifies the collected bundles and rebuilds the secret from
// the first k accepted shares. The result is returned together with
// ErrInsufficientShares when fewer than k shares were accepted.
func (r *Receiver) Reconstruct(bundles []bundle.Bundle) (*Result, error) {
	start := time.Now()
	candidates := make([]*verification.Candidate, len(bundles))
	for i, b := range bundles {
		if b != nil {
			candidates[i] = b.Candidate()
		}
	}
	accepted := r.verifier.Verify(candidates)

	res := &Result{Accepted: accepted}
	mode := r.cfg.Mode.String()
	selected := make([]sharing.Share, 0, r.cfg.K)
	for i, b := range bundles {
		switch {
		case b == nil:
			res.Missing = append(res.Missing, r.cfg.NodePorts[i])
			metrics.RecordShare(mode, metrics.ResultMissing)
		case !accepted[i]:
			res.Faulty = append(res.Faulty, r.cfg.NodePorts[i])
			metrics.RecordShare(mode, metrics.ResultRejected)
		default:
			metrics.RecordShare(mode, metrics.ResultAccepted)
			if len(selected) < r.cfg.K {
				selected = append(selected, b.Point())
			}
		}
	}

	if len(selected) < r.cfg.K {
		res.ReconstructDuration = time.Since(start)
		err := fmt.Errorf("%w: %d accepted, need %d", ErrInsufficientShares, len(selected), r.cfg.K)
		metrics.RecordOperation(metrics.RoleReceiver, metrics.OpReconstruct, err, res.ReconstructDuration)
		return res, err
	}

	secret, err := sharing.ReconstructSecret(selected, r.cfg.K, r.cfg.Prime)
	if err == nil {
		res.Secret, err = codec.NumToStr(secret)
	}
	res.ReconstructDuration = time.Since(start)
	metrics.RecordOperation(metrics.RoleReceiver, metrics.OpReconstruct, err, res.ReconstructDuration)
	if err != nil {
		return res, fmt.Errorf("receiver: reconstruct: %w", err)
	}
	return res, nil
}

// Run collects, verifies and reconstructs. Nodes that could not be reached
// are reported in Result.Missing and do not fail the run on their own. A
// cancelled ctx fails the run with its error.
func (r *Receiver) Run(ctx context.Context) (*Result, error) {
	lg := logger.FromContext(ctx, r.log)
	lg.Info("collecting shares",
		logger.String("mode", r.cfg.Mode.String()),
		logger.Int("nodes", len(r.cfg.NodePorts)),
		logger.Int("k", r.cfg.K))

	start := time.Now()
	bundles, collectErr := r.Collect(ctx)
	collectDuration := time.Since(start)
	if err := ctx.Err(); err != nil {
		res := &Result{Errors: collectErr, CollectDuration: collectDuration}
		return res, fmt.Errorf("receiver: collect: %w", err)
	}
	if collectErr != nil {
		lg.Warn("some nodes delivered nothing usable", logger.Error(collectErr))
	}

	res, err := r.Reconstruct(bundles)
	res.Errors = collectErr
	res.CollectDuration = collectDuration
	if err != nil {
		lg.Error("reconstruction failed",
			logger.Error(err),
			logger.Ints("faulty", res.Faulty),
			logger.Ints("missing", res.Missing))
		return res, err
	}

	lg.Info("secret reconstructed",
		logger.Ints("faulty", res.Faulty),
		logger.Ints("missing", res.Missing),
		logger.Duration("collect", res.CollectDuration),
		logger.Duration("reconstruct", res.ReconstructDuration))
	return res, nil
}
