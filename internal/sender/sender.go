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

// Package sender splits a secret into shares, packages each share for the
// session's verification mode and delivers share i to node i.
package sender

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
	"github.com/jeremyhahn/go-vss/pkg/metrics"
	"github.com/jeremyhahn/go-vss/pkg/sharing"
	"github.com/jeremyhahn/go-vss/pkg/transport"
	"github.com/jeremyhahn/go-vss/pkg/verification"
)

var (
	// ErrInvalidConfig indicates a configuration that fails Validate.
	ErrInvalidConfig = errors.New("sender: invalid configuration")

	// ErrTooManyFailures indicates more deliveries failed than the session
	// tolerates.
	ErrTooManyFailures = errors.New("sender: too many failed deliveries")
)

// Config holds everything the sender needs for one session.
type Config struct {
	Message []byte
	N       int
	K       int
	T       int
	Prime   *big.Int
	Mode    verification.Mode

	// Key is the raw MAC key. Required in ModeMAC.
	Key []byte

	Host string

	// SenderPorts[i] is the local port used to reach NodePorts[i].
	SenderPorts []int
	NodePorts   []int

	Dial   transport.DialOptions
	Logger logger.Logger
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.N < c.K || c.K < 2 {
		return fmt.Errorf("%w: need n >= k >= 2, got n=%d k=%d", ErrInvalidConfig, c.N, c.K)
	}
	if c.T < 0 {
		return fmt.Errorf("%w: negative t", ErrInvalidConfig)
	}
	if len(c.Message) == 0 {
		return fmt.Errorf("%w: empty message", ErrInvalidConfig)
	}
	if c.Prime == nil {
		return fmt.Errorf("%w: missing prime", ErrInvalidConfig)
	}
	if err := c.Mode.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Mode == verification.ModeMAC && len(c.Key) == 0 {
		return fmt.Errorf("%w: mac mode requires a key", ErrInvalidConfig)
	}
	if len(c.SenderPorts) != c.N || len(c.NodePorts) != c.N {
		return fmt.Errorf("%w: expected %d sender and node ports, got %d and %d",
			ErrInvalidConfig, c.N, len(c.SenderPorts), len(c.NodePorts))
	}
	return nil
}

// Report summarizes one distribution.
type Report struct {
	// MessageSize is the secret length in bytes.
	MessageSize int

	// BundleSizes[i] is the encoded size of the bundle for node i.
	BundleSizes []int

	// TotalSize is the sum of BundleSizes.
	TotalSize int

	// Delivered and Failed hold node ports.
	Delivered []int
	Failed    []int

	// Errors aggregates the per-node delivery errors, if any.
	Errors error

	Elapsed time.Duration
}

// Sender runs the sending side of a session.
type Sender struct {
	cfg    *Config
	dialer *transport.Dialer
	log    logger.Logger
}

// New validates cfg and returns a Sender.
func New(cfg *Config) (*Sender, error) {
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
	return &Sender{
		cfg:    cfg,
		dialer: transport.NewDialer(cfg.Host, &cfg.Dial),
		log:    lg.With(logger.Role(metrics.RoleSender)),
	}, nil
}

// Package generates the shares and encodes one bundle per node.
func (s *Sender) Package() ([][]byte, error) {
	shares, err := sharing.GenerateShares(s.cfg.Message, s.cfg.N, s.cfg.K, s.cfg.Prime)
	if err != nil {
		return nil, err
	}

	opts := &bundle.Options{Key: s.cfg.Key}
	var infos []verification.AuxInfo
	if s.cfg.Mode == verification.ModeAux {
		if infos, err = verification.GenerateAuxInfo(shares, s.cfg.Prime); err != nil {
			return nil, err
		}
	}

	payloads := make([][]byte, len(shares))
	for i, share := range shares {
		if infos != nil {
			opts.Aux = &infos[i]
		}
		b, err := bundle.Build(s.cfg.Mode, share, opts)
		if err != nil {
			return nil, fmt.Errorf("sender: packaging share %d: %w", share.X, err)
		}
		if payloads[i], err = b.Encode(); err != nil {
			return nil, fmt.Errorf("sender: encoding share %d: %w", share.X, err)
		}
		s.log.Debug("share packaged", logger.Int("x", share.X), logger.Int("bytes", len(payloads[i])))
	}
	return payloads, nil
}

// Distribute packages the shares and delivers them to the nodes in
// parallel. Individual delivery failures are recorded in the report; an
// error is returned only when more than T deliveries fail.
func (s *Sender) Distribute(ctx context.Context) (*Report, error) {
	start := time.Now()
	lg := logger.FromContext(ctx, s.log)

	payloads, err := s.Package()
	if err != nil {
		metrics.RecordOperation(metrics.RoleSender, metrics.OpDistribute, err, time.Since(start))
		return nil, err
	}

	report := &Report{
		MessageSize: len(s.cfg.Message),
		BundleSizes: make([]int, len(payloads)),
	}
	for i, p := range payloads {
		report.BundleSizes[i] = len(p)
		report.TotalSize += len(p)
	}
	lg.Info("shares packaged",
		logger.String("mode", s.cfg.Mode.String()),
		logger.Int("message_bytes", report.MessageSize),
		logger.Ints("bundle_bytes", report.BundleSizes),
		logger.Int("total_bytes", report.TotalSize))

	var (
		mu   sync.Mutex
		merr *multierror.Error
		ok   = make([]bool, len(payloads))
		g    errgroup.Group
	)
	for i := range payloads {
		g.Go(func() error {
			if err := s.deliver(ctx, i, payloads[i]); err != nil {
				lg.Warn("delivery failed", logger.Port(s.cfg.NodePorts[i]), logger.Error(err))
				mu.Lock()
				merr = multierror.Append(merr, err)
				mu.Unlock()
				return nil
			}
			ok[i] = true
			return nil
		})
	}
	_ = g.Wait()

	for i, delivered := range ok {
		if delivered {
			report.Delivered = append(report.Delivered, s.cfg.NodePorts[i])
		} else {
			report.Failed = append(report.Failed, s.cfg.NodePorts[i])
		}
	}
	report.Errors = merr.ErrorOrNil()
	report.Elapsed = time.Since(start)

	if len(report.Failed) > s.cfg.T {
		err := fmt.Errorf("%w: %d of %d (tolerating %d): %w",
			ErrTooManyFailures, len(report.Failed), s.cfg.N, s.cfg.T, report.Errors)
		metrics.RecordOperation(metrics.RoleSender, metrics.OpDistribute, err, report.Elapsed)
		return report, err
	}

	metrics.RecordOperation(metrics.RoleSender, metrics.OpDistribute, nil, report.Elapsed)
	lg.Info("shares distributed",
		logger.Int("delivered", len(report.Delivered)),
		logger.Ints("failed", report.Failed),
		logger.Duration("elapsed", report.Elapsed))
	return report, nil
}

func (s *Sender) deliver(ctx context.Context, i int, payload []byte) error {
	addr := transport.JoinHostPort(s.cfg.Host, s.cfg.NodePorts[i])
	conn, err := s.dialer.DialContext(ctx, s.cfg.SenderPorts[i], addr)
	if err != nil {
		return err
	}
	defer conn.Close()
	defer metrics.TrackConnection(metrics.RoleSender)()

	if err := conn.Send(payload); err != nil {
		return fmt.Errorf("sender: send to %s: %w", addr, err)
	}
	metrics.AddBytes(metrics.RoleSender, metrics.DirectionOut, len(payload))
	return nil
}
