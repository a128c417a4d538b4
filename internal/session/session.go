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

// Package session runs every role of a sharing session inside one process:
// n nodes, the sender and the receiver, with up to t nodes acting
// dishonestly.
package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/jeremyhahn/go-vss/internal/config"
	"github.com/jeremyhahn/go-vss/internal/node"
	"github.com/jeremyhahn/go-vss/internal/receiver"
	"github.com/jeremyhahn/go-vss/internal/sender"
	"github.com/jeremyhahn/go-vss/pkg/adapters/logger"
	"github.com/jeremyhahn/go-vss/pkg/correlation"
)

// ErrTooManyDishonest indicates more dishonest nodes were requested than
// the session tolerates.
var ErrTooManyDishonest = errors.New("session: more dishonest nodes than t")

// Options selects which nodes misbehave.
type Options struct {
	// Dishonest lists node indexes (0-based) that tamper with their share.
	// When nil, DishonestCount nodes are picked at random.
	Dishonest []int

	// DishonestCount is used when Dishonest is nil.
	DishonestCount int

	// OnListening, if set, is called once every node is bound.
	OnListening func()

	Logger logger.Logger
}

// Outcome collects the results of every role.
type Outcome struct {
	Report *sender.Report
	Result *receiver.Result

	// DishonestPorts are the ports of the nodes told to tamper.
	DishonestPorts []int

	// NodeErrors aggregates node failures, if any.
	NodeErrors error
}

// PickDishonest resolves opts into a sorted set of node indexes, enforcing
// the bound t.
func PickDishonest(s *config.Session, opts *Options) ([]int, error) {
	var picked []int
	if opts.Dishonest != nil {
		picked = slices.Clone(opts.Dishonest)
		slices.Sort(picked)
		picked = slices.Compact(picked)
		for _, i := range picked {
			if i < 0 || i >= s.N {
				return nil, fmt.Errorf("%w: %d", config.ErrNodeIndex, i)
			}
		}
	} else {
		if opts.DishonestCount < 0 {
			return nil, fmt.Errorf("%w: negative count", ErrTooManyDishonest)
		}
		picked = rand.Perm(s.N)[:min(opts.DishonestCount, s.N)]
		slices.Sort(picked)
	}
	if len(picked) > s.T {
		return nil, fmt.Errorf("%w: %d requested, t=%d", ErrTooManyDishonest, len(picked), s.T)
	}
	return picked, nil
}

// Run starts the nodes, distributes the shares and reconstructs the
// secret. The receiver's error, if any, is returned together with the
// outcome gathered so far.
func Run(ctx context.Context, s *config.Session, opts *Options) (*Outcome, error) {
	if opts == nil {
		opts = &Options{}
	}
	lg := opts.Logger
	if lg == nil {
		lg = logger.Nop()
	}
	if s.ID != "" {
		ctx = correlation.WithCorrelationID(ctx, s.ID)
	}
	ctx, _ = correlation.Ensure(ctx)

	dishonest, err := PickDishonest(s, opts)
	if err != nil {
		return nil, err
	}
	out := &Outcome{}
	for _, i := range dishonest {
		out.DishonestPorts = append(out.DishonestPorts, s.NodePorts[i])
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	nodes := make([]*node.Node, s.N)
	defer func() {
		for _, n := range nodes {
			if n != nil {
				_ = n.Close()
			}
		}
	}()
	for i := range nodes {
		cfg, err := s.NodeConfig(i, slices.Contains(dishonest, i), lg)
		if err != nil {
			return nil, err
		}
		if nodes[i], err = node.New(cfg); err != nil {
			return nil, err
		}
		if err := nodes[i].Listen(ctx); err != nil {
			return nil, err
		}
	}
	if opts.OnListening != nil {
		opts.OnListening()
	}

	var (
		mu       sync.Mutex
		nodeErrs *multierror.Error
		nodesWG  errgroup.Group
	)
	for _, n := range nodes {
		nodesWG.Go(func() error {
			if err := n.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
				mu.Lock()
				nodeErrs = multierror.Append(nodeErrs, err)
				mu.Unlock()
			}
			return nil
		})
	}

	sc, err := s.SenderConfig(lg)
	if err != nil {
		return nil, err
	}
	snd, err := sender.New(sc)
	if err != nil {
		return nil, err
	}
	rc, err := s.ReceiverConfig(lg)
	if err != nil {
		return nil, err
	}
	rcv, err := receiver.New(rc)
	if err != nil {
		return nil, err
	}

	var roles errgroup.Group
	var sendErr, recvErr error
	roles.Go(func() error {
		out.Report, sendErr = snd.Distribute(ctx)
		return nil
	})
	roles.Go(func() error {
		out.Result, recvErr = rcv.Run(ctx)
		return nil
	})
	_ = roles.Wait()

	// Nodes that never heard from a peer would otherwise wait out their
	// share timeout.
	cancel()
	_ = nodesWG.Wait()
	out.NodeErrors = nodeErrs.ErrorOrNil()

	if sendErr != nil {
		lg.Warn("distribution incomplete", logger.Error(sendErr))
	}
	if recvErr != nil {
		return out, recvErr
	}
	return out, nil
}
