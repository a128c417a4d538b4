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


package cli

import (
	"context"
	"errors"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-vss/internal/config"
	"github.com/jeremyhahn/go-vss/internal/node"
	"github.com/jeremyhahn/go-vss/internal/receiver"
	"github.com/jeremyhahn/go-vss/internal/sender"
	"github.com/jeremyhahn/go-vss/pkg/adapters/logger"
	"github.com/jeremyhahn/go-vss/pkg/correlation"
	"github.com/jeremyhahn/go-vss/pkg/health"
	"github.com/jeremyhahn/go-vss/pkg/metrics"
)

// senderCmd distributes the shares described by a sender.yaml.
var senderCmd = &cobra.Command{
	Use:   "sender <sender.yaml>",
	Short: "Split the message and deliver one share to every node",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := config.LoadSenderFile(args[0])
		if err != nil {
			return err
		}
		lg, err := getConfig().roleLogger(cmd, s.Logging)
		if err != nil {
			return err
		}
		cfg, err := s.SenderConfig(lg)
		if err != nil {
			return err
		}
		snd, err := sender.New(cfg)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithCancel(correlation.WithCorrelationID(cmd.Context(), s.ID))
		defer cancel()
		checker, err := startTelemetry(ctx, lg)
		if err != nil {
			return err
		}
		checker.MarkStarted()
		report, err := snd.Distribute(ctx)
		if perr := NewPrinter(getConfig().OutputFormat, cmd.OutOrStdout()).PrintReport(report); perr != nil && err == nil {
			err = perr
		}
		return err
	},
}

var (
	nodeIndex     int
	nodeDishonest bool
)

// nodeCmd runs a single node from nodes.yaml.
var nodeCmd = &cobra.Command{
	Use:   "node <nodes.yaml>",
	Short: "Relay one share from the sender to the receiver",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := config.LoadNodesFile(args[0])
		if err != nil {
			return err
		}
		lg, err := getConfig().roleLogger(cmd, s.Logging)
		if err != nil {
			return err
		}
		cfg, err := s.NodeConfig(nodeIndex, nodeDishonest, lg)
		if err != nil {
			return err
		}
		n, err := node.New(cfg)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithCancel(correlation.WithCorrelationID(cmd.Context(), s.ID))
		defer cancel()
		port := strconv.Itoa(cfg.Port)
		checker, err := startTelemetry(ctx, lg, func() {
			metrics.NodeState.WithLabelValues(port).Set(float64(n.State()))
		})
		if err != nil {
			return err
		}
		checker.RegisterCheck("node", nodeCheck(n))
		if err := n.Listen(ctx); err != nil {
			return err
		}
		checker.MarkStarted()
		if err := n.Serve(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				lg.Info("node stopped before completing", logger.Port(cfg.Port))
				return nil
			}
			return err
		}
		return nil
	},
}

// receiverCmd collects the shares described by a receiver.yaml.
var receiverCmd = &cobra.Command{
	Use:   "receiver <receiver.yaml>",
	Short: "Collect the shares from the nodes and reconstruct the message",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := config.LoadReceiverFile(args[0])
		if err != nil {
			return err
		}
		lg, err := getConfig().roleLogger(cmd, s.Logging)
		if err != nil {
			return err
		}
		cfg, err := s.ReceiverConfig(lg)
		if err != nil {
			return err
		}
		rcv, err := receiver.New(cfg)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithCancel(correlation.WithCorrelationID(cmd.Context(), s.ID))
		defer cancel()
		checker, err := startTelemetry(ctx, lg)
		if err != nil {
			return err
		}
		checker.MarkStarted()
		res, err := rcv.Run(ctx)
		if perr := NewPrinter(getConfig().OutputFormat, cmd.OutOrStdout()).PrintResult(res); perr != nil && err == nil {
			err = perr
		}
		return err
	},
}

// nodeCheck reports a node as degraded until it holds its share.
func nodeCheck(n *node.Node) health.CheckFunc {
	return func(ctx context.Context) health.CheckResult {
		state := n.State()
		status := health.StatusHealthy
		if state == node.StateIdle || state == node.StateAwaitingPeers {
			status = health.StatusDegraded
		}
		return health.CheckResult{Name: "node", Status: status, Message: state.String()}
	}
}

func init() {
	nodeCmd.Flags().IntVarP(&nodeIndex, "index", "i", 0, "0-based position of this node in node_ports")
	nodeCmd.Flags().BoolVar(&nodeDishonest, "dishonest", false, "tamper with the share before forwarding it")
	_ = nodeCmd.MarkFlagRequired("index")
}
