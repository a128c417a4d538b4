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

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-vss/internal/session"
)

var (
	runOpts           sessionFlags
	runDishonest      []int
	runDishonestCount int
)

// runCmd runs a whole session in this process.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the sender, the nodes and the receiver in one process",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()
		lg, err := cfg.Logger(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		s, err := runOpts.session()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		checker, err := startTelemetry(ctx, lg)
		if err != nil {
			return err
		}

		opts := &session.Options{
			DishonestCount: runDishonestCount,
			OnListening:    checker.MarkStarted,
			Logger:         lg,
		}
		if cmd.Flags().Changed("dishonest") {
			opts.Dishonest = runDishonest
		}
		out, err := session.Run(ctx, s, opts)
		if perr := NewPrinter(cfg.OutputFormat, cmd.OutOrStdout()).PrintOutcome(s, out); perr != nil && err == nil {
			err = perr
		}
		return err
	},
}

func init() {
	runOpts.register(runCmd)
	flags := runCmd.Flags()
	flags.IntSliceVar(&runDishonest, "dishonest", nil, "0-based indexes of the nodes that tamper")
	flags.IntVar(&runDishonestCount, "dishonest-count", 0, "number of randomly chosen tampering nodes, ignored with --dishonest")
}
