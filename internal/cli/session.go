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
	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-vss/internal/config"
	"github.com/jeremyhahn/go-vss/pkg/verification"
)

// sessionFlags are the inputs shared by the session and run commands.
type sessionFlags struct {
	message  string
	n, k, t  int
	mode     string
	basePort int
	host     string
}

func (f *sessionFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.message, "message", "m", "", "message to share (1 to 150 bytes)")
	flags.IntVarP(&f.n, "nodes", "n", 5, "number of nodes")
	flags.IntVarP(&f.k, "threshold", "k", 3, "shares needed to reconstruct")
	flags.IntVarP(&f.t, "faults", "t", 1, "tolerated dishonest nodes, clamped to min(k-1, n-k-1)")
	flags.StringVar(&f.mode, "mode", verification.ModeAux.String(), "verification mode (none, aux, mac)")
	flags.IntVar(&f.basePort, "base-port", 0, "first port of the session, random when zero")
	flags.StringVar(&f.host, "host", config.DefaultHost, "address every role binds and dials")
	_ = cmd.MarkFlagRequired("message")
}

func (f *sessionFlags) session() (*config.Session, error) {
	mode, err := verification.ParseMode(f.mode)
	if err != nil {
		return nil, err
	}
	network := config.DefaultNetwork()
	network.Host = f.host
	cfg := getConfig()
	return config.NewSession(&config.SessionOptions{
		Message:  f.message,
		N:        f.n,
		K:        f.k,
		T:        f.t,
		Mode:     mode,
		BasePort: f.basePort,
		Network:  &network,
		Logging:  config.LoggingConfig{Level: cfg.LogLevel, Format: cfg.LogFormat},
	})
}

var (
	sessionOpts sessionFlags
	sessionDir  string
)

// sessionCmd creates a session and writes the per-role files.
var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Create a session and write sender.yaml, receiver.yaml and nodes.yaml",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := sessionOpts.session()
		if err != nil {
			return err
		}
		if err := s.WriteFiles(sessionDir); err != nil {
			return err
		}
		return NewPrinter(getConfig().OutputFormat, cmd.OutOrStdout()).PrintSession(s, sessionDir)
	},
}

func init() {
	sessionOpts.register(sessionCmd)
	sessionCmd.Flags().StringVarP(&sessionDir, "dir", "d", ".", "directory for the role files")
}
