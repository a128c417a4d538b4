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


// Package cli implements the vss command: session setup, the three
// network roles and an in-process runner.
package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every flag bound to the environment.
const EnvPrefix = "VSS"

var (
	globalConfig *Config
	v            *viper.Viper
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "vss",
	Short: "Verifiable secret sharing over TCP",
	Long: `vss splits a message into n Shamir shares, relays each one through an
independent node and reconstructs the message at a receiver from any k of
them, tolerating up to t tampering nodes.

Verification modes:
  - none: plain shares, no tamper detection
  - aux:  pairwise auxiliary checks between shares
  - mac:  HMAC-SHA256 tag on every share`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return globalConfig.load(v)
	},
}

// Execute runs the root command
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with ctx, which the role commands
// honour for cancellation. Errors are printed to stderr and returned.
func ExecuteContext(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		printer := NewPrinter(globalConfig.OutputFormat, rootCmd.ErrOrStderr())
		_ = printer.PrintError(err)
	}
	return err
}

func init() {
	globalConfig = NewConfig()

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&globalConfig.ConfigFile, "config", "",
		"optional file with log-level, log-format and output settings")
	flags.String("log-level", globalConfig.LogLevel, "log level (debug, info, warn, error)")
	flags.String("log-format", globalConfig.LogFormat, "log format (text, json)")
	flags.StringP("output", "o", globalConfig.OutputFormat, "output format (text, json)")
	flags.String("metrics-addr", "", "serve Prometheus metrics and health probes on this address")
	v = newViper(flags)

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(senderCmd)
	rootCmd.AddCommand(nodeCmd)
	rootCmd.AddCommand(receiverCmd)
	rootCmd.AddCommand(runCmd)
}

// newViper binds the global flags to VSS_* environment variables.
func newViper(flags *pflag.FlagSet) *viper.Viper {
	vp := viper.New()
	vp.SetEnvPrefix(EnvPrefix)
	vp.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	vp.AutomaticEnv()
	for _, name := range []string{"log-level", "log-format", "output", "metrics-addr"} {
		if err := vp.BindPFlag(name, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", name, err))
		}
	}
	return vp
}

// getConfig returns the global configuration
func getConfig() *Config {
	return globalConfig
}
