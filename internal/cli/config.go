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
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jeremyhahn/go-vss/internal/config"
	"github.com/jeremyhahn/go-vss/pkg/adapters/logger"
)

// ErrInvalidOutput is returned for an unknown --output value.
var ErrInvalidOutput = errors.New("cli: invalid output format")

// Config holds global CLI configuration
type Config struct {
	// ConfigFile is an optional YAML file holding the flag values below.
	ConfigFile string

	LogLevel  string
	LogFormat string

	// OutputFormat controls result formatting (text, json)
	OutputFormat string

	// MetricsAddr, when set, serves /metrics and the health probes.
	MetricsAddr string
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		LogLevel:     logger.LevelInfo.String(),
		LogFormat:    logger.FormatText,
		OutputFormat: string(OutputFormatText),
	}
}

// load resolves the settings in precedence order: flags, VSS_* environment,
// the config file, defaults.
func (c *Config) load(v *viper.Viper) error {
	if c.ConfigFile != "" {
		v.SetConfigFile(c.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("cli: read %s: %w", c.ConfigFile, err)
		}
	}
	c.LogLevel = v.GetString("log-level")
	c.LogFormat = v.GetString("log-format")
	c.OutputFormat = v.GetString("output")
	c.MetricsAddr = v.GetString("metrics-addr")

	switch OutputFormat(c.OutputFormat) {
	case OutputFormatText, OutputFormatJSON:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidOutput, c.OutputFormat)
	}
	logging := config.LoggingConfig{Level: c.LogLevel, Format: c.LogFormat}
	return logging.Validate()
}

// Logger builds the CLI logger.
func (c *Config) Logger(w io.Writer) (logger.Logger, error) {
	return logger.New(c.LogLevel, c.LogFormat, w)
}

// roleLogger builds the logger for a role loaded from a file. The file's
// logging section applies unless the level or format was set explicitly.
func (c *Config) roleLogger(cmd *cobra.Command, file config.LoggingConfig) (logger.Logger, error) {
	level, format := file.Level, file.Format
	if level == "" || cmd.Flags().Changed("log-level") {
		level = c.LogLevel
	}
	if format == "" || cmd.Flags().Changed("log-format") {
		format = c.LogFormat
	}
	return logger.New(level, format, cmd.ErrOrStderr())
}
