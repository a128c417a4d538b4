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

package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/jeremyhahn/go-vss/pkg/adapters/logger"
)

// Environment variables that override values read from role files.
const (
	EnvHost      = "VSS_HOST"
	EnvLogLevel  = "VSS_LOG_LEVEL"
	EnvLogFormat = "VSS_LOG_FORMAT"
	EnvBuffer    = "VSS_BUFFER"
)

// applyEnvOverrides replaces file values with VSS_* environment values.
// An unusable VSS_BUFFER is reported and ignored.
func applyEnvOverrides(network *NetworkConfig, logging *LoggingConfig) {
	if host := os.Getenv(EnvHost); host != "" {
		network.Host = host
	}
	if buf := os.Getenv(EnvBuffer); buf != "" {
		size, err := strconv.Atoi(buf)
		if err != nil || size <= 0 {
			slog.Warn("ignoring invalid buffer override",
				"env", EnvBuffer, "value", buf, "keeping", network.BufferSize)
		} else {
			network.BufferSize = size
		}
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		logging.Level = level
	}
	if format := os.Getenv(EnvLogFormat); format != "" {
		logging.Format = format
	}
}

// Validate checks the level and format names.
func (l *LoggingConfig) Validate() error {
	if _, err := logger.ParseLevel(l.Level); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLogging, err)
	}
	switch l.Format {
	case "", logger.FormatText, logger.FormatJSON:
		return nil
	}
	return fmt.Errorf("%w: format %q (must be text or json)", ErrInvalidLogging, l.Format)
}
