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

package logger

import "io"

// Nop returns a Logger that discards everything. Fatal still exits.
func Nop() Logger {
	return NewSlogAdapter(&SlogConfig{Writer: io.Discard, Level: LevelFatal})
}
