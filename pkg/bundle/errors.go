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

package bundle

import "errors"

var (
	// ErrMalformed indicates a payload that does not parse as a bundle of
	// the expected mode.
	ErrMalformed = errors.New("bundle: malformed payload")

	// ErrModeMismatch indicates a bundle used with a different mode than
	// the one it was built for.
	ErrModeMismatch = errors.New("bundle: mode mismatch")
)
