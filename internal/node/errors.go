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

package node

import "errors"

var (
	// ErrInvalidConfig indicates a configuration that fails Validate.
	ErrInvalidConfig = errors.New("node: invalid configuration")

	// ErrNotListening indicates Serve was called before Listen.
	ErrNotListening = errors.New("node: not listening")

	// ErrAlreadyServed indicates a second Serve on the same node.
	ErrAlreadyServed = errors.New("node: already served")

	// ErrShareTimeout indicates the sender did not deliver a share before
	// the receiver gave up waiting.
	ErrShareTimeout = errors.New("node: timed out waiting for share")
)
