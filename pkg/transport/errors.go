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

package transport

import "errors"

var (
	// ErrInvalidLength indicates a missing, non-numeric or zero length prefix.
	ErrInvalidLength = errors.New("transport: invalid length prefix")

	// ErrConnectionClosed indicates the peer closed the stream mid-message.
	ErrConnectionClosed = errors.New("transport: connection closed")

	// ErrShortWrite indicates a write accepted zero bytes.
	ErrShortWrite = errors.New("transport: zero-byte write")

	// ErrEmptyPayload indicates an attempt to send an empty message.
	ErrEmptyPayload = errors.New("transport: empty payload")

	// ErrInvalidBufferSize indicates a non-positive receive buffer size.
	ErrInvalidBufferSize = errors.New("transport: invalid buffer size")

	// ErrInvalidSeparator indicates a separator that collides with the length digits.
	ErrInvalidSeparator = errors.New("transport: invalid separator")
)
