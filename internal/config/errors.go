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

import "errors"

var (
	// ErrInvalidSession indicates session parameters that cannot form a
	// valid sharing session.
	ErrInvalidSession = errors.New("config: invalid session")

	// ErrInvalidPorts indicates a missing, duplicate or out-of-range port.
	ErrInvalidPorts = errors.New("config: invalid ports")

	// ErrInvalidPrime indicates a prime that does not parse or is too small.
	ErrInvalidPrime = errors.New("config: invalid prime")

	// ErrInvalidMessage indicates an empty or oversized secret message.
	ErrInvalidMessage = errors.New("config: invalid message")

	// ErrInvalidLogging indicates an unknown log level or format.
	ErrInvalidLogging = errors.New("config: invalid logging")

	// ErrNodeIndex indicates a node index outside [0, n).
	ErrNodeIndex = errors.New("config: node index out of range")
)
