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

package verification

import "errors"

var (
	// ErrInvalidMode indicates a mode outside None, Aux and MAC.
	ErrInvalidMode = errors.New("verification: invalid mode")

	// ErrMissingKey indicates MAC verification was requested without a key.
	ErrMissingKey = errors.New("verification: missing MAC key")

	// ErrMissingPrime indicates aux verification was requested without a prime.
	ErrMissingPrime = errors.New("verification: missing prime")

	// ErrInvalidThreshold indicates a negative fault-tolerance threshold.
	ErrInvalidThreshold = errors.New("verification: invalid threshold")

	// ErrInvalidKeyLength indicates a requested key size that is not a whole
	// number of bytes.
	ErrInvalidKeyLength = errors.New("verification: invalid key length")

	// ErrDuplicateIndex indicates two shares with the same index were given
	// to the aux-info generator.
	ErrDuplicateIndex = errors.New("verification: duplicate share index")
)
