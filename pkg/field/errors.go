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

package field

import "errors"

var (
	// ErrNoPrime indicates no prime in the table exceeds the requested bound.
	ErrNoPrime = errors.New("field: no prime available above bound")

	// ErrNotInvertible indicates the value shares a factor with the modulus.
	ErrNotInvertible = errors.New("field: value is not invertible")

	// ErrInvalidModulus indicates a nil modulus or one that is not greater than 1.
	ErrInvalidModulus = errors.New("field: invalid modulus")
)
