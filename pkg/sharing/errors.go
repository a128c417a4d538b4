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

package sharing

import "errors"

var (
	// ErrInvalidThreshold indicates parameters violating n >= k >= 2.
	ErrInvalidThreshold = errors.New("sharing: invalid threshold")

	// ErrInvalidPrime indicates a missing or too small field modulus.
	ErrInvalidPrime = errors.New("sharing: invalid prime")

	// ErrSecretTooLarge indicates the secret integer is not below the modulus.
	ErrSecretTooLarge = errors.New("sharing: secret not below prime")

	// ErrMessageTooLong indicates a message longer than MaxMessageLength.
	ErrMessageTooLong = errors.New("sharing: message too long")

	// ErrInsufficientShares indicates fewer than k shares were supplied.
	ErrInsufficientShares = errors.New("sharing: insufficient shares")

	// ErrDuplicateX indicates two supplied shares have the same index.
	ErrDuplicateX = errors.New("sharing: duplicate share index")

	// ErrInvalidShare indicates a share with a bad index or value.
	ErrInvalidShare = errors.New("sharing: invalid share")
)
