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

import (
	"fmt"
	"math/big"
)

// Share is a single point (X, Y) on the sharing polynomial. X is the public
// index of the node holding the share and is never secret.
type Share struct {
	X int
	Y *big.Int
}

// Validate checks that the share has a positive index and a value.
func (s Share) Validate() error {
	if s.X < 1 {
		return fmt.Errorf("%w: index %d (must be >= 1)", ErrInvalidShare, s.X)
	}
	if s.Y == nil {
		return fmt.Errorf("%w: missing value", ErrInvalidShare)
	}
	if s.Y.Sign() < 0 {
		return fmt.Errorf("%w: negative value", ErrInvalidShare)
	}
	return nil
}

// Clone returns a deep copy of the share.
func (s Share) Clone() Share {
	out := Share{X: s.X}
	if s.Y != nil {
		out.Y = new(big.Int).Set(s.Y)
	}
	return out
}

// String returns a short representation that does not reveal the value.
func (s Share) String() string {
	if s.Y == nil {
		return fmt.Sprintf("Share{X: %d, Y: <nil>}", s.X)
	}
	return fmt.Sprintf("Share{X: %d, Y: %d bits}", s.X, s.Y.BitLen())
}
