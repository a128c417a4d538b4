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

import (
	"fmt"
	"strconv"
	"strings"
)

// Mode selects how shares are verified. The numeric values match the wire
// and file representation used by every role.
type Mode int

const (
	// ModeNone disables verification.
	ModeNone Mode = 1

	// ModeAux enables information-theoretic auxiliary-info verification.
	ModeAux Mode = 2

	// ModeMAC enables HMAC-SHA256 verification.
	ModeMAC Mode = 3
)

// String returns the textual name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeAux:
		return "aux"
	case ModeMAC:
		return "mac"
	default:
		return "unknown"
	}
}

// Validate returns ErrInvalidMode for values outside the three modes.
func (m Mode) Validate() error {
	switch m {
	case ModeNone, ModeAux, ModeMAC:
		return nil
	}
	return fmt.Errorf("%w: %d", ErrInvalidMode, int(m))
}

// ParseMode accepts a mode name (none, aux, mac) or its number (1, 2, 3).
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "no-verification":
		return ModeNone, nil
	case "aux", "aux-info", "information-theoretic":
		return ModeAux, nil
	case "mac":
		return ModeMAC, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
	m := Mode(n)
	if err := m.Validate(); err != nil {
		return 0, err
	}
	return m, nil
}
