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

// Package verification detects shares that were altered in transit.
//
// Three modes are supported and the chosen Mode must be the same for the
// sender that packages shares, the nodes that relay them and the receiver
// that checks them:
//
//   - ModeNone performs no checks; every share is accepted.
//   - ModeMAC tags each canonical share string with HMAC-SHA256 under a key
//     shared only by the sender and the receiver.
//   - ModeAux bundles each share with pairwise auxiliary values (y, b, c)
//     satisfying c = b*s + y mod prime, an information-theoretic check
//     that does not depend on any computational assumption.
package verification

import (
	"fmt"
	"math/big"

	"github.com/jeremyhahn/go-vss/pkg/sharing"
)

// Candidate is one received share together with the tag it travelled with.
// Only the fields relevant to the session mode are populated.
type Candidate struct {
	// Share is the decoded share point.
	Share sharing.Share

	// Payload is the canonical share string the MAC was computed over.
	Payload string

	// Tag is the base64 HMAC-SHA256 tag (ModeMAC).
	Tag string

	// Aux is the auxiliary information bundled with the share (ModeAux).
	Aux *AuxInfo
}

// Verifier checks a full set of candidates, one per node in node order,
// and returns the honesty vector. A nil candidate stands for a node that
// delivered nothing usable and is always rejected.
type Verifier interface {
	// Mode returns the verification mode implemented.
	Mode() Mode

	// Verify returns accepted[i] == true when candidates[i] passes.
	Verify(candidates []*Candidate) []bool
}

// VerifyOpts configures a Verifier.
type VerifyOpts struct {
	// Key is the raw MAC key (ModeMAC).
	Key []byte

	// Prime is the field modulus (ModeAux).
	Prime *big.Int

	// T is the fault-tolerance threshold used to reduce the verification
	// matrix (ModeAux).
	T int
}

// NewVerifier creates the Verifier for mode.
func NewVerifier(mode Mode, opts *VerifyOpts) (Verifier, error) {
	if opts == nil {
		opts = &VerifyOpts{}
	}
	switch mode {
	case ModeNone:
		return noneVerifier{}, nil
	case ModeMAC:
		if len(opts.Key) == 0 {
			return nil, ErrMissingKey
		}
		return &macVerifier{key: opts.Key}, nil
	case ModeAux:
		if opts.Prime == nil || opts.Prime.Sign() <= 0 {
			return nil, ErrMissingPrime
		}
		if opts.T < 0 {
			return nil, fmt.Errorf("%w: t=%d", ErrInvalidThreshold, opts.T)
		}
		return &auxVerifier{prime: opts.Prime, t: opts.T}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidMode, int(mode))
	}
}

type noneVerifier struct{}

func (noneVerifier) Mode() Mode { return ModeNone }

func (noneVerifier) Verify(candidates []*Candidate) []bool {
	accepted := make([]bool, len(candidates))
	for i, c := range candidates {
		accepted[i] = c != nil
	}
	return accepted
}

type macVerifier struct {
	key []byte
}

func (v *macVerifier) Mode() Mode { return ModeMAC }

func (v *macVerifier) Verify(candidates []*Candidate) []bool {
	accepted := make([]bool, len(candidates))
	for i, c := range candidates {
		if c == nil {
			continue
		}
		accepted[i] = VerifyMAC(c.Payload, v.key, c.Tag)
	}
	return accepted
}

type auxVerifier struct {
	prime *big.Int
	t     int
}

func (v *auxVerifier) Mode() Mode { return ModeAux }

func (v *auxVerifier) Verify(candidates []*Candidate) []bool {
	accepted := BuildAuxMatrix(candidates, v.prime).Accept(v.t)
	for i, c := range candidates {
		if c == nil || c.Aux == nil {
			accepted[i] = false
		}
	}
	return accepted
}
