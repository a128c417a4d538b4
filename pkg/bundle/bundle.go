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

// Package bundle defines the wire form of a share for each verification
// mode. A bundle is what the sender hands a node and what the node relays
// to the receiver; its encoding is the canonical list text from package
// codec.
//
//	none  [x,y]
//	mac   ["[x,y]",tag]
//	aux   [[x,s],[[i,j,y]...],[[j,i,b]...],[[j,i,c]...]]
package bundle

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	"github.com/jeremyhahn/go-vss/pkg/codec"
	"github.com/jeremyhahn/go-vss/pkg/sharing"
	"github.com/jeremyhahn/go-vss/pkg/verification"
)

// Reader is the randomness source used by Corrupt.
var Reader io.Reader = rand.Reader

// Bundle is a share packaged for transport.
type Bundle interface {
	// Mode returns the verification mode the bundle belongs to.
	Mode() verification.Mode

	// Point returns the share carried by the bundle.
	Point() sharing.Share

	// Encode returns the canonical wire text.
	Encode() ([]byte, error)

	// Candidate converts the bundle into verifier input.
	Candidate() *verification.Candidate

	// Corrupt replaces the share value with a different random value,
	// leaving the tag or auxiliary data untouched.
	Corrupt() error
}

// Options holds the mode-specific material needed by Build.
type Options struct {
	// Key is the raw MAC key (ModeMAC).
	Key []byte

	// Aux is the auxiliary information for the share (ModeAux).
	Aux *verification.AuxInfo
}

// Build packages a share for mode.
func Build(mode verification.Mode, s sharing.Share, opts *Options) (Bundle, error) {
	if opts == nil {
		opts = &Options{}
	}
	switch mode {
	case verification.ModeNone:
		if err := s.Validate(); err != nil {
			return nil, err
		}
		return NewPlain(s), nil
	case verification.ModeMAC:
		if len(opts.Key) == 0 {
			return nil, fmt.Errorf("%w: mac bundle needs a key", ErrModeMismatch)
		}
		return NewMAC(s, opts.Key)
	case verification.ModeAux:
		if opts.Aux == nil {
			return nil, fmt.Errorf("%w: aux bundle needs auxiliary info", ErrModeMismatch)
		}
		if err := s.Validate(); err != nil {
			return nil, err
		}
		return NewAux(s, *opts.Aux), nil
	default:
		return nil, fmt.Errorf("%w: %d", verification.ErrInvalidMode, int(mode))
	}
}

// Decode parses payload as a bundle of the given mode.
func Decode(mode verification.Mode, payload []byte) (Bundle, error) {
	if len(payload) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrMalformed)
	}
	v, err := codec.StrToList(string(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	switch mode {
	case verification.ModeNone:
		return decodePlain(v)
	case verification.ModeMAC:
		return decodeMAC(v)
	case verification.ModeAux:
		return decodeAux(v)
	default:
		return nil, fmt.Errorf("%w: %d", verification.ErrInvalidMode, int(mode))
	}
}

// encodePoint renders a share as [x,y].
func encodePoint(s sharing.Share) (string, error) {
	if err := s.Validate(); err != nil {
		return "", err
	}
	return codec.ListToStr([]any{s.X, s.Y})
}

// decodePoint parses [x,y].
func decodePoint(v any) (sharing.Share, error) {
	list, err := codec.AsList(v, 2)
	if err != nil {
		return sharing.Share{}, fmt.Errorf("%w: share: %v", ErrMalformed, err)
	}
	x, err := codec.AsSmallInt(list[0])
	if err != nil {
		return sharing.Share{}, fmt.Errorf("%w: share index: %v", ErrMalformed, err)
	}
	y, err := codec.AsInt(list[1])
	if err != nil {
		return sharing.Share{}, fmt.Errorf("%w: share value: %v", ErrMalformed, err)
	}
	s := sharing.Share{X: x, Y: y}
	if err := s.Validate(); err != nil {
		return sharing.Share{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return s, nil
}

// corruptValue draws a value in [0, max(y, 2)) that differs from y.
func corruptValue(y *big.Int) (*big.Int, error) {
	bound := new(big.Int).Set(y)
	if bound.Cmp(big.NewInt(2)) < 0 {
		bound.SetInt64(2)
	}
	for {
		v, err := rand.Int(Reader, bound)
		if err != nil {
			return nil, fmt.Errorf("bundle: drawing replacement value: %w", err)
		}
		if v.Cmp(y) != 0 {
			return v, nil
		}
	}
}
