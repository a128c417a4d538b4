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

package bundle

import (
	"fmt"

	"github.com/jeremyhahn/go-vss/pkg/codec"
	"github.com/jeremyhahn/go-vss/pkg/sharing"
	"github.com/jeremyhahn/go-vss/pkg/verification"
)

// MACBundle carries the canonical share text and its HMAC tag. The share is
// kept as text so the receiver checks the exact bytes that were signed.
type MACBundle struct {
	Payload string
	Tag     string

	share sharing.Share
}

// NewMAC packages a share and signs its canonical text with key.
func NewMAC(s sharing.Share, key []byte) (*MACBundle, error) {
	payload, err := encodePoint(s)
	if err != nil {
		return nil, err
	}
	return &MACBundle{
		Payload: payload,
		Tag:     verification.GenerateMAC(payload, key),
		share:   s.Clone(),
	}, nil
}

func decodeMAC(v any) (*MACBundle, error) {
	list, err := codec.AsList(v, 2)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	payload, err := codec.AsString(list[0])
	if err != nil {
		return nil, fmt.Errorf("%w: payload: %v", ErrMalformed, err)
	}
	tag, err := codec.AsString(list[1])
	if err != nil {
		return nil, fmt.Errorf("%w: tag: %v", ErrMalformed, err)
	}
	inner, err := codec.StrToList(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: payload: %v", ErrMalformed, err)
	}
	s, err := decodePoint(inner)
	if err != nil {
		return nil, err
	}
	return &MACBundle{Payload: payload, Tag: tag, share: s}, nil
}

func (b *MACBundle) Mode() verification.Mode { return verification.ModeMAC }

func (b *MACBundle) Point() sharing.Share { return b.share }

func (b *MACBundle) Encode() ([]byte, error) {
	s, err := codec.ListToStr([]any{b.Payload, b.Tag})
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

func (b *MACBundle) Candidate() *verification.Candidate {
	return &verification.Candidate{
		Share:   b.share.Clone(),
		Payload: b.Payload,
		Tag:     b.Tag,
	}
}

// Corrupt rewrites the signed payload with a new value and keeps the old
// tag.
func (b *MACBundle) Corrupt() error {
	y, err := corruptValue(b.share.Y)
	if err != nil {
		return err
	}
	s := sharing.Share{X: b.share.X, Y: y}
	payload, err := encodePoint(s)
	if err != nil {
		return err
	}
	b.share = s
	b.Payload = payload
	return nil
}
