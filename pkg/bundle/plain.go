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
	"github.com/jeremyhahn/go-vss/pkg/sharing"
	"github.com/jeremyhahn/go-vss/pkg/verification"
)

// PlainBundle carries a bare share.
type PlainBundle struct {
	Share sharing.Share
}

// NewPlain packages a share with no verification data.
func NewPlain(s sharing.Share) *PlainBundle {
	return &PlainBundle{Share: s.Clone()}
}

func decodePlain(v any) (*PlainBundle, error) {
	s, err := decodePoint(v)
	if err != nil {
		return nil, err
	}
	return &PlainBundle{Share: s}, nil
}

func (b *PlainBundle) Mode() verification.Mode { return verification.ModeNone }

func (b *PlainBundle) Point() sharing.Share { return b.Share }

func (b *PlainBundle) Encode() ([]byte, error) {
	s, err := encodePoint(b.Share)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

func (b *PlainBundle) Candidate() *verification.Candidate {
	return &verification.Candidate{Share: b.Share.Clone()}
}

func (b *PlainBundle) Corrupt() error {
	y, err := corruptValue(b.Share.Y)
	if err != nil {
		return err
	}
	b.Share.Y = y
	return nil
}
