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

// AuxBundle carries a share with its auxiliary verification information.
type AuxBundle struct {
	Share sharing.Share
	Aux   verification.AuxInfo
}

// NewAux packages a share with the auxiliary information generated for it.
func NewAux(s sharing.Share, info verification.AuxInfo) *AuxBundle {
	return &AuxBundle{Share: s.Clone(), Aux: info}
}

func decodeAux(v any) (*AuxBundle, error) {
	list, err := codec.AsList(v, 4)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	s, err := decodePoint(list[0])
	if err != nil {
		return nil, err
	}
	b := &AuxBundle{Share: s}
	if b.Aux.Y, err = decodeTriples(list[1]); err != nil {
		return nil, err
	}
	if b.Aux.B, err = decodeTriples(list[2]); err != nil {
		return nil, err
	}
	if b.Aux.C, err = decodeTriples(list[3]); err != nil {
		return nil, err
	}
	return b, nil
}

func decodeTriples(v any) ([]verification.AuxTriple, error) {
	list, err := codec.AsList(v, -1)
	if err != nil {
		return nil, fmt.Errorf("%w: aux list: %v", ErrMalformed, err)
	}
	out := make([]verification.AuxTriple, 0, len(list))
	for _, elem := range list {
		entry, err := codec.AsList(elem, 3)
		if err != nil {
			return nil, fmt.Errorf("%w: aux entry: %v", ErrMalformed, err)
		}
		i, err := codec.AsSmallInt(entry[0])
		if err != nil {
			return nil, fmt.Errorf("%w: aux index: %v", ErrMalformed, err)
		}
		j, err := codec.AsSmallInt(entry[1])
		if err != nil {
			return nil, fmt.Errorf("%w: aux index: %v", ErrMalformed, err)
		}
		val, err := codec.AsInt(entry[2])
		if err != nil {
			return nil, fmt.Errorf("%w: aux value: %v", ErrMalformed, err)
		}
		out = append(out, verification.AuxTriple{I: i, J: j, Value: val})
	}
	return out, nil
}

func encodeTriples(triples []verification.AuxTriple) []any {
	sorted := append([]verification.AuxTriple(nil), triples...)
	verification.SortTriples(sorted)
	out := make([]any, len(sorted))
	for i, tr := range sorted {
		out[i] = []any{tr.I, tr.J, tr.Value}
	}
	return out
}

func (b *AuxBundle) Mode() verification.Mode { return verification.ModeAux }

func (b *AuxBundle) Point() sharing.Share { return b.Share }

func (b *AuxBundle) Encode() ([]byte, error) {
	if err := b.Share.Validate(); err != nil {
		return nil, err
	}
	s, err := codec.ListToStr([]any{
		[]any{b.Share.X, b.Share.Y},
		encodeTriples(b.Aux.Y),
		encodeTriples(b.Aux.B),
		encodeTriples(b.Aux.C),
	})
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

func (b *AuxBundle) Candidate() *verification.Candidate {
	info := b.Aux
	return &verification.Candidate{Share: b.Share.Clone(), Aux: &info}
}

func (b *AuxBundle) Corrupt() error {
	y, err := corruptValue(b.Share.Y)
	if err != nil {
		return err
	}
	b.Share.Y = y
	return nil
}
