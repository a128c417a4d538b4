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
	"crypto/rand"
	"fmt"
	"math/big"
	"sort"

	"github.com/jeremyhahn/go-vss/pkg/sharing"
)

// AuxTriple is one auxiliary value addressed by an ordered pair of 1-based
// share indices.
type AuxTriple struct {
	I     int
	J     int
	Value *big.Int
}

// AuxInfo is the auxiliary information bundled with share i.
//
//	Y holds (i, j, y_ij) for every j != i
//	B holds (j, i, b_ji) for every j != i
//	C holds (j, i, c_ji) for every j != i
//
// with c_ji = b_ji * s_i + y_ij mod prime.
type AuxInfo struct {
	Y []AuxTriple
	B []AuxTriple
	C []AuxTriple
}

// GenerateAuxTriple draws b and y uniformly from [0, prime) and returns
// (c, b, y) with c = b*s + y mod prime.
func GenerateAuxTriple(s, prime *big.Int) (c, b, y *big.Int, err error) {
	if b, err = rand.Int(rand.Reader, prime); err != nil {
		return nil, nil, nil, fmt.Errorf("verification: drawing b: %w", err)
	}
	if y, err = rand.Int(rand.Reader, prime); err != nil {
		return nil, nil, nil, fmt.Errorf("verification: drawing y: %w", err)
	}
	c = new(big.Int).Mul(b, s)
	c.Add(c, y)
	c.Mod(c, prime)
	return c, b, y, nil
}

// VerifyAuxInfo reports whether c == b*s + y mod prime. Values outside
// [0, prime) never verify.
func VerifyAuxInfo(s, y, b, c, prime *big.Int) bool {
	for _, v := range []*big.Int{s, y, b, c} {
		if v == nil || v.Sign() < 0 || v.Cmp(prime) >= 0 {
			return false
		}
	}
	want := new(big.Int).Mul(b, s)
	want.Add(want, y)
	want.Mod(want, prime)
	return want.Cmp(c) == 0
}

// GenerateAuxInfo produces the auxiliary information for every share. The
// result is parallel to shares. Share indices must be distinct.
func GenerateAuxInfo(shares []sharing.Share, prime *big.Int) ([]AuxInfo, error) {
	if prime == nil || prime.Sign() <= 0 {
		return nil, ErrMissingPrime
	}
	seen := make(map[int]bool, len(shares))
	for _, s := range shares {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if seen[s.X] {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateIndex, s.X)
		}
		seen[s.X] = true
	}

	infos := make([]AuxInfo, len(shares))
	for a, si := range shares {
		for b, sj := range shares {
			if a == b {
				continue
			}
			i, j := si.X, sj.X
			// b_ji and c_ji go to node i alongside s_i; y_ij also stays
			// with node i.
			c, bv, y, err := GenerateAuxTriple(si.Y, prime)
			if err != nil {
				return nil, err
			}
			infos[a].Y = append(infos[a].Y, AuxTriple{I: i, J: j, Value: y})
			infos[a].B = append(infos[a].B, AuxTriple{I: j, J: i, Value: bv})
			infos[a].C = append(infos[a].C, AuxTriple{I: j, J: i, Value: c})
		}
	}
	return infos, nil
}

// AuxMatrix holds the pairwise check results. Row r belongs to the
// candidate at position r; entry [r][col] is the check of that candidate's
// share against the triples addressed to index col+1. Diagonal entries are
// true.
type AuxMatrix [][]bool

// BuildAuxMatrix evaluates every pairwise check for a set of candidates
// given in node order. The check of share x against index j uses only the
// candidate's own triples: y_xj from a triple with I == x, b_jx and c_jx
// from triples with J == x. A missing triple counts as a failed check.
func BuildAuxMatrix(candidates []*Candidate, prime *big.Int) AuxMatrix {
	n := len(candidates)
	m := make(AuxMatrix, n)
	for r, cand := range candidates {
		m[r] = make([]bool, n)
		m[r][r] = true
		if cand == nil || cand.Share.Y == nil || cand.Aux == nil {
			continue
		}
		x := cand.Share.X
		ys := valuesBy(cand.Aux.Y, func(tr AuxTriple) (int, bool) { return tr.J, tr.I == x })
		bs := valuesBy(cand.Aux.B, func(tr AuxTriple) (int, bool) { return tr.I, tr.J == x })
		cs := valuesBy(cand.Aux.C, func(tr AuxTriple) (int, bool) { return tr.I, tr.J == x })
		for col := 0; col < n; col++ {
			j := col + 1
			if j == x {
				m[r][col] = true
				continue
			}
			m[r][col] = VerifyAuxInfo(cand.Share.Y, ys[j], bs[j], cs[j], prime)
		}
	}
	return m
}

// valuesBy indexes the triples that pass keep by the other party's index.
// The first triple for an index wins.
func valuesBy(triples []AuxTriple, keep func(AuxTriple) (int, bool)) map[int]*big.Int {
	out := make(map[int]*big.Int, len(triples))
	for _, tr := range triples {
		other, ok := keep(tr)
		if !ok {
			continue
		}
		if _, seen := out[other]; !seen {
			out[other] = tr.Value
		}
	}
	return out
}

// Failures returns the number of failed checks in row r.
func (m AuxMatrix) Failures(r int) int {
	failed := 0
	for _, ok := range m[r] {
		if !ok {
			failed++
		}
	}
	return failed
}

// Accept reduces the matrix to an honesty vector. A row is rejected once
// its failures reach max(t, 1).
func (m AuxMatrix) Accept(t int) []bool {
	limit := max(t, 1)
	accepted := make([]bool, len(m))
	for r := range m {
		accepted[r] = m.Failures(r) < limit
	}
	return accepted
}

// SortTriples orders triples by (I, J) for stable encoding.
func SortTriples(triples []AuxTriple) {
	sort.Slice(triples, func(a, b int) bool {
		if triples[a].I != triples[b].I {
			return triples[a].I < triples[b].I
		}
		return triples[a].J < triples[b].J
	})
}
