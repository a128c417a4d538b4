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
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-vss/pkg/sharing"
	"github.com/jeremyhahn/go-vss/pkg/verification"
)

var (
	testPrime = big.NewInt(8191)
	testKey   = []byte("0123456789abcdef0123456789abcdef")
)

func TestPlainBundle(t *testing.T) {
	b, err := Build(verification.ModeNone, sharing.Share{X: 3, Y: big.NewInt(77)}, nil)
	require.NoError(t, err)

	wire, err := b.Encode()
	require.NoError(t, err)
	assert.Equal(t, "[3,77]", string(wire))

	got, err := Decode(verification.ModeNone, wire)
	require.NoError(t, err)
	assert.Equal(t, verification.ModeNone, got.Mode())
	assert.Equal(t, 3, got.Point().X)
	assert.Equal(t, "77", got.Point().Y.String())
}

func TestMACBundle(t *testing.T) {
	b, err := Build(verification.ModeMAC, sharing.Share{X: 1, Y: big.NewInt(42)}, &Options{Key: testKey})
	require.NoError(t, err)

	wire, err := b.Encode()
	require.NoError(t, err)
	tag := verification.GenerateMAC("[1,42]", testKey)
	assert.Equal(t, `["[1,42]","`+tag+`"]`, string(wire))

	got, err := Decode(verification.ModeMAC, wire)
	require.NoError(t, err)
	cand := got.Candidate()
	assert.Equal(t, "[1,42]", cand.Payload)
	assert.True(t, verification.VerifyMAC(cand.Payload, testKey, cand.Tag))

	require.NoError(t, got.Corrupt())
	cand = got.Candidate()
	assert.NotEqual(t, "[1,42]", cand.Payload)
	assert.False(t, verification.VerifyMAC(cand.Payload, testKey, cand.Tag))
	assert.Equal(t, 1, got.Point().X)
	assert.Equal(t, -1, got.Point().Y.Cmp(big.NewInt(42)))

	_, err = Build(verification.ModeMAC, sharing.Share{X: 1, Y: big.NewInt(1)}, nil)
	assert.ErrorIs(t, err, ErrModeMismatch)
}

func TestAuxBundle(t *testing.T) {
	shares, err := sharing.GenerateSharesFromInt(big.NewInt(99), 3, 2, testPrime)
	require.NoError(t, err)
	infos, err := verification.GenerateAuxInfo(shares, testPrime)
	require.NoError(t, err)

	candidates := make([]*verification.Candidate, len(shares))
	for i := range shares {
		b, err := Build(verification.ModeAux, shares[i], &Options{Aux: &infos[i]})
		require.NoError(t, err)
		wire, err := b.Encode()
		require.NoError(t, err)

		got, err := Decode(verification.ModeAux, wire)
		require.NoError(t, err)
		assert.Equal(t, shares[i].X, got.Point().X)
		assert.Zero(t, shares[i].Y.Cmp(got.Point().Y))
		candidates[i] = got.Candidate()
	}

	v, err := verification.NewVerifier(verification.ModeAux, &verification.VerifyOpts{Prime: testPrime, T: 1})
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true, true}, v.Verify(candidates))

	_, err = Build(verification.ModeAux, shares[0], &Options{})
	assert.ErrorIs(t, err, ErrModeMismatch)
}

func TestAuxBundleEncoding(t *testing.T) {
	b := NewAux(sharing.Share{X: 1, Y: big.NewInt(5)}, verification.AuxInfo{
		Y: []verification.AuxTriple{{I: 1, J: 3, Value: big.NewInt(8)}, {I: 1, J: 2, Value: big.NewInt(7)}},
		B: []verification.AuxTriple{{I: 2, J: 1, Value: big.NewInt(2)}},
		C: []verification.AuxTriple{{I: 2, J: 1, Value: big.NewInt(17)}},
	})
	wire, err := b.Encode()
	require.NoError(t, err)
	assert.Equal(t, "[[1,5],[[1,2,7],[1,3,8]],[[2,1,2]],[[2,1,17]]]", string(wire))
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name    string
		mode    verification.Mode
		payload string
	}{
		{"empty", verification.ModeNone, ""},
		{"not json", verification.ModeNone, "[1,"},
		{"wrong arity", verification.ModeNone, "[1,2,3]"},
		{"string index", verification.ModeNone, `["1",2]`},
		{"zero index", verification.ModeNone, "[0,2]"},
		{"negative value", verification.ModeNone, "[1,-2]"},
		{"mac tag not string", verification.ModeMAC, `["[1,2]",5]`},
		{"mac payload not list", verification.ModeMAC, `["oops","tag"]`},
		{"aux short", verification.ModeAux, "[[1,2],[],[]]"},
		{"aux bad triple", verification.ModeAux, "[[1,2],[[1,2]],[],[]]"},
		{"plain given to aux", verification.ModeAux, "[1,2]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.mode, []byte(tt.payload))
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}

	_, err := Decode(verification.Mode(8), []byte("[1,2]"))
	assert.ErrorIs(t, err, verification.ErrInvalidMode)
}

func TestCorrupt(t *testing.T) {
	for _, y := range []int64{0, 1, 2, 1000} {
		b := NewPlain(sharing.Share{X: 1, Y: big.NewInt(y)})
		require.NoError(t, b.Corrupt())
		assert.NotZero(t, b.Share.Y.Cmp(big.NewInt(y)))
		assert.GreaterOrEqual(t, b.Share.Y.Sign(), 0)
	}

	a := NewAux(sharing.Share{X: 2, Y: big.NewInt(500)}, verification.AuxInfo{})
	require.NoError(t, a.Corrupt())
	assert.Equal(t, -1, a.Share.Y.Cmp(big.NewInt(500)))
}
